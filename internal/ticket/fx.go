package ticket

import (
	"github.com/smallbiznis/voltra/internal/ticket/repository"
	"github.com/smallbiznis/voltra/internal/ticket/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ticket",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
