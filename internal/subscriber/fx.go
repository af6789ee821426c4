package subscriber

import (
	"github.com/smallbiznis/voltra/internal/subscriber/repository"
	"github.com/smallbiznis/voltra/internal/subscriber/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscriber",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
