package consumption

import (
	"github.com/smallbiznis/voltra/internal/consumption/repository"
	"github.com/smallbiznis/voltra/internal/consumption/service"
	"go.uber.org/fx"
)

var Module = fx.Module("consumption",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
