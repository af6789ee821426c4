package billing

import (
	"github.com/smallbiznis/voltra/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing",
	fx.Provide(service.NewCalculator),
)
