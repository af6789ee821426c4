package tariff

import "go.uber.org/fx"

var Module = fx.Module("tariff",
	fx.Provide(func() (*Schedule, error) {
		schedule := DefaultResidential()
		if err := schedule.Validate(); err != nil {
			return nil, err
		}
		return schedule, nil
	}),
)
