package service

import (
	"math"

	billingdomain "github.com/smallbiznis/voltra/internal/billing/domain"
	"github.com/smallbiznis/voltra/internal/tariff"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Schedule *tariff.Schedule
}

type Calculator struct {
	log      *zap.Logger
	schedule *tariff.Schedule
}

func NewCalculator(p Params) billingdomain.Calculator {
	return &Calculator{
		log:      p.Log.Named("billing.calculator"),
		schedule: p.Schedule,
	}
}

// Compute allocates usage across the telescopic bands in ascending order:
// each band bills at most its width, the remainder flows into the next band,
// and allocation stops once usage is exhausted. Fixed, wheeling and fuel
// charges apply to the whole usage, duty to the subtotal.
func (c *Calculator) Compute(usageKwh float64) (*billingdomain.ChargeBreakdown, error) {
	if usageKwh < 0 || math.IsNaN(usageKwh) || math.IsInf(usageKwh, 0) {
		return nil, billingdomain.ErrInvalidUsage
	}

	breakdown := &billingdomain.ChargeBreakdown{
		UsageKwh:    usageKwh,
		FixedCharge: c.schedule.FixedCharge,
	}

	remaining := usageKwh
	for i, band := range c.schedule.Bands {
		if remaining <= 0 {
			break
		}
		units := math.Min(remaining, band.Width)
		cost := units * band.Rate
		breakdown.Bands = append(breakdown.Bands, billingdomain.BandCharge{
			Label: c.schedule.BandLabel(i),
			Units: units,
			Rate:  band.Rate,
			Cost:  cost,
		})
		breakdown.EnergyCharge += cost
		remaining -= units
	}

	breakdown.WheelingCharge = usageKwh * c.schedule.WheelingRate
	breakdown.FuelAdjustment = usageKwh * c.schedule.FuelRate
	breakdown.SubTotal = breakdown.EnergyCharge + breakdown.FixedCharge +
		breakdown.WheelingCharge + breakdown.FuelAdjustment
	breakdown.ElectricityDuty = breakdown.SubTotal * c.schedule.DutyRate
	breakdown.TotalBill = breakdown.SubTotal + breakdown.ElectricityDuty

	return breakdown, nil
}
