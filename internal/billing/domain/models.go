// Package domain defines the charge breakdown produced by the bill
// calculator.
package domain

import (
	"errors"
	"math"
)

var ErrInvalidUsage = errors.New("invalid_usage")

// BandCharge is the portion of consumption billed within one tariff band.
type BandCharge struct {
	Label string  `json:"label"`
	Units float64 `json:"units"`
	Rate  float64 `json:"rate"`
	Cost  float64 `json:"cost"`
}

// ChargeBreakdown is an itemized bill for one monthly usage quantity.
// Amounts carry full float precision; rounding happens at presentation and
// persistence only.
type ChargeBreakdown struct {
	UsageKwh        float64      `json:"usage_kwh"`
	Bands           []BandCharge `json:"bands"`
	EnergyCharge    float64      `json:"energy_charge"`
	FixedCharge     float64      `json:"fixed_charge"`
	WheelingCharge  float64      `json:"wheeling_charge"`
	FuelAdjustment  float64      `json:"fuel_adjustment"`
	SubTotal        float64      `json:"sub_total"`
	ElectricityDuty float64      `json:"electricity_duty"`
	TotalBill       float64      `json:"total_bill"`
}

// Calculator maps a usage quantity to an itemized charge breakdown. Pure and
// deterministic per schedule.
type Calculator interface {
	Compute(usageKwh float64) (*ChargeBreakdown, error)
}

// Round2 rounds a monetary amount to two decimal places.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
