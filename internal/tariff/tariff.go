// Package tariff defines the telescopic rate schedule the bill calculator
// runs against. The schedule is fixed configuration: it is injected once at
// startup and never mutated at runtime.
package tariff

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoBands            = errors.New("tariff_no_bands")
	ErrInvalidBandWidth   = errors.New("tariff_invalid_band_width")
	ErrInvalidBandRate    = errors.New("tariff_invalid_band_rate")
	ErrInvalidFixedCharge = errors.New("tariff_invalid_fixed_charge")
	ErrInvalidRate        = errors.New("tariff_invalid_rate")
	ErrInvalidDutyRate    = errors.New("tariff_invalid_duty_rate")
)

// Band is one telescopic slab: Width kWh billed at Rate per kWh. Only the
// final band may carry an infinite width.
type Band struct {
	Width float64 `json:"width"`
	Rate  float64 `json:"rate"`
}

// Unbounded reports whether the band has no upper limit.
func (b Band) Unbounded() bool {
	return math.IsInf(b.Width, 1)
}

// Schedule is a complete residential tariff: ordered bands plus the
// whole-usage linear charges and the proportional duty.
type Schedule struct {
	Name         string  `json:"name"`
	Bands        []Band  `json:"bands"`
	FixedCharge  float64 `json:"fixed_charge"`
	WheelingRate float64 `json:"wheeling_rate"`
	FuelRate     float64 `json:"fuel_rate"`
	DutyRate     float64 `json:"duty_rate"`
}

// DefaultResidential returns the MSEDCL LT-I single-phase residential
// schedule.
func DefaultResidential() *Schedule {
	return &Schedule{
		Name: "Residential LT-I",
		Bands: []Band{
			{Width: 100, Rate: 3.46},
			{Width: 200, Rate: 7.43},
			{Width: 200, Rate: 10.32},
			{Width: 500, Rate: 11.71},
			{Width: math.Inf(1), Rate: 11.71},
		},
		FixedCharge:  115.00,
		WheelingRate: 1.40,
		FuelRate:     0.00,
		DutyRate:     0.16,
	}
}

// Validate checks the structural invariants: at least one band, positive
// finite widths except an optional unbounded final band, non-negative rates
// and charges, duty in [0,1).
func (s *Schedule) Validate() error {
	if len(s.Bands) == 0 {
		return ErrNoBands
	}
	for i, band := range s.Bands {
		if band.Unbounded() {
			if i != len(s.Bands)-1 {
				return fmt.Errorf("%w: band %d unbounded before final band", ErrInvalidBandWidth, i)
			}
		} else if band.Width <= 0 || math.IsNaN(band.Width) {
			return fmt.Errorf("%w: band %d width %v", ErrInvalidBandWidth, i, band.Width)
		}
		if band.Rate < 0 || math.IsNaN(band.Rate) || math.IsInf(band.Rate, 0) {
			return fmt.Errorf("%w: band %d rate %v", ErrInvalidBandRate, i, band.Rate)
		}
	}
	if s.FixedCharge < 0 || math.IsNaN(s.FixedCharge) {
		return ErrInvalidFixedCharge
	}
	if s.WheelingRate < 0 || math.IsNaN(s.WheelingRate) {
		return ErrInvalidRate
	}
	if s.FuelRate < 0 || math.IsNaN(s.FuelRate) {
		return ErrInvalidRate
	}
	if s.DutyRate < 0 || s.DutyRate >= 1 || math.IsNaN(s.DutyRate) {
		return ErrInvalidDutyRate
	}
	return nil
}

// BandLabel renders the human-readable range of band i, e.g. "0-100 kWh" or
// ">1000 kWh".
func (s *Schedule) BandLabel(i int) string {
	offset := 0.0
	for j := 0; j < i && j < len(s.Bands); j++ {
		offset += s.Bands[j].Width
	}
	if i < 0 || i >= len(s.Bands) {
		return "other"
	}
	band := s.Bands[i]
	if band.Unbounded() {
		return fmt.Sprintf(">%.0f kWh", offset)
	}
	if i == 0 {
		return fmt.Sprintf("0-%.0f kWh", band.Width)
	}
	return fmt.Sprintf("%.0f-%.0f kWh", offset+1, offset+band.Width)
}
