package service

import (
	"math"
	"testing"

	billingdomain "github.com/smallbiznis/voltra/internal/billing/domain"
	"github.com/smallbiznis/voltra/internal/tariff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCalculator(t *testing.T) billingdomain.Calculator {
	t.Helper()
	return NewCalculator(Params{
		Log:      zap.NewNop(),
		Schedule: tariff.DefaultResidential(),
	})
}

func TestCompute_RejectsInvalidUsage(t *testing.T) {
	calc := newCalculator(t)
	for _, usage := range []float64{-1, -0.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := calc.Compute(usage)
		assert.ErrorIs(t, err, billingdomain.ErrInvalidUsage)
	}
}

func TestCompute_Scenario250kWh(t *testing.T) {
	calc := newCalculator(t)
	b, err := calc.Compute(250)
	require.NoError(t, err)

	require.Len(t, b.Bands, 2)
	assert.Equal(t, "0-100 kWh", b.Bands[0].Label)
	assert.InDelta(t, 100, b.Bands[0].Units, 1e-9)
	assert.InDelta(t, 346.00, b.Bands[0].Cost, 1e-9)
	assert.Equal(t, "101-300 kWh", b.Bands[1].Label)
	assert.InDelta(t, 150, b.Bands[1].Units, 1e-9)
	assert.InDelta(t, 1114.50, b.Bands[1].Cost, 1e-9)

	assert.InDelta(t, 1460.50, b.EnergyCharge, 1e-9)
	assert.InDelta(t, 115.00, b.FixedCharge, 1e-9)
	assert.InDelta(t, 350.00, b.WheelingCharge, 1e-9)
	assert.InDelta(t, 0, b.FuelAdjustment, 1e-9)
	assert.InDelta(t, 1925.50, b.SubTotal, 1e-9)
	assert.InDelta(t, 308.08, b.ElectricityDuty, 1e-9)
	assert.InDelta(t, 2233.58, b.TotalBill, 1e-9)
}

func TestCompute_BandBoundaries(t *testing.T) {
	calc := newCalculator(t)

	at100, err := calc.Compute(100)
	require.NoError(t, err)
	assert.Len(t, at100.Bands, 1)
	assert.InDelta(t, 100*3.46, at100.EnergyCharge, 1e-9)

	at101, err := calc.Compute(101)
	require.NoError(t, err)
	assert.Len(t, at101.Bands, 2)
	assert.InDelta(t, 100*3.46+1*7.43, at101.EnergyCharge, 1e-9)
}

func TestCompute_ZeroUsage(t *testing.T) {
	calc := newCalculator(t)
	b, err := calc.Compute(0)
	require.NoError(t, err)

	assert.Empty(t, b.Bands)
	assert.Zero(t, b.EnergyCharge)
	assert.Zero(t, b.WheelingCharge)
	assert.InDelta(t, 115.00, b.SubTotal, 1e-9)
	assert.InDelta(t, 115.00*1.16, b.TotalBill, 1e-9)
}

func TestCompute_BandUnitsSumToUsage(t *testing.T) {
	calc := newCalculator(t)
	for _, usage := range []float64{0, 1, 99.5, 100, 101, 250, 300, 500, 610.8, 1000, 1500, 12345.67} {
		b, err := calc.Compute(usage)
		require.NoError(t, err)

		sum := 0.0
		for _, band := range b.Bands {
			sum += band.Units
			assert.Greater(t, band.Units, 0.0, "no zero-usage trailing bands")
		}
		assert.InDelta(t, usage, sum, 1e-6)
		assert.InDelta(t, b.SubTotal*1.16, b.TotalBill, 1e-6)
		assert.InDelta(t, b.SubTotal*0.16, b.ElectricityDuty, 1e-6)
	}
}

func TestCompute_MonotonicInUsage(t *testing.T) {
	calc := newCalculator(t)
	prev := -1.0
	for usage := 0.0; usage <= 2000; usage += 17.3 {
		b, err := calc.Compute(usage)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.TotalBill, prev)
		prev = b.TotalBill
	}
}

func TestCompute_AlternativeSchedule(t *testing.T) {
	flat := &tariff.Schedule{
		Name:         "Flat",
		Bands:        []tariff.Band{{Width: math.Inf(1), Rate: 2.0}},
		FixedCharge:  10,
		WheelingRate: 0,
		FuelRate:     0.5,
		DutyRate:     0.1,
	}
	require.NoError(t, flat.Validate())

	calc := NewCalculator(Params{Log: zap.NewNop(), Schedule: flat})
	b, err := calc.Compute(40)
	require.NoError(t, err)

	assert.InDelta(t, 80, b.EnergyCharge, 1e-9)
	assert.InDelta(t, 20, b.FuelAdjustment, 1e-9)
	assert.InDelta(t, 110, b.SubTotal, 1e-9)
	assert.InDelta(t, 121, b.TotalBill, 1e-9)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2233.58, billingdomain.Round2(2233.5800000000004))
	assert.Equal(t, 0.01, billingdomain.Round2(0.005))
}
