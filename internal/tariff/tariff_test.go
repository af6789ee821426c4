package tariff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultResidential_Valid(t *testing.T) {
	schedule := DefaultResidential()
	assert.NoError(t, schedule.Validate())
	assert.Len(t, schedule.Bands, 5)
	assert.True(t, schedule.Bands[4].Unbounded())
	assert.Equal(t, 115.00, schedule.FixedCharge)
	assert.Equal(t, 1.40, schedule.WheelingRate)
	assert.Equal(t, 0.16, schedule.DutyRate)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Schedule)
		expected error
	}{
		{"no bands", func(s *Schedule) { s.Bands = nil }, ErrNoBands},
		{"zero width", func(s *Schedule) { s.Bands[1].Width = 0 }, ErrInvalidBandWidth},
		{"unbounded middle band", func(s *Schedule) { s.Bands[2].Width = math.Inf(1) }, ErrInvalidBandWidth},
		{"negative rate", func(s *Schedule) { s.Bands[0].Rate = -1 }, ErrInvalidBandRate},
		{"negative fixed charge", func(s *Schedule) { s.FixedCharge = -5 }, ErrInvalidFixedCharge},
		{"negative wheeling", func(s *Schedule) { s.WheelingRate = -0.1 }, ErrInvalidRate},
		{"duty at 1", func(s *Schedule) { s.DutyRate = 1 }, ErrInvalidDutyRate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			schedule := DefaultResidential()
			tc.mutate(schedule)
			assert.ErrorIs(t, schedule.Validate(), tc.expected)
		})
	}
}

func TestBandLabel(t *testing.T) {
	schedule := DefaultResidential()
	assert.Equal(t, "0-100 kWh", schedule.BandLabel(0))
	assert.Equal(t, "101-300 kWh", schedule.BandLabel(1))
	assert.Equal(t, "301-500 kWh", schedule.BandLabel(2))
	assert.Equal(t, "501-1000 kWh", schedule.BandLabel(3))
	assert.Equal(t, ">1000 kWh", schedule.BandLabel(4))
}
