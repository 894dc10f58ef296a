package services

import (
	"math"
	"testing"

	"github.com/irfndi/statspulse-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Mean([]float64{}))
	assert.Equal(t, 4.0, Mean([]float64{2, 4, 6}))
	assert.Equal(t, -1.5, Mean([]float64{-1, -2}))
}

func TestMeanPrice(t *testing.T) {
	history := []models.PriceSample{{Price: 10}, {Price: 20}, {Price: 45}}
	assert.Equal(t, 25.0, MeanPrice(history))
	assert.Equal(t, 0.0, MeanPrice(nil))
}

func TestPearsonCorrelation(t *testing.T) {
	tests := []struct {
		name     string
		x, y     []float64
		expected float64
	}{
		{"perfect positive", []float64{1, 2, 3}, []float64{2, 4, 6}, 1.0},
		{"perfect negative", []float64{1, 2, 3}, []float64{3, 2, 1}, -1.0},
		{"rounded to four places", []float64{1, 2, 3, 4, 5}, []float64{2, 1, 4, 3, 5}, 0.8},
		{"weak", []float64{1, 2, 3, 4}, []float64{1, 3, 2, 1}, -0.1348},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PearsonCorrelation(tt.x, tt.y)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPearsonCorrelation_InvalidInput(t *testing.T) {
	_, err := PearsonCorrelation(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = PearsonCorrelation([]float64{1, 2}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPearsonCorrelation_ZeroVarianceIsZero(t *testing.T) {
	got, err := PearsonCorrelation([]float64{5, 5, 5}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = PearsonCorrelation([]float64{1, 2, 3}, []float64{7, 7, 7})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = PearsonCorrelation([]float64{4}, []float64{9})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
	assert.False(t, math.IsNaN(got))
}

func TestPearsonCorrelation_StaysInRange(t *testing.T) {
	x := []float64{231.95, 232.10, 231.80, 233.40, 235.00, 234.10}
	y := []float64{680.59, 652.62, 690.01, 701.33, 699.98, 710.40}

	got, err := PearsonCorrelation(x, y)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, -1.0)
	assert.LessOrEqual(t, got, 1.0)
}

func TestPearsonCorrelation_ExtremeMagnitudes(t *testing.T) {
	tests := []struct {
		name     string
		x, y     []float64
		expected float64
	}{
		{"tiny", []float64{1e-200, 2e-200, 3e-200}, []float64{1e-200, 2e-200, 3e-200}, 1.0},
		{"huge", []float64{1e200, 2e200, 3e200}, []float64{1e200, 2e200, 3e200}, 1.0},
		{"huge against tiny", []float64{1e300, 2e300, 3e300}, []float64{3e-300, 2e-300, 1e-300}, -1.0},
		{"near max float", []float64{math.MaxFloat64 / 2, math.MaxFloat64, math.MaxFloat64 / 4}, []float64{2, 4, 1}, 1.0},
		{"small spread on a large level", []float64{1e15, 1e15 + 1, 1e15 + 2}, []float64{5, 6, 7}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PearsonCorrelation(tt.x, tt.y)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-4)
		})
	}
}

func TestPearsonCorrelation_RepeatedDecimalIsConstant(t *testing.T) {
	got, err := PearsonCorrelation([]float64{0.1, 0.1, 0.1}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.1235, RoundTo(0.12345, 4))
	assert.Equal(t, -0.1235, RoundTo(-0.12345, 4))
	assert.Equal(t, 3.5, RoundTo(3.5, 2))
}

func TestFormatFixed(t *testing.T) {
	assert.Equal(t, "0.00", FormatFixed(0, 2))
	assert.Equal(t, "3.50", FormatFixed(3.5, 2))
	assert.Equal(t, "4.67", FormatFixed(14.0/3.0, 2))
}

func TestFormatFixed_RoundsShortestDecimalHalfUp(t *testing.T) {
	// 2.675 is stored as 2.67499999...; rounding its shortest decimal form gives 2.68.
	assert.Equal(t, "2.68", FormatFixed(2.675, 2))
	assert.Equal(t, "1.01", FormatFixed(1.005, 2))
	assert.Equal(t, "-2.68", FormatFixed(-2.675, 2))
}
