package services

import (
	"errors"
	"math"

	"github.com/irfndi/statspulse-go/internal/models"
	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned when series cannot be correlated.
var ErrInvalidInput = errors.New("series must be of equal, non-zero length")

// Mean returns the arithmetic mean of values, or 0 for an empty series.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// MeanPrice returns the mean price of a history.
func MeanPrice(history []models.PriceSample) float64 {
	return Mean(models.Prices(history))
}

// PearsonCorrelation returns the sample Pearson correlation of x and y rounded to 4
// decimal places. Covariance and variances use the n-1 divisor.
//
// A series with zero standard deviation has no defined correlation; the result is 0.
// This also covers n == 1. Each series is rescaled before its deviations are squared,
// so any finite magnitude is accepted.
func PearsonCorrelation(x []float64, y []float64) (float64, error) {
	n := len(x)
	if n == 0 || len(y) != n {
		return 0, ErrInvalidInput
	}
	if n == 1 {
		return 0, nil
	}

	dx := normalizedDeviations(x)
	dy := normalizedDeviations(y)
	if dx == nil || dy == nil {
		return 0, nil
	}

	var covariance float64
	var varianceX float64
	var varianceY float64
	for i := 0; i < n; i++ {
		covariance += dx[i] * dy[i]
		varianceX += dx[i] * dx[i]
		varianceY += dy[i] * dy[i]
	}

	divisor := float64(n - 1)
	covariance /= divisor
	stdDevX := math.Sqrt(varianceX / divisor)
	stdDevY := math.Sqrt(varianceY / divisor)

	if stdDevX == 0 || stdDevY == 0 {
		return 0, nil
	}

	corr := covariance / (stdDevX * stdDevY)
	if math.IsNaN(corr) || math.IsInf(corr, 0) {
		return 0, nil
	}
	return RoundTo(corr, 4), nil
}

// normalizedDeviations returns the deviations of values from their mean, scaled by
// powers of two so the largest lies in [0.5, 1). Power-of-two scaling is exact, so no
// precision is lost. It returns nil for a constant series.
func normalizedDeviations(values []float64) []float64 {
	peak := maxAbs(values)
	if peak == 0 {
		return nil
	}

	_, exp := math.Frexp(peak)
	scaled := make([]float64, len(values))
	for i, v := range values {
		scaled[i] = math.Ldexp(v, -exp)
	}

	mean := Mean(scaled)
	for i := range scaled {
		scaled[i] -= mean
	}

	spread := maxAbs(scaled)
	if spread == 0 {
		return nil
	}
	_, exp = math.Frexp(spread)
	for i := range scaled {
		scaled[i] = math.Ldexp(scaled[i], -exp)
	}
	return scaled
}

func maxAbs(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		if a := math.Abs(v); a > peak || math.IsNaN(a) {
			peak = a
		}
	}
	return peak
}

// RoundTo rounds value half away from zero to places decimal places.
func RoundTo(value float64, places int32) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(places).Float64()
	return rounded
}

// FormatFixed renders value with exactly places decimal places. It rounds the shortest
// decimal that round-trips to value, half away from zero, so 2.675 becomes "2.68" even
// though its binary value lies just below the midpoint.
func FormatFixed(value float64, places int32) string {
	return decimal.NewFromFloat(value).StringFixed(places)
}
