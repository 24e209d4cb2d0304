// Package calculator turns realised demand histories into expectations.
package calculator

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

// CalculateSMA computes the simple moving average of values over the last
// period observations.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	return stat.Mean(values[len(values)-period:], nil), nil
}

// Expectation forecasts the next value of history. It uses the moving average
// over window when enough data exists, the mean of the whole history when some
// exists, and fallback otherwise.
func Expectation(history []float64, window int, fallback float64) float64 {
	if sma, err := CalculateSMA(history, window); err == nil {
		return sma
	}
	if len(history) == 0 {
		return fallback
	}
	return stat.Mean(history, nil)
}
