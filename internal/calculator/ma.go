// Package calculator derives indicator series, pivots and swing levels from
// a normalized bar series. Every function is pure and never looks ahead:
// output index i depends only on inputs 0..i. Missing values are NaN.
package calculator

import (
	"math"

	"SignalSentinel/internal/model"
)

// SMA computes the trailing simple moving average of values over period.
// Entries before the window is full, or whose window holds a NaN, are NaN.
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}
		// NaN propagates through the sum
		out[i] = sum / float64(period)
	}
	return out
}

// EMA computes an exponential moving average with alpha = 2/(span+1),
// seeded with the first defined value and updated recursively.
// A NaN input yields NaN at that index and leaves the running state untouched.
func EMA(values []float64, span int) []float64 {
	out := nanSlice(len(values))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	seeded := false
	var current float64
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if !seeded {
			current = v
			seeded = true
		} else {
			current = alpha*v + (1-alpha)*current
		}
		out[i] = current
	}
	return out
}

// MACD returns the MACD line (EMA(fast) - EMA(slow)) and its signal line
// (EMA(signal) of MACD). The MACD line is NaN until slow bars have been seen;
// the signal line is seeded with the first defined MACD value and stays NaN
// until it has absorbed signal values.
func MACD(closes []float64, fast, slow, signal int) (macd, sig []float64) {
	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	macd = nanSlice(len(closes))
	for i := slow - 1; i < len(closes); i++ {
		if i < 0 {
			continue
		}
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	sig = EMA(macd, signal)
	seen := 0
	for i := range sig {
		if math.IsNaN(macd[i]) {
			continue
		}
		seen++
		if seen < signal {
			sig[i] = math.NaN()
		}
	}
	return macd, sig
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
