package calculator

import (
	"math"

	"SignalSentinel/internal/model"
)

// TrueRange returns max(H-L, |H-prevC|, |L-prevC|) for every bar.
// The first bar has no previous close, so its true range is H-L.
func TrueRange(bars []model.OHLCV) []float64 {
	out := nanSlice(len(bars))
	for i, b := range bars {
		tr := b.High - b.Low
		if i > 0 {
			prevClose := bars[i-1].Close
			tr = math.Max(tr, math.Abs(b.High-prevClose))
			tr = math.Max(tr, math.Abs(b.Low-prevClose))
		}
		if math.IsNaN(b.High) || math.IsNaN(b.Low) {
			tr = math.NaN()
		}
		out[i] = tr
	}
	return out
}

// ATR is the trailing arithmetic mean of the true range over period bars.
func ATR(bars []model.OHLCV, period int) []float64 {
	return SMA(TrueRange(bars), period)
}

// WindowRange scans bars[start:end] and returns the highest high and lowest low.
// NaN fields are skipped; ok is false when nothing usable was found.
func WindowRange(bars []model.OHLCV, start, end int) (high, low float64, ok bool) {
	start, end = clampWindow(len(bars), start, end)
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < end; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	if math.IsInf(high, -1) || math.IsInf(low, 1) {
		return 0, 0, false
	}
	return high, low, true
}

// CloseRange scans bars[start:end] and returns the highest and lowest close.
func CloseRange(bars []model.OHLCV, start, end int) (high, low float64, ok bool) {
	start, end = clampWindow(len(bars), start, end)
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < end; i++ {
		c := bars[i].Close
		if math.IsNaN(c) {
			continue
		}
		high = math.Max(high, c)
		low = math.Min(low, c)
	}
	if math.IsInf(high, -1) || math.IsInf(low, 1) {
		return 0, 0, false
	}
	return high, low, true
}

func clampWindow(n, start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	return start, end
}
