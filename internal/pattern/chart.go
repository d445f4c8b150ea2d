package pattern

import (
	"fmt"
	"math"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// ChartPatterns flags breakouts and triangles at the last bar. These are
// coarse heuristics over a fixed window, not geometric fits.
//
// Breakout/breakdown compare the latest close with the close range of the
// ChartWindow bars before it. Triangles look at the ChartWindow bars ending
// at the latest bar.
func (d *Detector) ChartPatterns(bars []model.OHLCV) []model.Signal {
	var out []model.Signal
	n := len(bars)
	w := d.cfg.ChartWindow
	if n < w+1 {
		return out
	}
	last := bars[n-1]

	if resistance, support, ok := calculator.CloseRange(bars, n-1-w, n-1); ok && !math.IsNaN(last.Close) {
		if last.Close > resistance*d.cfg.BreakoutFactor {
			out = append(out, chart(model.KindBreakout, model.Bullish, fmt.Sprintf("Breakout above %d-day range", w)))
		}
		if last.Close < support*d.cfg.BreakdownFactor {
			out = append(out, chart(model.KindBreakdown, model.Bearish, fmt.Sprintf("Breakdown below %d-day range", w)))
		}
	}

	windowHigh, windowLow, ok := calculator.WindowRange(bars, n-w, n)
	if !ok {
		return out
	}
	recentHigh, recentLow, ok := calculator.WindowRange(bars, n-3, n)
	if !ok {
		return out
	}
	tol := d.cfg.TriangleFlatTolerance

	// rising lows against a flat ceiling
	if recentLow > windowLow*d.cfg.TriangleLowRise && math.Abs(windowHigh-last.High) <= tol {
		out = append(out, chart(model.KindAscendingTriangle, model.Bullish, "Ascending Triangle"))
	}
	// falling highs against a flat floor
	if recentHigh < windowHigh*d.cfg.TriangleHighFall && math.Abs(last.Low-windowLow) <= tol {
		out = append(out, chart(model.KindDescendingTriangle, model.Bearish, "Descending Triangle"))
	}
	return out
}
