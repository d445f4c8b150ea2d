package calculator

import (
	"math"

	"SignalSentinel/internal/model"
)

// Pivots computes classic pivot levels for the bar at idx from the bar right
// before it. ok is false when there is no prior bar or it has missing fields.
func Pivots(bars []model.OHLCV, idx int) (model.PivotLevels, bool) {
	if idx < 1 || idx >= len(bars) {
		return model.PivotLevels{}, false
	}
	prev := bars[idx-1]
	h, l, c := prev.High, prev.Low, prev.Close
	if math.IsNaN(h) || math.IsNaN(l) || math.IsNaN(c) {
		return model.PivotLevels{}, false
	}

	pivot := (h + l + c) / 3
	return model.PivotLevels{
		Pivot: pivot,
		S1:    2*pivot - h,
		S2:    pivot - (h - l),
		R1:    2*pivot - l,
		R2:    pivot + (h - l),
	}, true
}
