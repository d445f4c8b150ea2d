package calculator

import "SignalSentinel/internal/model"

// DefaultSwingWindow is the number of bars checked on each side of a candidate.
const DefaultSwingWindow = 10

// SwingPoints returns the indices of confirmed swing lows and swing highs.
// Index i qualifies when window <= i < len(bars)-window and its low (high) is
// strictly below (above) the low (high) of all 2*window neighbours.
// Equal neighbours disqualify the candidate, so flat runs produce nothing.
func SwingPoints(bars []model.OHLCV, window int) (lows, highs []int) {
	if window <= 0 {
		return nil, nil
	}
	for i := window; i < len(bars)-window; i++ {
		isLow, isHigh := true, true
		for j := i - window; j <= i+window; j++ {
			if j == i {
				continue
			}
			// NaN comparisons are false, which disqualifies the candidate
			if !(bars[i].Low < bars[j].Low) {
				isLow = false
			}
			if !(bars[i].High > bars[j].High) {
				isHigh = false
			}
			if !isLow && !isHigh {
				break
			}
		}
		if isLow {
			lows = append(lows, i)
		}
		if isHigh {
			highs = append(highs, i)
		}
	}
	return lows, highs
}

// Swings returns the most recent swing low as support and the most recent
// swing high as resistance.
func Swings(bars []model.OHLCV, window int) model.SwingLevels {
	lows, highs := SwingPoints(bars, window)
	var levels model.SwingLevels
	if len(lows) > 0 {
		v := bars[lows[len(lows)-1]].Low
		levels.Support = &v
	}
	if len(highs) > 0 {
		v := bars[highs[len(highs)-1]].High
		levels.Resistance = &v
	}
	return levels
}
