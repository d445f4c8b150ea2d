package pattern

import (
	"math"

	"SignalSentinel/internal/model"
)

// Candlesticks evaluates the 1-3 bar candlestick patterns at the last bar.
func (d *Detector) Candlesticks(bars []model.OHLCV) []model.Signal {
	var out []model.Signal
	n := len(bars)
	if n == 0 {
		return out
	}
	curr := bars[n-1]

	if n >= 2 {
		prev := bars[n-2]
		if isBullishEngulfing(prev, curr) {
			out = append(out, candlestick(model.KindBullishEngulfing, model.Bullish, "Bullish Engulfing Pattern"))
		}
		if isBearishEngulfing(prev, curr) {
			out = append(out, candlestick(model.KindBearishEngulfing, model.Bearish, "Bearish Engulfing Pattern"))
		}
	}
	if isHammer(curr) {
		out = append(out, candlestick(model.KindHammer, model.Bullish, "Hammer Pattern"))
	}
	if isShootingStar(curr) {
		out = append(out, candlestick(model.KindShootingStar, model.Bearish, "Shooting Star Pattern"))
	}
	if n >= 3 {
		c1, c2, c3 := bars[n-3], bars[n-2], bars[n-1]
		if isMorningStar(c1, c2, c3, d.cfg.StarBodyRatio) {
			out = append(out, candlestick(model.KindMorningStar, model.Bullish, "Morning Star Pattern"))
		}
		if isEveningStar(c1, c2, c3, d.cfg.StarBodyRatio) {
			out = append(out, candlestick(model.KindEveningStar, model.Bearish, "Evening Star Pattern"))
		}
	}
	return out
}

func body(c model.OHLCV) float64 { return math.Abs(c.Close - c.Open) }

func upperShadow(c model.OHLCV) float64 { return c.High - math.Max(c.Open, c.Close) }

func lowerShadow(c model.OHLCV) float64 { return math.Min(c.Open, c.Close) - c.Low }

func bullish(c model.OHLCV) bool { return c.Close > c.Open }

func bearish(c model.OHLCV) bool { return c.Close < c.Open }

// isBullishEngulfing: a red candle followed by a green one that opens below
// the prior close and closes above the prior open.
func isBullishEngulfing(prev, curr model.OHLCV) bool {
	if !prev.Complete() || !curr.Complete() {
		return false
	}
	return bearish(prev) && bullish(curr) &&
		curr.Close > prev.Open && curr.Open < prev.Close
}

// isBearishEngulfing mirrors isBullishEngulfing.
func isBearishEngulfing(prev, curr model.OHLCV) bool {
	if !prev.Complete() || !curr.Complete() {
		return false
	}
	return bullish(prev) && bearish(curr) &&
		curr.Close < prev.Open && curr.Open > prev.Close
}

// isHammer: lower shadow more than twice the body, upper shadow shorter than it.
// Both comparisons are strict, so a doji (zero body) never qualifies.
func isHammer(c model.OHLCV) bool {
	if !c.Complete() {
		return false
	}
	b := body(c)
	return lowerShadow(c) > 2*b && upperShadow(c) < b
}

// isShootingStar mirrors isHammer.
func isShootingStar(c model.OHLCV) bool {
	if !c.Complete() {
		return false
	}
	b := body(c)
	return upperShadow(c) > 2*b && lowerShadow(c) < b
}

// isMorningStar: bearish candle, small-bodied indecision candle, then a
// bullish candle closing above the midpoint of the first body.
func isMorningStar(c1, c2, c3 model.OHLCV, ratio float64) bool {
	if !c1.Complete() || !c2.Complete() || !c3.Complete() {
		return false
	}
	return bearish(c1) &&
		body(c2) < ratio*body(c1) &&
		bullish(c3) &&
		c3.Close > (c1.Open+c1.Close)/2
}

// isEveningStar mirrors isMorningStar.
func isEveningStar(c1, c2, c3 model.OHLCV, ratio float64) bool {
	if !c1.Complete() || !c2.Complete() || !c3.Complete() {
		return false
	}
	return bullish(c1) &&
		body(c2) < ratio*body(c1) &&
		bearish(c3) &&
		c3.Close < (c1.Open+c1.Close)/2
}
