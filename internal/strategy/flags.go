package strategy

import (
	"fmt"
	"math"

	"SignalSentinel/internal/model"
)

// crossedAbove reports whether a moved from at-or-below b to strictly above it.
// Any missing value means no cross.
func crossedAbove(prevA, prevB, currA, currB float64) bool {
	return prevA <= prevB && currA > currB
}

func crossedBelow(prevA, prevB, currA, currB float64) bool {
	return prevA >= prevB && currA < currB
}

func indicator(kind model.SignalKind, dir model.Direction, label string) model.Signal {
	return model.Signal{Kind: kind, Category: model.CategoryIndicator, Direction: dir, Label: label}
}

func level(kind model.SignalKind, dir model.Direction, label string) model.Signal {
	return model.Signal{Kind: kind, Category: model.CategoryLevel, Direction: dir, Label: label}
}

// macdFlags checks MACD against its signal line.
func macdFlags(prev, curr model.Row) []model.Signal {
	var out []model.Signal
	if crossedAbove(prev.MACD, prev.MACDSignal, curr.MACD, curr.MACDSignal) {
		out = append(out, indicator(model.KindMACDBullishCross, model.Bullish, "MACD Bullish Crossover"))
	}
	if crossedBelow(prev.MACD, prev.MACDSignal, curr.MACD, curr.MACDSignal) {
		out = append(out, indicator(model.KindMACDBearishCross, model.Bearish, "MACD Bearish Crossover"))
	}
	return out
}

// trendFlags checks SMA50 against SMA100 and, when it exists at both bars, SMA200.
func trendFlags(prev, curr model.Row) []model.Signal {
	var out []model.Signal
	if crossedAbove(prev.SMA50, prev.SMA100, curr.SMA50, curr.SMA100) {
		out = append(out, indicator(model.KindSMA50Above100, model.Bullish, "SMA50 crossed above SMA100"))
	}
	if crossedBelow(prev.SMA50, prev.SMA100, curr.SMA50, curr.SMA100) {
		out = append(out, indicator(model.KindSMA50Below100, model.Bearish, "SMA50 crossed below SMA100"))
	}
	if math.IsNaN(prev.SMA200) || math.IsNaN(curr.SMA200) {
		return out
	}
	if crossedAbove(prev.SMA50, prev.SMA200, curr.SMA50, curr.SMA200) {
		out = append(out, indicator(model.KindGoldenCross, model.Bullish, "Golden Cross (SMA50 above SMA200)"))
	}
	if crossedBelow(prev.SMA50, prev.SMA200, curr.SMA50, curr.SMA200) {
		out = append(out, indicator(model.KindDeathCross, model.Bearish, "Death Cross (SMA50 below SMA200)"))
	}
	return out
}

// rsiFlags returns the threshold crossings and, separately, the extreme-zone
// readings so the caller can decide whether extremes count toward the trigger.
func rsiFlags(prev, curr model.Row, oversold, overbought float64) (crosses, extremes []model.Signal) {
	if prev.RSI < oversold && curr.RSI >= oversold {
		crosses = append(crosses, indicator(model.KindRSIReversalUp, model.Bullish,
			fmt.Sprintf("RSI crossed above %.0f", oversold)))
	}
	if prev.RSI > overbought && curr.RSI <= overbought {
		crosses = append(crosses, indicator(model.KindRSIReversalDown, model.Bearish,
			fmt.Sprintf("RSI crossed below %.0f", overbought)))
	}
	if curr.RSI < oversold {
		extremes = append(extremes, indicator(model.KindRSIOversold, model.Bullish,
			fmt.Sprintf("RSI Oversold (%.1f)", curr.RSI)))
	}
	if curr.RSI > overbought {
		extremes = append(extremes, indicator(model.KindRSIOverbought, model.Bearish,
			fmt.Sprintf("RSI Overbought (%.1f)", curr.RSI)))
	}
	return crosses, extremes
}

// volumeSurge flags volume strictly above multiplier times the trailing average.
func volumeSurge(bar model.OHLCV, curr model.Row, multiplier float64) (model.Signal, bool) {
	if !(bar.Volume > multiplier*curr.AvgVol) {
		return model.Signal{}, false
	}
	return indicator(model.KindVolumeSurge, model.Neutral, "Volume Surge"), true
}

// levelFlags relates the close to swing and pivot levels. These add context to
// a report and never fire an alert on their own.
func levelFlags(close float64, swing model.SwingLevels, pivots *model.PivotLevels, nearFactor float64) []model.Signal {
	var out []model.Signal
	if swing.Support != nil && close <= *swing.Support*nearFactor {
		out = append(out, level(model.KindNearSupport, model.Bullish,
			fmt.Sprintf("Near Support (%.2f)", *swing.Support)))
	}
	if swing.Resistance != nil && close > *swing.Resistance {
		out = append(out, level(model.KindResistanceBreakout, model.Bullish,
			fmt.Sprintf("Resistance Breakout (%.2f)", *swing.Resistance)))
	}
	if pivots != nil {
		if close < pivots.S1 {
			out = append(out, level(model.KindBelowS1, model.Bearish, "Price below S1"))
		}
		if close > pivots.R1 {
			out = append(out, level(model.KindAboveR1, model.Bullish, "Price above R1"))
		}
	}
	return out
}
