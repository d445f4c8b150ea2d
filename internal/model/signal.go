package model

import "time"

// TriggerType indicates what started a scan.
type TriggerType string

const (
	TriggerScheduled TriggerType = "SCHEDULED"
	TriggerStartup   TriggerType = "STARTUP"
	TriggerManual    TriggerType = "MANUAL"
	TriggerAPI       TriggerType = "API"
)

// SignalKind is the closed vocabulary of everything the engine can flag.
type SignalKind string

const (
	// Indicator flags
	KindMACDBullishCross SignalKind = "MACD_BULLISH_CROSS"
	KindMACDBearishCross SignalKind = "MACD_BEARISH_CROSS"
	KindSMA50Above100    SignalKind = "SMA50_ABOVE_SMA100"
	KindSMA50Below100    SignalKind = "SMA50_BELOW_SMA100"
	KindGoldenCross      SignalKind = "GOLDEN_CROSS"
	KindDeathCross       SignalKind = "DEATH_CROSS"
	KindRSIOversold      SignalKind = "RSI_OVERSOLD"
	KindRSIOverbought    SignalKind = "RSI_OVERBOUGHT"
	KindRSIReversalUp    SignalKind = "RSI_REVERSAL_UP"
	KindRSIReversalDown  SignalKind = "RSI_REVERSAL_DOWN"
	KindVolumeSurge      SignalKind = "VOLUME_SURGE"

	// Candlestick patterns
	KindBullishEngulfing SignalKind = "BULLISH_ENGULFING"
	KindBearishEngulfing SignalKind = "BEARISH_ENGULFING"
	KindHammer           SignalKind = "HAMMER"
	KindShootingStar     SignalKind = "SHOOTING_STAR"
	KindMorningStar      SignalKind = "MORNING_STAR"
	KindEveningStar      SignalKind = "EVENING_STAR"

	// Chart patterns
	KindBreakout           SignalKind = "BREAKOUT"
	KindBreakdown          SignalKind = "BREAKDOWN"
	KindAscendingTriangle  SignalKind = "ASCENDING_TRIANGLE"
	KindDescendingTriangle SignalKind = "DESCENDING_TRIANGLE"

	// Support / resistance context
	KindNearSupport        SignalKind = "NEAR_SUPPORT"
	KindResistanceBreakout SignalKind = "RESISTANCE_BREAKOUT"
	KindBelowS1            SignalKind = "BELOW_S1"
	KindAboveR1            SignalKind = "ABOVE_R1"
)

// SignalCategory groups signals for the trigger policy and report layout.
type SignalCategory string

const (
	CategoryIndicator   SignalCategory = "indicator"
	CategoryCandlestick SignalCategory = "candlestick"
	CategoryChart       SignalCategory = "chart"
	CategoryLevel       SignalCategory = "level"
)

// Direction is the bias a signal implies.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	Neutral Direction = "neutral"
)

// Signal is one flag raised at the evaluation bar.
type Signal struct {
	Kind      SignalKind
	Category  SignalCategory
	Direction Direction
	Label     string
}

// IsPattern reports whether the signal is a candlestick or chart pattern.
func (s Signal) IsPattern() bool {
	return s.Category == CategoryCandlestick || s.Category == CategoryChart
}

// PivotLevels are classic floor-trader pivots derived from the prior bar.
type PivotLevels struct {
	Pivot float64
	S1    float64
	S2    float64
	R1    float64
	R2    float64
}

// SwingLevels are the most recent confirmed swing low and high. Nil means none.
type SwingLevels struct {
	Support    *float64
	Resistance *float64
}

// TradeLevels are the suggested exit prices attached to an indicator-driven alert.
type TradeLevels struct {
	Target   float64
	StopLoss float64
}

// Alert is the final, immutable output of one evaluation.
type Alert struct {
	Symbol  string
	Date    time.Time
	Signals []Signal
	Pivots  *PivotLevels
	Swing   SwingLevels
	Close   float64
	RSI     float64
	Levels  *TradeLevels
}

// Kinds returns the kinds of all signals in report order.
func (a *Alert) Kinds() []SignalKind {
	kinds := make([]SignalKind, len(a.Signals))
	for i, s := range a.Signals {
		kinds[i] = s.Kind
	}
	return kinds
}
