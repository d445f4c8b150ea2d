package strategy

import (
	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/pattern"
)

// Analysis is everything the engine derived from one series, whether or not
// it triggered. Nil slices mean nothing matched.
type Analysis struct {
	Symbol    string
	Frame     *model.IndicatorFrame
	EvalIndex int
	PrevIndex int

	Indicators []model.Signal
	Patterns   []model.Signal
	Levels     []model.Signal

	Pivots *model.PivotLevels
	Swing  model.SwingLevels

	// Counted is the number of indicator flags that count toward the trigger.
	Counted   int
	Triggered bool
	// IndicatorTriggered is true when the counted flags alone reached the threshold.
	IndicatorTriggered bool
}

// Engine turns a normalized series into an alert decision. It holds no state
// between calls and is safe for concurrent use.
type Engine struct {
	cfg      Config
	detector *pattern.Detector
}

// NewEngine creates an Engine. cfg is assumed to have passed Validate.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, detector: pattern.NewDetector(cfg.Patterns)}
}

// Config returns the settings the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Analyze computes indicators, levels and patterns at the latest mature bar.
// It returns nil when the series is too short to have two mature bars.
func (e *Engine) Analyze(series model.Series) *Analysis {
	bars := series.Bars
	if len(bars) < e.cfg.MinBars {
		return nil
	}

	// Step a: indicator frame and the two bars under evaluation
	frame := calculator.BuildFrame(bars, e.cfg.Indicators)
	mature := frame.MatureIndices()
	if len(mature) < 2 {
		return nil
	}
	evalIdx := mature[len(mature)-1]
	prevIdx := mature[len(mature)-2]
	curr, prev := frame.At(evalIdx), frame.At(prevIdx)
	bar := bars[evalIdx]

	a := &Analysis{
		Symbol:    series.Symbol,
		Frame:     frame,
		EvalIndex: evalIdx,
		PrevIndex: prevIdx,
	}

	// Step b: indicator flags
	a.Indicators = append(a.Indicators, macdFlags(prev, curr)...)
	a.Indicators = append(a.Indicators, trendFlags(prev, curr)...)
	a.Counted = len(a.Indicators)

	crosses, extremes := rsiFlags(prev, curr, e.cfg.RSIOversold, e.cfg.RSIOverbought)
	a.Indicators = append(a.Indicators, crosses...)
	a.Counted += len(crosses)
	a.Indicators = append(a.Indicators, extremes...)
	if e.cfg.CountRSIExtremes {
		a.Counted += len(extremes)
	}

	if sig, ok := volumeSurge(bar, curr, e.cfg.VolumeSurgeMultiplier); ok {
		a.Indicators = append(a.Indicators, sig)
		if e.cfg.CountVolumeSurge {
			a.Counted++
		}
	}

	// Step c: patterns on the bars up to the evaluation bar
	a.Patterns = e.detector.Detect(bars[:evalIdx+1])

	// Step d: pivots from the prior bar, swings over the mature history
	if p, ok := calculator.Pivots(bars, evalIdx); ok {
		a.Pivots = &p
	}
	a.Swing = calculator.Swings(bars[mature[0]:evalIdx+1], e.cfg.SwingWindow)
	a.Levels = levelFlags(bar.Close, a.Swing, a.Pivots, e.cfg.NearSupportFactor)

	// Step e: trigger policy
	a.IndicatorTriggered = a.Counted >= e.cfg.TriggerThreshold
	a.Triggered = a.IndicatorTriggered || len(a.Patterns) > 0
	return a
}

// Evaluate returns the alert for series, or nil when nothing triggered.
func (e *Engine) Evaluate(series model.Series) *model.Alert {
	return e.Alert(e.Analyze(series), series)
}

// Alert composes the report for an analysis of series. It returns nil when a
// is nil or did not trigger.
func (e *Engine) Alert(a *Analysis, series model.Series) *model.Alert {
	if a == nil || !a.Triggered {
		return nil
	}
	bar := series.Bars[a.EvalIndex]
	row := a.Frame.At(a.EvalIndex)

	signals := make([]model.Signal, 0, len(a.Indicators)+len(a.Patterns)+len(a.Levels))
	signals = append(signals, a.Indicators...)
	signals = append(signals, a.Patterns...)
	signals = append(signals, a.Levels...)

	alert := &model.Alert{
		Symbol:  series.Symbol,
		Date:    bar.Time,
		Signals: signals,
		Pivots:  a.Pivots,
		Swing:   a.Swing,
		Close:   bar.Close,
		RSI:     row.RSI,
	}
	if a.IndicatorTriggered {
		alert.Levels = tradeLevels(e.cfg, bar.Close, row.ATR)
	}
	return alert
}
