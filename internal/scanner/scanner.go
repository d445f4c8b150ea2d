// Package scanner runs the engine over a universe of instruments and delivers
// the resulting alerts.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/strategy"
)

// ErrScanInProgress is returned when a scan is requested while one is running.
var ErrScanInProgress = errors.New("scan already in progress")

// Source yields the normalized series of one instrument.
type Source interface {
	Collect(ctx context.Context, symbol string) (model.Series, error)
}

// Evaluator is the signal engine.
type Evaluator interface {
	Analyze(series model.Series) *strategy.Analysis
	Alert(a *strategy.Analysis, series model.Series) *model.Alert
}

// Deduper remembers which (symbol, bar date) pairs already alerted.
type Deduper interface {
	MarkAlerted(ctx context.Context, symbol string, date time.Time) (bool, error)
	UnmarkAlerted(ctx context.Context, symbol string, date time.Time) error
}

// Options tunes a scan.
type Options struct {
	// Concurrency bounds the number of instruments evaluated at once.
	Concurrency int
	// RequestsPerSecond paces data requests; zero disables pacing.
	RequestsPerSecond float64
	Currency          string
	// SendSummary sends the end-of-scan message to the sink.
	SendSummary bool
}

// Deps are the collaborators of a Scanner. Dedupe and Metrics are optional.
type Deps struct {
	Source   Source
	Engine   Evaluator
	Sink     notifier.Sink
	Dedupe   Deduper
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
}

// Scanner evaluates a universe and dispatches alerts. Only one scan runs at a time.
type Scanner struct {
	deps    Deps
	opts    Options
	limiter *rate.Limiter

	running atomic.Bool
	mu      sync.Mutex
	last    *model.ScanSummary
}

// New creates a Scanner.
func New(deps Deps, opts Options) *Scanner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Currency == "" {
		opts.Currency = notifier.DefaultCurrency
	}
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.Sink == nil {
		deps.Sink = notifier.LogSink{}
	}
	s := &Scanner{deps: deps, opts: opts}
	if opts.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return s
}

// Running reports whether a scan is in progress.
func (s *Scanner) Running() bool { return s.running.Load() }

// LastSummary returns the summary of the most recent scan, or nil.
func (s *Scanner) LastSummary() *model.ScanSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	cp := *s.last
	return &cp
}

type outcome int

const (
	outcomeEvaluated outcome = iota
	outcomeSkipped
	outcomeFailed
)

type result struct {
	outcome outcome
	alert   *model.Alert
	err     error
}

// Scan evaluates every symbol and delivers alerts in universe order. A failure
// on one instrument never stops the others.
func (s *Scanner) Scan(ctx context.Context, trigger model.TriggerType, symbols []string) (*model.ScanSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer s.running.Store(false)

	sum := &model.ScanSummary{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		StartedAt: time.Now(),
		Total:     len(symbols),
	}
	logger := log.With().Str("run", sum.RunID).Str("trigger", string(trigger)).Logger()
	logger.Info().Int("symbols", len(symbols)).Msg("scan started")

	results := make([]result, len(symbols))
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			results[i] = s.evaluate(ctx, symbol)
			return nil
		})
	}
	g.Wait()

	for i, r := range results {
		switch r.outcome {
		case outcomeSkipped:
			sum.Skipped++
			s.countInstrument(metrics.OutcomeSkipped)
			logger.Info().Str("symbol", symbols[i]).Err(r.err).Msg("skipped")
			continue
		case outcomeFailed:
			sum.Failed++
			s.countInstrument(metrics.OutcomeFailed)
			logger.Error().Str("symbol", symbols[i]).Err(r.err).Msg("evaluation failed")
			continue
		}
		sum.Evaluated++
		s.countInstrument(metrics.OutcomeEvaluated)
		if r.alert == nil {
			continue
		}
		switch s.dispatch(ctx, sum.RunID, r.alert) {
		case delivered:
			sum.Alerted = append(sum.Alerted, r.alert.Symbol)
		case suppressed:
			sum.Suppressed++
		case undelivered:
			sum.Undelivered++
		}
	}
	sum.Duration = time.Since(sum.StartedAt)

	if s.opts.SendSummary {
		if err := s.deps.Sink.Send(ctx, notifier.FormatScanSummary(*sum)); err != nil {
			logger.Error().Err(err).Msg("send scan summary")
		}
	}
	if err := s.deps.Recorder.RecordScan(ctx, sum); err != nil {
		logger.Error().Err(err).Msg("record scan")
	}
	if m := s.deps.Metrics; m != nil {
		m.ObserveScan(string(trigger), sum.Duration)
	}

	s.mu.Lock()
	s.last = sum
	s.mu.Unlock()

	logger.Info().
		Int("evaluated", sum.Evaluated).Int("skipped", sum.Skipped).Int("failed", sum.Failed).
		Int("alerts", len(sum.Alerted)).Dur("took", sum.Duration).
		Msg("scan finished")
	return sum, nil
}

func (s *Scanner) countInstrument(outcome string) {
	if m := s.deps.Metrics; m != nil {
		m.InstrumentsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Scanner) evaluate(ctx context.Context, symbol string) (r result) {
	defer func() {
		if p := recover(); p != nil {
			r = result{outcome: outcomeFailed, err: fmt.Errorf("panic: %v", p)}
		}
	}()

	ev, err := s.Evaluate(ctx, symbol)
	if err != nil {
		if collector.IsSkip(err) {
			return result{outcome: outcomeSkipped, err: err}
		}
		return result{outcome: outcomeFailed, err: err}
	}
	if ev.Analysis == nil {
		return result{outcome: outcomeSkipped, err: collector.ErrInsufficientHistory}
	}
	if ev.Stale() {
		log.Warn().Str("symbol", symbol).
			Time("evaluated", ev.Series.Bars[ev.Analysis.EvalIndex].Time).
			Time("latest", ev.Series.Bars[len(ev.Series.Bars)-1].Time).
			Msg("latest bars have missing values, evaluating an older bar")
	}
	return result{outcome: outcomeEvaluated, alert: ev.Alert}
}

// Evaluation is the engine's view of one instrument.
type Evaluation struct {
	Series   model.Series
	Analysis *strategy.Analysis // nil when there were fewer than two mature bars
	Alert    *model.Alert       // nil when nothing triggered
}

// Stale reports whether the evaluation bar is older than the latest bar, which
// happens when the most recent bars have missing values.
func (e *Evaluation) Stale() bool {
	return e.Analysis != nil && e.Analysis.EvalIndex < len(e.Series.Bars)-1
}

// Close is the close of the evaluation bar, or NaN.
func (e *Evaluation) Close() float64 {
	if e.Analysis == nil {
		return math.NaN()
	}
	return e.Series.Bars[e.Analysis.EvalIndex].Close
}

// RSI is the RSI at the evaluation bar, or NaN.
func (e *Evaluation) RSI() float64 {
	if e.Analysis == nil || e.Analysis.Frame == nil {
		return math.NaN()
	}
	return e.Analysis.Frame.RSI[e.Analysis.EvalIndex]
}

// Evaluate fetches and evaluates one instrument without delivering anything.
func (s *Scanner) Evaluate(ctx context.Context, symbol string) (*Evaluation, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	start := time.Now()
	series, err := s.deps.Source.Collect(ctx, symbol)
	if m := s.deps.Metrics; m != nil {
		m.FetchDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}
	a := s.deps.Engine.Analyze(series)
	return &Evaluation{Series: series, Analysis: a, Alert: s.deps.Engine.Alert(a, series)}, nil
}

// Check evaluates one instrument on demand and returns the report text.
func (s *Scanner) Check(ctx context.Context, symbol string) (string, error) {
	ev, err := s.Evaluate(ctx, symbol)
	if err != nil {
		return "", err
	}
	if ev.Analysis == nil {
		return "", fmt.Errorf("%s: %w", symbol, collector.ErrInsufficientHistory)
	}
	if ev.Alert != nil {
		return notifier.FormatAlert(ev.Alert, s.opts.Currency), nil
	}
	return notifier.FormatQuiet(symbol, ev.Close(), ev.RSI(), s.opts.Currency), nil
}

type delivery int

const (
	delivered delivery = iota
	suppressed
	undelivered
)

func (s *Scanner) dispatch(ctx context.Context, runID string, a *model.Alert) delivery {
	logger := log.With().Str("run", runID).Str("symbol", a.Symbol).Logger()
	m := s.deps.Metrics

	if d := s.deps.Dedupe; d != nil {
		fresh, err := d.MarkAlerted(ctx, a.Symbol, a.Date)
		if err != nil {
			logger.Warn().Err(err).Msg("dedupe check failed, sending anyway")
		} else if !fresh {
			logger.Info().Time("bar", a.Date).Msg("alert already sent for this bar")
			if m != nil {
				m.SuppressedTotal.Inc()
			}
			return suppressed
		}
	}

	if m != nil {
		m.AlertsTotal.Inc()
		for _, sig := range a.Signals {
			m.SignalsTotal.WithLabelValues(string(sig.Kind)).Inc()
		}
	}

	result := delivered
	if err := s.deps.Sink.Send(ctx, notifier.FormatAlert(a, s.opts.Currency)); err != nil {
		logger.Error().Err(err).Msg("alert delivery failed")
		result = undelivered
		if m != nil {
			m.DeliveryFailures.Inc()
		}
		if d := s.deps.Dedupe; d != nil {
			if err := d.UnmarkAlerted(ctx, a.Symbol, a.Date); err != nil {
				logger.Warn().Err(err).Msg("unmark alert")
			}
		}
	} else {
		logger.Info().Int("signals", len(a.Signals)).Msg("alert sent")
	}

	if err := s.deps.Recorder.RecordAlert(ctx, &recorder.AlertRecord{
		RunID:     runID,
		Alert:     a,
		Delivered: result == delivered,
	}); err != nil {
		logger.Error().Err(err).Msg("record alert")
	}
	return result
}
