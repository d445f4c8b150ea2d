package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/scanner"
	"SignalSentinel/internal/strategy"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeEvaluator struct {
	running bool
	last    *model.ScanSummary
}

func (f *fakeEvaluator) Running() bool                   { return f.running }
func (f *fakeEvaluator) LastSummary() *model.ScanSummary { return f.last }

func (f *fakeEvaluator) Evaluate(_ context.Context, symbol string) (*scanner.Evaluation, error) {
	switch symbol {
	case "EMPTY":
		return nil, fmt.Errorf("%s: %w", symbol, collector.ErrEmptyInput)
	case "DOWN":
		return nil, errors.New("upstream timeout")
	case "SHORT":
		return &scanner.Evaluation{Series: model.Series{Symbol: symbol}}, nil
	}
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	series := model.Series{Symbol: symbol, Bars: []model.OHLCV{
		{Time: day.AddDate(0, 0, -1), Open: 100, High: 101, Low: 99, Close: 100},
		{Time: day, Open: 100, High: 103, Low: 99, Close: 102},
	}}
	macd := model.Signal{Kind: model.KindMACDBullishCross, Category: model.CategoryIndicator, Direction: model.Bullish, Label: "MACD Bullish Crossover"}
	a := &strategy.Analysis{
		Symbol:             symbol,
		Frame:              &model.IndicatorFrame{RSI: []float64{math.NaN(), 61.2}},
		EvalIndex:          1,
		PrevIndex:          0,
		Indicators:         []model.Signal{macd},
		Pivots:             &model.PivotLevels{Pivot: 100, S1: 99, S2: 98, R1: 101, R2: 102},
		Counted:            2,
		Triggered:          true,
		IndicatorTriggered: true,
	}
	alert := &model.Alert{Symbol: symbol, Date: day, Signals: []model.Signal{macd}, Close: 102,
		Levels: &model.TradeLevels{Target: 107.1, StopLoss: 98.94}}
	return &scanner.Evaluation{Series: series, Analysis: a, Alert: alert}, nil
}

type alertsRecorder struct {
	recorder.NoopRecorder
	symbol string
	limit  int
}

func (r *alertsRecorder) RecentAlerts(_ context.Context, symbol string, limit int) ([]recorder.AlertRow, error) {
	r.symbol, r.limit = symbol, limit
	return []recorder.AlertRow{{ID: 1, Symbol: "INFY", BarDate: "2024-05-02", Signals: "HAMMER"}}, nil
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	m := metrics.New()
	m.AlertsTotal.Inc()
	s := NewServer(Config{}, &fakeEvaluator{}, nil, nil, m)

	w := do(t, s.Handler(), http.MethodGet, "/healthz")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("healthz: %d %s", w.Code, w.Body)
	}
	w = do(t, s.Handler(), http.MethodGet, "/metrics")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "signalsentinel_alerts_total 1") {
		t.Errorf("metrics: %d", w.Code)
	}
}

func TestHealth_FailingCheck(t *testing.T) {
	cfg := Config{Checks: map[string]func(context.Context) error{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}}
	s := NewServer(cfg, &fakeEvaluator{}, nil, nil, nil)
	w := do(t, s.Handler(), http.MethodGet, "/healthz")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "connection refused") {
		t.Errorf("healthz: %d %s", w.Code, w.Body)
	}
}

func TestEvaluate(t *testing.T) {
	s := NewServer(Config{}, &fakeEvaluator{}, nil, nil, nil)

	w := do(t, s.Handler(), http.MethodGet, "/api/v1/evaluate/infy")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	var view evaluationView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Symbol != "INFY" || view.Date != "2024-05-02" || !view.Triggered {
		t.Errorf("unexpected view %+v", view)
	}
	if view.RSI == nil || *view.RSI != 61.2 || view.Target == nil || *view.Target != 107.1 {
		t.Errorf("missing values in %+v", view)
	}
	if len(view.Signals) != 1 || view.Signals[0].Kind != model.KindMACDBullishCross {
		t.Errorf("unexpected signals %+v", view.Signals)
	}

	for path, want := range map[string]int{
		"/api/v1/evaluate/EMPTY": http.StatusUnprocessableEntity,
		"/api/v1/evaluate/SHORT": http.StatusUnprocessableEntity,
		"/api/v1/evaluate/DOWN":  http.StatusBadGateway,
	} {
		if w := do(t, s.Handler(), http.MethodGet, path); w.Code != want {
			t.Errorf("%s: status %d, want %d", path, w.Code, want)
		}
	}
}

func TestScanEndpoint(t *testing.T) {
	ev := &fakeEvaluator{}
	scan := func(trigger model.TriggerType) (*model.ScanSummary, error) {
		return &model.ScanSummary{RunID: "r1", Trigger: trigger, Total: 2, Evaluated: 2}, nil
	}
	s := NewServer(Config{}, ev, scan, nil, nil)

	w := do(t, s.Handler(), http.MethodPost, "/api/v1/scan?wait=true")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"trigger":"API"`) {
		t.Errorf("wait scan: %d %s", w.Code, w.Body)
	}

	ev.running = true
	if w := do(t, s.Handler(), http.MethodPost, "/api/v1/scan"); w.Code != http.StatusConflict {
		t.Errorf("expected 409 while running, got %d", w.Code)
	}

	if w := do(t, s.Handler(), http.MethodGet, "/api/v1/scan/last"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 before any scan, got %d", w.Code)
	}
	ev.last = &model.ScanSummary{RunID: "r0", Alerted: []string{"TCS"}}
	if w := do(t, s.Handler(), http.MethodGet, "/api/v1/scan/last"); !strings.Contains(w.Body.String(), `"alerted":["TCS"]`) {
		t.Errorf("unexpected last scan %s", w.Body)
	}
}

func TestAlertsEndpoint(t *testing.T) {
	rec := &alertsRecorder{}
	s := NewServer(Config{}, &fakeEvaluator{}, nil, rec, nil)

	w := do(t, s.Handler(), http.MethodGet, "/api/v1/alerts?symbol=infy&limit=5")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"signals":"HAMMER"`) {
		t.Errorf("alerts: %d %s", w.Code, w.Body)
	}
	if rec.symbol != "INFY" || rec.limit != 5 {
		t.Errorf("recorder queried with %q, %d", rec.symbol, rec.limit)
	}
	if w := do(t, s.Handler(), http.MethodGet, "/api/v1/alerts?limit=abc"); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bad limit, got %d", w.Code)
	}
}

func TestCORS(t *testing.T) {
	s := NewServer(Config{CORSOrigins: []string{"http://dash.local"}}, &fakeEvaluator{}, nil, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://dash.local")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://dash.local" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
