package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/scanner"
)

type signalView struct {
	Kind      model.SignalKind     `json:"kind"`
	Category  model.SignalCategory `json:"category"`
	Direction model.Direction      `json:"direction"`
	Label     string               `json:"label"`
}

type pivotsView struct {
	Pivot float64 `json:"pivot"`
	S1    float64 `json:"s1"`
	S2    float64 `json:"s2"`
	R1    float64 `json:"r1"`
	R2    float64 `json:"r2"`
}

type evaluationView struct {
	Symbol             string       `json:"symbol"`
	Date               string       `json:"date"`
	Close              *float64     `json:"close"`
	RSI                *float64     `json:"rsi"`
	Counted            int          `json:"counted"`
	Triggered          bool         `json:"triggered"`
	IndicatorTriggered bool         `json:"indicator_triggered"`
	Signals            []signalView `json:"signals"`
	Pivots             *pivotsView  `json:"pivots,omitempty"`
	Support            *float64     `json:"support,omitempty"`
	Resistance         *float64     `json:"resistance,omitempty"`
	Target             *float64     `json:"target,omitempty"`
	StopLoss           *float64     `json:"stop_loss,omitempty"`
}

type summaryView struct {
	RunID       string   `json:"run_id"`
	Trigger     string   `json:"trigger"`
	StartedAt   string   `json:"started_at"`
	DurationMS  int64    `json:"duration_ms"`
	Total       int      `json:"total"`
	Evaluated   int      `json:"evaluated"`
	Skipped     int      `json:"skipped"`
	Failed      int      `json:"failed"`
	Alerted     []string `json:"alerted"`
	Suppressed  int      `json:"suppressed"`
	Undelivered int      `json:"undelivered"`
}

// finite maps NaN to null in JSON.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func toSummaryView(s *model.ScanSummary) summaryView {
	alerted := s.Alerted
	if alerted == nil {
		alerted = []string{}
	}
	return summaryView{
		RunID:       s.RunID,
		Trigger:     string(s.Trigger),
		StartedAt:   s.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		DurationMS:  s.Duration.Milliseconds(),
		Total:       s.Total,
		Evaluated:   s.Evaluated,
		Skipped:     s.Skipped,
		Failed:      s.Failed,
		Alerted:     alerted,
		Suppressed:  s.Suppressed,
		Undelivered: s.Undelivered,
	}
}

func toEvaluationView(ev *scanner.Evaluation) evaluationView {
	a := ev.Analysis
	bar := ev.Series.Bars[a.EvalIndex]
	view := evaluationView{
		Symbol:             ev.Series.Symbol,
		Date:               bar.Time.Format("2006-01-02"),
		Close:              finite(ev.Close()),
		RSI:                finite(ev.RSI()),
		Counted:            a.Counted,
		Triggered:          a.Triggered,
		IndicatorTriggered: a.IndicatorTriggered,
		Signals:            []signalView{},
		Support:            a.Swing.Support,
		Resistance:         a.Swing.Resistance,
	}
	for _, group := range [][]model.Signal{a.Indicators, a.Patterns, a.Levels} {
		for _, sig := range group {
			view.Signals = append(view.Signals, signalView(sig))
		}
	}
	if p := a.Pivots; p != nil {
		view.Pivots = &pivotsView{Pivot: p.Pivot, S1: p.S1, S2: p.S2, R1: p.R1, R2: p.R2}
	}
	if ev.Alert != nil && ev.Alert.Levels != nil {
		view.Target = finite(ev.Alert.Levels.Target)
		view.StopLoss = finite(ev.Alert.Levels.StopLoss)
	}
	return view
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	checks := gin.H{}
	for name, check := range s.cfg.Checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status, code = "unhealthy", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	resp := gin.H{
		"status":       status,
		"scan_running": s.evaluator.Running(),
		"checks":       checks,
	}
	if last := s.evaluator.LastSummary(); last != nil {
		resp["last_scan"] = last.StartedAt.Add(last.Duration).Unix()
	}
	c.JSON(code, resp)
}

func (s *Server) handleEvaluate(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	ev, err := s.evaluator.Evaluate(c.Request.Context(), symbol)
	switch {
	case err != nil && collector.IsSkip(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	case err != nil:
		log.Warn().Err(err).Str("symbol", symbol).Msg("evaluate request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	case ev.Analysis == nil:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": collector.ErrInsufficientHistory.Error()})
		return
	}
	c.JSON(http.StatusOK, toEvaluationView(ev))
}

// handleScan starts a scan. With ?wait=true it blocks and returns the summary.
func (s *Server) handleScan(c *gin.Context) {
	if s.scan == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "scanning is not configured"})
		return
	}
	if s.evaluator.Running() {
		c.JSON(http.StatusConflict, gin.H{"error": scanner.ErrScanInProgress.Error()})
		return
	}

	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		sum, err := s.scan(model.TriggerAPI)
		if errors.Is(err, scanner.ErrScanInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, toSummaryView(sum))
		return
	}

	go func() {
		if _, err := s.scan(model.TriggerAPI); err != nil {
			log.Error().Err(err).Msg("api scan")
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "scan started"})
}

func (s *Server) handleLastScan(c *gin.Context) {
	last := s.evaluator.LastSummary()
	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scan has run yet"})
		return
	}
	c.JSON(http.StatusOK, toSummaryView(last))
}

func (s *Server) handleAlerts(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}
	symbol := strings.ToUpper(c.Query("symbol"))
	rows, err := s.recorder.RecentAlerts(c.Request.Context(), symbol, limit)
	if err != nil {
		log.Error().Err(err).Msg("query alerts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query alerts"})
		return
	}
	if rows == nil {
		rows = []recorder.AlertRow{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": rows})
}
