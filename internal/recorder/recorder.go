// Package recorder keeps a history of scans and alerts for later analysis.
package recorder

import (
	"context"
	"math"
	"strings"

	"SignalSentinel/internal/model"
)

// AlertRecord is one alert produced during a scan.
type AlertRecord struct {
	RunID     string
	Alert     *model.Alert
	Delivered bool
}

// AlertRow is a stored alert as read back from the database.
type AlertRow struct {
	ID        int64    `db:"id" json:"id"`
	RunID     string   `db:"run_id" json:"run_id"`
	Symbol    string   `db:"symbol" json:"symbol"`
	BarDate   string   `db:"bar_date" json:"bar_date"`
	Close     *float64 `db:"close" json:"close"`
	RSI       *float64 `db:"rsi" json:"rsi"`
	Signals   string   `db:"signals" json:"signals"`
	Target    *float64 `db:"target" json:"target,omitempty"`
	StopLoss  *float64 `db:"stop_loss" json:"stop_loss,omitempty"`
	Delivered bool     `db:"delivered" json:"delivered"`
	CreatedAt int64    `db:"created_at" json:"created_at"`
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordScan(ctx context.Context, s *model.ScanSummary) error
	RecordAlert(ctx context.Context, rec *AlertRecord) error
	// RecentAlerts returns the newest alerts first; an empty symbol means all.
	RecentAlerts(ctx context.Context, symbol string, limit int) ([]AlertRow, error)
	Close() error
}

// NoopRecorder is a no-op implementation used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScan(_ context.Context, _ *model.ScanSummary) error { return nil }
func (n *NoopRecorder) RecordAlert(_ context.Context, _ *AlertRecord) error      { return nil }
func (n *NoopRecorder) RecentAlerts(_ context.Context, _ string, _ int) ([]AlertRow, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }

// nullable maps NaN to SQL NULL.
func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func signalKinds(a *model.Alert) string {
	kinds := a.Kinds()
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}
