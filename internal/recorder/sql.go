package recorder

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"SignalSentinel/internal/model"
)

// sqlStore holds the queries shared by the SQLite and Postgres recorders.
// Queries are written with ? placeholders and rebound per driver.
type sqlStore struct {
	db *sqlx.DB
}

func (s *sqlStore) migrate(stmts []string) error {
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			n := len(stmt)
			if n > 40 {
				n = 40
			}
			return fmt.Errorf("exec %q: %w", stmt[:n], err)
		}
	}
	return nil
}

func (s *sqlStore) recordScan(ctx context.Context, sum *model.ScanSummary) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO scans
		(run_id, trigger_type, started_at, duration_ms, total, evaluated, skipped, failed, alerts, suppressed, undelivered)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`),
		sum.RunID, string(sum.Trigger), sum.StartedAt.Unix(), sum.Duration.Milliseconds(),
		sum.Total, sum.Evaluated, sum.Skipped, sum.Failed,
		len(sum.Alerted), sum.Suppressed, sum.Undelivered,
	)
	return err
}

func (s *sqlStore) recordAlert(ctx context.Context, rec *AlertRecord) error {
	a := rec.Alert
	var target, stop *float64
	if a.Levels != nil {
		target, stop = nullable(a.Levels.Target), nullable(a.Levels.StopLoss)
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO alerts
		(run_id, symbol, bar_date, close, rsi, signals, target, stop_loss, delivered, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`),
		rec.RunID, a.Symbol, a.Date.Format("2006-01-02"),
		nullable(a.Close), nullable(a.RSI), signalKinds(a),
		target, stop, rec.Delivered, time.Now().Unix(),
	)
	return err
}

func (s *sqlStore) recentAlerts(ctx context.Context, symbol string, limit int) ([]AlertRow, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, run_id, symbol, bar_date, close, rsi, signals, target, stop_loss, delivered, created_at
		FROM alerts`
	args := []any{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	var rows []AlertRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}
