package recorder

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"SignalSentinel/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	store sqlStore
	mu    sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	// WAL lets dashboards read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{store: sqlStore{db: db}}
	if err := r.store.migrate(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS scans (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id       TEXT NOT NULL,
		trigger_type TEXT,
		started_at   INTEGER NOT NULL,
		duration_ms  INTEGER,
		total        INTEGER,
		evaluated    INTEGER,
		skipped      INTEGER,
		failed       INTEGER,
		alerts       INTEGER,
		suppressed   INTEGER,
		undelivered  INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scans_started ON scans(started_at)`,

	`CREATE TABLE IF NOT EXISTS alerts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id     TEXT NOT NULL,
		symbol     TEXT NOT NULL,
		bar_date   TEXT NOT NULL,
		close      REAL,
		rsi        REAL,
		signals    TEXT,
		target     REAL,
		stop_loss  REAL,
		delivered  INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol, bar_date)`,
}

func (r *SQLiteRecorder) RecordScan(ctx context.Context, s *model.ScanSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.recordScan(ctx, s)
}

func (r *SQLiteRecorder) RecordAlert(ctx context.Context, rec *AlertRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.recordAlert(ctx, rec)
}

func (r *SQLiteRecorder) RecentAlerts(ctx context.Context, symbol string, limit int) ([]AlertRow, error) {
	return r.store.recentAlerts(ctx, symbol, limit)
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.store.db.Close()
}
