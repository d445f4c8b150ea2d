package recorder

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"SignalSentinel/internal/model"
)

// PostgresRecorder persists historical data to PostgreSQL.
type PostgresRecorder struct {
	store sqlStore
}

// NewPostgresRecorder connects with dsn (a lib/pq connection string or URL)
// and runs migrations.
func NewPostgresRecorder(dsn string) (*PostgresRecorder, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := &PostgresRecorder{store: sqlStore{db: db}}
	if err := r.store.migrate(postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Msg("postgres recorder connected")
	return r, nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS scans (
		id           BIGSERIAL PRIMARY KEY,
		run_id       TEXT NOT NULL,
		trigger_type TEXT,
		started_at   BIGINT NOT NULL,
		duration_ms  BIGINT,
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
		id         BIGSERIAL PRIMARY KEY,
		run_id     TEXT NOT NULL,
		symbol     TEXT NOT NULL,
		bar_date   TEXT NOT NULL,
		close      DOUBLE PRECISION,
		rsi        DOUBLE PRECISION,
		signals    TEXT,
		target     DOUBLE PRECISION,
		stop_loss  DOUBLE PRECISION,
		delivered  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol, bar_date)`,
}

func (r *PostgresRecorder) RecordScan(ctx context.Context, s *model.ScanSummary) error {
	return r.store.recordScan(ctx, s)
}

func (r *PostgresRecorder) RecordAlert(ctx context.Context, rec *AlertRecord) error {
	return r.store.recordAlert(ctx, rec)
}

func (r *PostgresRecorder) RecentAlerts(ctx context.Context, symbol string, limit int) ([]AlertRow, error) {
	return r.store.recentAlerts(ctx, symbol, limit)
}

func (r *PostgresRecorder) Close() error {
	log.Info().Msg("closing postgres recorder")
	return r.store.db.Close()
}
