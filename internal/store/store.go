package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the tables the service writes to. Idempotent; runs at
// startup so a fresh database works without an external migration step.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS call_reports (
			id UUID PRIMARY KEY,
			call_id TEXT NOT NULL,
			call_duration_seconds DOUBLE PRECISION NOT NULL,
			stressed_detected BOOLEAN NOT NULL,
			sentiment_counts JSONB NOT NULL,
			top_stressors TEXT NOT NULL DEFAULT '',
			common_blockers TEXT NOT NULL DEFAULT '',
			is_severe_case BOOLEAN NOT NULL,
			analysis_timestamp TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_call_reports_timestamp
			ON call_reports (analysis_timestamp)`,
		`CREATE TABLE IF NOT EXISTS daily_metrics (
			metric_date DATE PRIMARY KEY,
			positive_pct DOUBLE PRECISION NOT NULL,
			negative_pct DOUBLE PRECISION NOT NULL,
			stress_reported_pct DOUBLE PRECISION NOT NULL,
			top_stressors JSONB NOT NULL DEFAULT '[]',
			common_blockers JSONB NOT NULL DEFAULT '[]',
			severe_cases INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
