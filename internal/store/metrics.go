package store

import (
	"context"
	"fmt"
	"time"
)

// DailyMetrics is one day's aggregated row. The stressor and blocker
// columns hold JSON arrays of ranked items produced by the report job.
type DailyMetrics struct {
	MetricDate         time.Time
	PositivePct        float64
	NegativePct        float64
	StressReportedPct  float64
	TopStressorsJSON   string
	CommonBlockersJSON string
	SevereCases        int
}

// UpsertDailyMetrics writes the day's aggregate, replacing any earlier
// run for the same date so the report job is safe to re-run.
func (s *Store) UpsertDailyMetrics(ctx context.Context, m DailyMetrics) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO daily_metrics (
			metric_date, positive_pct, negative_pct, stress_reported_pct,
			top_stressors, common_blockers, severe_cases
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (metric_date) DO UPDATE SET
			positive_pct = EXCLUDED.positive_pct,
			negative_pct = EXCLUDED.negative_pct,
			stress_reported_pct = EXCLUDED.stress_reported_pct,
			top_stressors = EXCLUDED.top_stressors,
			common_blockers = EXCLUDED.common_blockers,
			severe_cases = EXCLUDED.severe_cases`,
		m.MetricDate, m.PositivePct, m.NegativePct, m.StressReportedPct,
		m.TopStressorsJSON, m.CommonBlockersJSON, m.SevereCases,
	)
	if err != nil {
		return fmt.Errorf("upsert daily metrics: %w", err)
	}
	return nil
}

// LastDailyMetrics returns up to n most recent daily rows in ascending
// date order, ready for trend charting.
func (s *Store) LastDailyMetrics(ctx context.Context, n int) ([]DailyMetrics, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT metric_date, positive_pct, negative_pct, stress_reported_pct,
		       top_stressors::text, common_blockers::text, severe_cases
		FROM (
			SELECT * FROM daily_metrics ORDER BY metric_date DESC LIMIT $1
		) recent
		ORDER BY metric_date ASC`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query daily metrics: %w", err)
	}
	defer rows.Close()

	var out []DailyMetrics
	for rows.Next() {
		var m DailyMetrics
		if err := rows.Scan(
			&m.MetricDate, &m.PositivePct, &m.NegativePct, &m.StressReportedPct,
			&m.TopStressorsJSON, &m.CommonBlockersJSON, &m.SevereCases,
		); err != nil {
			return nil, fmt.Errorf("scan daily metrics: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily metrics: %w", err)
	}
	return out, nil
}
