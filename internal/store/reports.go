package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/pulse/internal/analysis"
)

// InsertCallReport persists one analysis report and returns its row id.
func (s *Store) InsertCallReport(ctx context.Context, flat analysis.FlatReport) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO call_reports (
			id, call_id, call_duration_seconds, stressed_detected,
			sentiment_counts, top_stressors, common_blockers,
			is_severe_case, analysis_timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, flat.CallID, flat.CallDurationSeconds, flat.StressedDetected,
		flat.SentimentCountsJSON, flat.TopStressors, flat.CommonBlockers,
		flat.IsSevereCase, flat.AnalysisTimestamp,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert call report: %w", err)
	}
	return id, nil
}

// RecentReports returns the newest persisted reports, newest first.
func (s *Store) RecentReports(ctx context.Context, limit int) ([]analysis.FlatReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT call_id, call_duration_seconds, stressed_detected,
		       sentiment_counts::text, top_stressors, common_blockers,
		       is_severe_case, to_char(analysis_timestamp AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
		FROM call_reports
		ORDER BY analysis_timestamp DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent reports: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

// ReportsSince returns all reports analyzed at or after the given time,
// oldest first. The daily report job uses a 24 hour window.
func (s *Store) ReportsSince(ctx context.Context, since time.Time) ([]analysis.FlatReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT call_id, call_duration_seconds, stressed_detected,
		       sentiment_counts::text, top_stressors, common_blockers,
		       is_severe_case, to_char(analysis_timestamp AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
		FROM call_reports
		WHERE analysis_timestamp >= $1
		ORDER BY analysis_timestamp ASC`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("query reports since %s: %w", since.Format(time.RFC3339), err)
	}
	defer rows.Close()
	return scanReports(rows)
}

type reportRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanReports(rows reportRows) ([]analysis.FlatReport, error) {
	var out []analysis.FlatReport
	for rows.Next() {
		var flat analysis.FlatReport
		if err := rows.Scan(
			&flat.CallID, &flat.CallDurationSeconds, &flat.StressedDetected,
			&flat.SentimentCountsJSON, &flat.TopStressors, &flat.CommonBlockers,
			&flat.IsSevereCase, &flat.AnalysisTimestamp,
		); err != nil {
			return nil, fmt.Errorf("scan call report: %w", err)
		}
		out = append(out, flat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate call reports: %w", err)
	}
	return out, nil
}
