package reportgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/pulse/internal/analysis"
)

func flatReport(t *testing.T, a analysis.CallAnalysis) analysis.FlatReport {
	t.Helper()
	flat, err := analysis.NewReport("call", 60, a).Flatten()
	require.NoError(t, err)
	return flat
}

func TestSnapshot(t *testing.T) {
	date := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	reports := []analysis.FlatReport{
		flatReport(t, analysis.CallAnalysis{
			StressedDetected: true,
			SentimentCounts:  analysis.SentimentCounts{Positive: 1, Negative: 3},
			TopStressors:     "Workload, deadlines",
			CommonBlockers:   "waiting for approvals",
			IsSevereCase:     true,
		}),
		flatReport(t, analysis.CallAnalysis{
			StressedDetected: true,
			SentimentCounts:  analysis.SentimentCounts{Positive: 2, Negative: 2},
			TopStressors:     "workload",
		}),
		flatReport(t, analysis.CallAnalysis{
			SentimentCounts: analysis.SentimentCounts{Positive: 3, Negative: 1},
		}),
	}

	snap, err := Snapshot(date, reports)
	require.NoError(t, err)

	assert.Equal(t, 3, snap.CallCount)
	assert.Equal(t, 1, snap.SevereCases)
	// 6 positive / 12 total
	assert.Equal(t, 50.0, snap.PositivePct)
	assert.Equal(t, 50.0, snap.NegativePct)
	// 2 of 3 calls stressed
	assert.Equal(t, 66.7, snap.StressedPct)

	require.Len(t, snap.TopStressors, 2)
	assert.Equal(t, RankedItem{Name: "workload", Count: 2, Pct: 66.7}, snap.TopStressors[0])
	assert.Equal(t, RankedItem{Name: "deadlines", Count: 1, Pct: 33.3}, snap.TopStressors[1])

	require.Len(t, snap.CommonBlockers, 1)
	assert.Equal(t, "waiting for approvals", snap.CommonBlockers[0].Name)
}

func TestSnapshot_Empty(t *testing.T) {
	snap, err := Snapshot(time.Now(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, snap.CallCount)
	assert.Zero(t, snap.PositivePct)
	assert.Zero(t, snap.StressedPct)
	assert.Empty(t, snap.TopStressors)
}

func TestSnapshot_DuplicateItemCountedOncePerCall(t *testing.T) {
	reports := []analysis.FlatReport{
		flatReport(t, analysis.CallAnalysis{TopStressors: "workload, Workload, workload"}),
	}

	snap, err := Snapshot(time.Now(), reports)
	require.NoError(t, err)

	require.Len(t, snap.TopStressors, 1)
	assert.Equal(t, 1, snap.TopStressors[0].Count)
}

func TestSnapshot_RankTiesBrokenByName(t *testing.T) {
	reports := []analysis.FlatReport{
		flatReport(t, analysis.CallAnalysis{TopStressors: "zeta, alpha"}),
	}

	snap, err := Snapshot(time.Now(), reports)
	require.NoError(t, err)

	require.Len(t, snap.TopStressors, 2)
	assert.Equal(t, "alpha", snap.TopStressors[0].Name)
	assert.Equal(t, "zeta", snap.TopStressors[1].Name)
}

func TestSnapshotMetricsRow(t *testing.T) {
	date := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	snap := DailySnapshot{
		Date:         date,
		CallCount:    4,
		PositivePct:  25,
		NegativePct:  75,
		StressedPct:  50,
		SevereCases:  2,
		TopStressors: []RankedItem{{Name: "workload", Count: 3, Pct: 75}},
	}

	row, err := snap.Metrics()
	require.NoError(t, err)

	assert.Equal(t, date, row.MetricDate)
	assert.Equal(t, 2, row.SevereCases)
	assert.JSONEq(t, `[{"name":"workload","count":3,"pct":75}]`, row.TopStressorsJSON)
	assert.Equal(t, "[]", row.CommonBlockersJSON)
}
