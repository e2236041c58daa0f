package reportgen

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/pulse/internal/analysis"
	"github.com/MikeSquared-Agency/pulse/internal/store"
)

// RankedItem is one stressor or blocker with its frequency across the
// day's calls.
type RankedItem struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}

// DailySnapshot is one day's aggregated view of the call reports.
type DailySnapshot struct {
	Date           time.Time
	CallCount      int
	PositivePct    float64
	NegativePct    float64
	StressedPct    float64
	SevereCases    int
	TopStressors   []RankedItem
	CommonBlockers []RankedItem
}

// Snapshot aggregates a day's flat reports. Percentages are rounded to
// one decimal; list items are ranked by count, ties broken by name.
func Snapshot(date time.Time, reports []analysis.FlatReport) (DailySnapshot, error) {
	snap := DailySnapshot{Date: date, CallCount: len(reports)}

	var positive, negative, stressed int
	stressors := map[string]int{}
	blockers := map[string]int{}

	for _, flat := range reports {
		a, err := flat.Analysis()
		if err != nil {
			return DailySnapshot{}, fmt.Errorf("decode report %s: %w", flat.CallID, err)
		}
		positive += a.SentimentCounts.Positive
		negative += a.SentimentCounts.Negative
		if a.StressedDetected {
			stressed++
		}
		if a.IsSevereCase {
			snap.SevereCases++
		}
		tally(stressors, a.TopStressors)
		tally(blockers, a.CommonBlockers)
	}

	if total := positive + negative; total > 0 {
		snap.PositivePct = round1(float64(positive) / float64(total) * 100)
		snap.NegativePct = round1(float64(negative) / float64(total) * 100)
	}
	if len(reports) > 0 {
		snap.StressedPct = round1(float64(stressed) / float64(len(reports)) * 100)
	}

	snap.TopStressors = rank(stressors, len(reports))
	snap.CommonBlockers = rank(blockers, len(reports))
	return snap, nil
}

// Metrics converts the snapshot to its persistence row.
func (s DailySnapshot) Metrics() (store.DailyMetrics, error) {
	stressors, err := marshalRanked(s.TopStressors)
	if err != nil {
		return store.DailyMetrics{}, fmt.Errorf("marshal stressors: %w", err)
	}
	blockers, err := marshalRanked(s.CommonBlockers)
	if err != nil {
		return store.DailyMetrics{}, fmt.Errorf("marshal blockers: %w", err)
	}
	return store.DailyMetrics{
		MetricDate:         s.Date,
		PositivePct:        s.PositivePct,
		NegativePct:        s.NegativePct,
		StressReportedPct:  s.StressedPct,
		TopStressorsJSON:   string(stressors),
		CommonBlockersJSON: string(blockers),
		SevereCases:        s.SevereCases,
	}, nil
}

func marshalRanked(items []RankedItem) ([]byte, error) {
	if items == nil {
		items = []RankedItem{}
	}
	return json.Marshal(items)
}

// tally splits a comma-joined list and counts each distinct item once
// per call.
func tally(counts map[string]int, list string) {
	seen := map[string]bool{}
	for _, part := range strings.Split(list, ",") {
		item := strings.ToLower(strings.TrimSpace(part))
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		counts[item]++
	}
}

func rank(counts map[string]int, callCount int) []RankedItem {
	items := make([]RankedItem, 0, len(counts))
	for name, count := range counts {
		pct := 0.0
		if callCount > 0 {
			pct = round1(float64(count) / float64(callCount) * 100)
		}
		items = append(items, RankedItem{Name: name, Count: count, Pct: pct})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Name < items[j].Name
	})
	return items
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
