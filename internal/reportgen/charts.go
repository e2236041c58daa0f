package reportgen

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/pulse/internal/store"
)

// ChartSet holds the rendered trend charts as PNG bytes. A nil slice
// means the chart was skipped for lack of data points.
type ChartSet struct {
	Sentiment []byte
	Stress    []byte
	Severe    []byte
}

// RenderCharts draws the three daily-metric trend lines concurrently.
// Charts need at least two days of history; with fewer the set comes
// back empty and the PDF simply omits the charts row.
func RenderCharts(ctx context.Context, rows []store.DailyMetrics) (ChartSet, error) {
	if len(rows) < 2 {
		return ChartSet{}, nil
	}

	dates := make([]time.Time, len(rows))
	positive := make([]float64, len(rows))
	negative := make([]float64, len(rows))
	stress := make([]float64, len(rows))
	severe := make([]float64, len(rows))
	for i, row := range rows {
		dates[i] = row.MetricDate
		positive[i] = row.PositivePct
		negative[i] = row.NegativePct
		stress[i] = row.StressReportedPct
		severe[i] = float64(row.SevereCases)
	}

	var set ChartSet
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		png, err := renderLines("Sentiment %", dates,
			line("positive", positive, drawing.ColorFromHex("2e7d32")),
			line("negative", negative, drawing.ColorFromHex("c62828")),
		)
		if err != nil {
			return fmt.Errorf("sentiment chart: %w", err)
		}
		set.Sentiment = png
		return nil
	})
	g.Go(func() error {
		png, err := renderLines("Stress reported %", dates,
			line("stressed", stress, drawing.ColorFromHex("ef6c00")),
		)
		if err != nil {
			return fmt.Errorf("stress chart: %w", err)
		}
		set.Stress = png
		return nil
	})
	g.Go(func() error {
		png, err := renderLines("Severe cases", dates,
			line("severe", severe, drawing.ColorFromHex("6a1b9a")),
		)
		if err != nil {
			return fmt.Errorf("severe chart: %w", err)
		}
		set.Severe = png
		return nil
	})

	if err := g.Wait(); err != nil {
		return ChartSet{}, err
	}
	return set, nil
}

type series struct {
	name   string
	values []float64
	color  drawing.Color
}

func line(name string, values []float64, color drawing.Color) series {
	return series{name: name, values: values, color: color}
}

func renderLines(title string, dates []time.Time, lines ...series) ([]byte, error) {
	chartSeries := make([]chart.Series, len(lines))
	for i, s := range lines {
		chartSeries[i] = chart.TimeSeries{
			Name:    s.name,
			XValues: dates,
			YValues: s.values,
			Style: chart.Style{
				StrokeColor: s.color,
				StrokeWidth: 2,
			},
		}
	}

	graph := chart.Chart{
		Title:  title,
		Width:  520,
		Height: 280,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: chartSeries,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
