package reportgen

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// BuildPDF renders the daily report document: metric summary, trend
// charts when history exists, ranked lists, and the model's
// recommendations.
func BuildPDF(snap DailySnapshot, charts ChartSet, suggestions Suggestions) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(0, 10, "Daily Call Wellbeing Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 6, snap.Date.Format("Monday, 2 January 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// metric cards
	cards := []struct {
		label string
		value string
	}{
		{"Calls analyzed", fmt.Sprintf("%d", snap.CallCount)},
		{"Positive sentiment", fmt.Sprintf("%.1f%%", snap.PositivePct)},
		{"Stress detected", fmt.Sprintf("%.1f%%", snap.StressedPct)},
		{"Severe cases", fmt.Sprintf("%d", snap.SevereCases)},
	}
	cardWidth := 45.0
	for _, card := range cards {
		x, y := pdf.GetXY()
		pdf.SetFillColor(245, 245, 245)
		pdf.Rect(x, y, cardWidth-3, 18, "F")
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(33, 33, 33)
		pdf.SetXY(x+3, y+3)
		pdf.CellFormat(cardWidth-9, 7, card.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.SetXY(x+3, y+10)
		pdf.CellFormat(cardWidth-9, 5, card.label, "", 0, "L", false, 0, "")
		pdf.SetXY(x+cardWidth, y)
	}
	pdf.Ln(24)

	// charts row
	for i, img := range [][]byte{charts.Sentiment, charts.Stress, charts.Severe} {
		if len(img) == 0 {
			continue
		}
		name := fmt.Sprintf("chart-%d", i)
		pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(img))
		pdf.ImageOptions(name, pdf.GetX(), pdf.GetY(), 120, 0, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		pdf.Ln(3)
	}

	writeRankedSection(pdf, "Top stressors", snap.TopStressors)
	writeRankedSection(pdf, "Common blockers", snap.CommonBlockers)
	writeSuggestionSection(pdf, "This week", suggestions.ShortTerm)
	writeSuggestionSection(pdf, "Longer term", suggestions.LongTerm)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRankedSection(pdf *fpdf.Fpdf, title string, items []RankedItem) {
	if len(items) == 0 {
		return
	}
	sectionHeader(pdf, title)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(33, 33, 33)
	for i, item := range items {
		if i == 5 {
			break
		}
		pdf.CellFormat(0, 6, fmt.Sprintf("%d. %s  (%d calls, %.1f%%)", i+1, item.Name, item.Count, item.Pct), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
}

func writeSuggestionSection(pdf *fpdf.Fpdf, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	sectionHeader(pdf, title)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(33, 33, 33)
	for _, line := range lines {
		pdf.MultiCell(0, 6, "- "+line, "", "L", false)
	}
	pdf.Ln(2)
}

func sectionHeader(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}
