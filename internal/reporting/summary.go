package reporting

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spboyer/migbench/internal/models"
)

// InterpretScore returns a plain-language label for a similarity score (0-1).
func InterpretScore(score float64) string {
	pct := score * 100
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

// FormatSummary renders the per-group summary as an aligned table.
func FormatSummary(groups []models.GroupSummary) string {
	var b strings.Builder

	bar := strings.Repeat("=", 25)
	b.WriteString(bar + " ANALYSIS SUMMARY " + bar + "\n\n")

	if len(groups) == 0 {
		b.WriteString("No tasks were scored.\n")
		return b.String()
	}

	header := []string{"Migration type", "Average", "Std dev", "Compared", "Rating"}
	rows := [][]string{header}
	for _, g := range groups {
		avg, sd, rating := "NA", "NA", "-"
		if g.AvgScore != nil {
			avg = formatScore(*g.AvgScore)
			rating = InterpretScore(*g.AvgScore)
		}
		if g.StdDev != nil {
			sd = formatScore(*g.StdDev)
		}
		rows = append(rows, []string{
			g.Label(),
			avg,
			sd,
			fmt.Sprintf("%d/%d", g.SamplesFound, g.TotalSamples),
			rating,
		})
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			if j == len(row)-1 {
				cells[j] = cell
				continue
			}
			cells[j] = padRight(cell, widths[j])
		}
		b.WriteString(strings.Join(cells, "  ") + "\n")
		if i == 0 {
			sep := make([]string, len(widths))
			for j, w := range widths {
				sep[j] = strings.Repeat("-", w)
			}
			b.WriteString(strings.Join(sep, "  ") + "\n")
		}
	}
	return b.String()
}

// WriteSummaryText writes FormatSummary to path.
func WriteSummaryText(path string, groups []models.GroupSummary) error {
	return os.WriteFile(path, []byte(FormatSummary(groups)), 0644)
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
