// Package reporting renders score reports as CSV, JSON, text and JUnit XML.
package reporting

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spboyer/migbench/internal/models"
)

// File names written by the score stage.
const (
	ScoresFile      = "scores.csv"
	SummaryJSONFile = "summary.json"
	SummaryTextFile = "summary.txt"
)

var scoresHeader = []string{"task_id", "migration_type", "score"}

// WriteScoresCSV writes one row per task. Missing scores and absent types are
// empty cells.
func WriteScoresCSV(path string, scores []models.TaskScore) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(scoresHeader); err != nil {
		return err
	}
	for _, s := range scores {
		row := []string{s.TaskID, "", ""}
		if s.MigrationType != nil {
			row[1] = *s.MigrationType
		}
		if s.Score != nil {
			row[2] = strconv.FormatFloat(*s.Score, 'f', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteSummaryJSON writes one record per group as an indented JSON array.
func WriteSummaryJSON(path string, groups []models.GroupSummary) error {
	if groups == nil {
		groups = []models.GroupSummary{}
	}
	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func typeLabel(t *string) string {
	if t == nil {
		return "<none>"
	}
	return *t
}
