package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spboyer/migbench/internal/models"
)

// row is a single manifest record keyed by its raw column or field name.
type row map[string]any

// loadCSV reads a CSV manifest. The first record is the header. Empty cells
// are dropped so that optional fields resolve to absent.
func loadCSV(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	return readCSV(f, path)
}

func readCSV(r io.Reader, path string) ([]row, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	headers := records[0]
	rows := make([]row, 0, len(records)-1)

	for _, record := range records[1:] {
		r := make(row, len(headers))
		for j, h := range headers {
			if record[j] == "" {
				continue
			}
			r[h] = record[j]
		}
		rows = append(rows, r)
	}

	return rows, nil
}

func writeCSV(w io.Writer, tasks []models.MigrationTask) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(canonicalFields); err != nil {
		return err
	}
	for _, t := range tasks {
		if err := cw.Write([]string{
			t.TaskID,
			t.Language,
			t.SourceLib,
			t.TargetLib,
			t.RepoName,
			deref(t.MigrationType),
			t.CodeBefore,
			deref(t.CodeAfter),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
