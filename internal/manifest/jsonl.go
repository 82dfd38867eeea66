package manifest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spboyer/migbench/internal/models"
)

// loadJSONL reads one JSON object per line. Blank lines are skipped.
func loadJSONL(path string) ([]row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jsonl: read %s: %w", path, err)
	}

	var rows []row
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var r row
		if err := json.Unmarshal(text, &r); err != nil {
			return nil, fmt.Errorf("jsonl: %s line %d: %w", path, line, err)
		}
		rows = append(rows, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("jsonl: scan %s: %w", path, err)
	}
	return rows, nil
}

// loadJSON reads either a single task object or an array of them.
func loadJSON(path string) ([]row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("json: read %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []row
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("json: parse %s: %w", path, err)
		}
		return rows, nil
	}

	var r row
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return nil, fmt.Errorf("json: parse %s: %w", path, err)
	}
	return []row{r}, nil
}

func writeJSONL(w io.Writer, tasks []models.MigrationTask) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range tasks {
		if err := enc.Encode(&tasks[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, tasks []models.MigrationTask) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if len(tasks) == 1 {
		return enc.Encode(&tasks[0])
	}
	return enc.Encode(tasks)
}
