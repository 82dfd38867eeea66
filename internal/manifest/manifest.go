// Package manifest loads and persists the ordered list of migration tasks
// that drive a run.
//
// Two encodings are supported, selected by file extension: one JSON object
// per line (.jsonl, .ndjson) and CSV with a header row (everything else).
// A .json file holds a single task object, or an array of them. Legacy
// column names are resolved onto the canonical fields; see [aliases].
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spboyer/migbench/internal/models"
)

// DefaultLanguage is used when a row has no language column.
const DefaultLanguage = "python"

// canonicalFields is the column order used when writing a manifest.
var canonicalFields = []string{
	"task_id",
	"language",
	"source_lib",
	"target_lib",
	"repo_name",
	"migration_type",
	"code_before",
	"code_after",
}

// aliases maps each canonical field to the names it may appear under, in
// priority order.
var aliases = map[string][]string{
	"task_id":        {"task_id", "id"},
	"language":       {"language", "lang"},
	"source_lib":     {"source_lib", "legacy_lib", "rmv_lib", "old_lib"},
	"target_lib":     {"target_lib", "add_lib", "new_lib"},
	"repo_name":      {"repo_name", "repo"},
	"code_before":    {"code_before", "before"},
	"code_after":     {"code_after", "after"},
	"migration_type": {"migration_type", "type"},
}

var requiredFields = []string{"task_id", "source_lib", "target_lib", "code_before"}

type format int

const (
	formatCSV format = iota
	formatJSONL
	formatJSON
)

func formatFor(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return formatJSONL
	case ".json":
		return formatJSON
	default:
		return formatCSV
	}
}

// Load reads the manifest at path and returns its tasks in file order.
// It fails with a [*SchemaError] when a row lacks a required field or when
// two rows share a task_id.
func Load(path string) ([]models.MigrationTask, error) {
	var (
		rows []row
		err  error
	)

	switch formatFor(path) {
	case formatJSONL:
		rows, err = loadJSONL(path)
	case formatJSON:
		rows, err = loadJSON(path)
	default:
		rows, err = loadCSV(path)
	}
	if err != nil {
		return nil, err
	}

	tasks := make([]models.MigrationTask, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for i, r := range rows {
		task, err := toTask(r)
		if err != nil {
			if se, ok := err.(*SchemaError); ok {
				se.Path = path
				se.Row = i + 1
			}
			return nil, err
		}
		if first, dup := seen[task.TaskID]; dup {
			return nil, &SchemaError{
				Path:  path,
				Row:   i + 1,
				Field: "task_id",
				Msg:   fmt.Sprintf("duplicate of row %d for", first),
			}
		}
		seen[task.TaskID] = i + 1
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// LoadTask reads a file expected to hold exactly one task.
func LoadTask(path string) (*models.MigrationTask, error) {
	tasks, err := Load(path)
	if err != nil {
		return nil, err
	}
	if len(tasks) != 1 {
		return nil, fmt.Errorf("manifest %s: expected exactly one task, found %d", path, len(tasks))
	}
	return &tasks[0], nil
}

// Write persists tasks to path, creating parent directories as needed.
// The encoding follows the same extension rule as [Load]; a .json file gets
// a bare object for a single task and an array otherwise.
func Write(path string, tasks []models.MigrationTask) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	var buf bytes.Buffer
	var err error
	switch formatFor(path) {
	case formatJSONL:
		err = writeJSONL(&buf, tasks)
	case formatJSON:
		err = writeJSON(&buf, tasks)
	default:
		err = writeCSV(&buf, tasks)
	}
	if err != nil {
		return fmt.Errorf("encoding manifest %s: %w", path, err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// normalize resolves aliases onto canonical field names. Rows in which a
// field is present under several names keep the highest priority one.
func normalize(r row) map[string]any {
	out := make(map[string]any, len(aliases))
	for canonical, names := range aliases {
		for _, name := range names {
			v, ok := r[name]
			if !ok || v == nil {
				continue
			}
			out[canonical] = v
			break
		}
	}
	return out
}

func toTask(r row) (models.MigrationTask, error) {
	fields := normalize(r)

	for _, name := range requiredFields {
		v, ok := fields[name]
		if !ok {
			return models.MigrationTask{}, &SchemaError{Field: name}
		}
		if s, isString := v.(string); isString && s == "" {
			return models.MigrationTask{}, &SchemaError{Field: name, Msg: "empty required field"}
		}
	}

	var task models.MigrationTask
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           &task,
	})
	if err != nil {
		return models.MigrationTask{}, err
	}
	if err := decoder.Decode(fields); err != nil {
		return models.MigrationTask{}, &SchemaError{Field: "row", Msg: err.Error()}
	}

	if !validTaskID(task.TaskID) {
		return models.MigrationTask{}, &SchemaError{Field: "task_id", Msg: "task_id must be a plain file name"}
	}
	if task.Language == "" {
		task.Language = DefaultLanguage
	}
	return task, nil
}

// validTaskID reports whether id can name a file inside a run directory
// without escaping it.
func validTaskID(id string) bool {
	if id == "." || id == ".." || strings.ContainsRune(id, 0) {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}
