// Package pipeline runs the stages of a migration experiment: generate and
// clean (Migrate, Batch), extract code (Parse), compare against ground truth
// (Score), and all of them in sequence (Run).
//
// Stages are strictly sequential. Each task is fully written to disk before
// the next one starts, and every artifact is addressed by task_id.
package pipeline

//go:generate go tool mockgen -destination=mock_client_test.go -package=pipeline github.com/spboyer/migbench/internal/clients Client
//go:generate go tool mockgen -destination=mock_scorer_test.go -package=pipeline github.com/spboyer/migbench/internal/similarity Scorer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spboyer/migbench/internal/clients"
	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/rundir"
)

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// CleanOutput strips a leading chain-of-thought span. When text contains both
// think tags, everything after the first closing tag is returned with leading
// whitespace removed. Otherwise text is returned unchanged.
func CleanOutput(text string) string {
	if !strings.Contains(text, thinkOpen) {
		return text
	}
	_, after, found := strings.Cut(text, thinkClose)
	if !found {
		return text
	}
	return strings.TrimLeft(after, " \t\r\n\v\f")
}

// RunOne generates the migration for task and writes the raw and cleaned
// responses into dir. Client errors are returned as is; nothing is written
// for a failed generation.
func RunOne(ctx context.Context, client clients.Client, task *models.MigrationTask, cfg *config.RunConfig, dir *rundir.Dir) error {
	raw, err := client.Migrate(ctx, task, cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(dir.RawPath(task.TaskID), []byte(raw), 0644); err != nil {
		return fmt.Errorf("writing raw output: %w", err)
	}
	if err := os.WriteFile(dir.CleanPath(task.TaskID), []byte(CleanOutput(raw)), 0644); err != nil {
		return fmt.Errorf("writing clean output: %w", err)
	}
	return nil
}
