package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spboyer/migbench/internal/clients"
	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/manifest"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/rundir"
)

// BatchOptions tunes RunBatch. The zero value is ready to use.
type BatchOptions struct {
	// OnTask is called before each task is generated, with a 1-based index.
	OnTask func(i, n int, task *models.MigrationTask)

	// Timeout bounds each generation call. Zero means no limit.
	Timeout time.Duration
}

// RunBatch persists the normalized manifest to the run directory and then runs
// every task through RunOne in manifest order. The first failing task aborts
// the batch; tasks after it are not attempted.
func RunBatch(ctx context.Context, client clients.Client, tasks []models.MigrationTask, cfg *config.RunConfig, dir *rundir.Dir, opts BatchOptions) error {
	if err := manifest.Write(dir.ManifestPath(), tasks); err != nil {
		return fmt.Errorf("persisting manifest: %w", err)
	}

	for i := range tasks {
		task := &tasks[i]
		if opts.OnTask != nil {
			opts.OnTask(i+1, len(tasks), task)
		}

		start := time.Now()
		if err := runWithTimeout(ctx, opts.Timeout, client, task, cfg, dir); err != nil {
			return fmt.Errorf("task %s: %w", task.TaskID, err)
		}
		slog.Debug("generated migration", "task_id", task.TaskID, "duration", time.Since(start))
	}
	return nil
}

func runWithTimeout(ctx context.Context, timeout time.Duration, client clients.Client, task *models.MigrationTask, cfg *config.RunConfig, dir *rundir.Dir) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return RunOne(ctx, client, task, cfg, dir)
}
