package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spboyer/migbench/internal/metrics"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/reporting"
	"github.com/spboyer/migbench/internal/rundir"
	"github.com/spboyer/migbench/internal/runlog"
	"github.com/spboyer/migbench/internal/similarity"
)

// ErrMissingGroundTruth is returned when a task to be scored has no code_after.
var ErrMissingGroundTruth = errors.New("missing ground truth")

// MissingGroundTruthError names the first task without ground truth.
type MissingGroundTruthError struct {
	TaskID string
}

func (e *MissingGroundTruthError) Error() string {
	return fmt.Sprintf("task %s: %s; code_after is required for scoring", e.TaskID, ErrMissingGroundTruth)
}

func (e *MissingGroundTruthError) Unwrap() error {
	return ErrMissingGroundTruth
}

// ScoreOptions tunes RunScore. The zero value is ready to use.
type ScoreOptions struct {
	// Scorer compares predictions with ground truth. Defaults to
	// similarity.Default().
	Scorer similarity.Scorer

	// Logger receives per-task score and warning records. When nil, RunScore
	// logs to <outDir>/analysis.log and Console for the duration of the call.
	Logger *slog.Logger

	// Console is the console sink of the default logger. Defaults to os.Stderr.
	Console io.Writer
}

// RunScore compares the prediction <predDir>/<task_id>.txt of every task with
// its code_after and writes scores.csv, summary.json and summary.txt to outDir.
//
// Every task must carry ground truth; this is checked before anything is
// written. A missing prediction file is logged and recorded as a missing
// score, and the run continues.
func RunScore(ctx context.Context, tasks []models.MigrationTask, predDir, outDir string, opts ScoreOptions) (*models.ScoreReport, error) {
	for i := range tasks {
		if !tasks[i].HasGroundTruth() {
			return nil, &MissingGroundTruthError{TaskID: tasks[i].TaskID}
		}
	}

	if opts.Scorer == nil {
		opts.Scorer = similarity.Default()
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("creating metrics directory: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		l, closer, err := runlog.Open(outDir, opts.Console)
		if err != nil {
			return nil, err
		}
		defer closer.Close()
		logger = l
	}

	report := &models.ScoreReport{Tasks: make([]models.TaskScore, 0, len(tasks))}
	for i := range tasks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		task := &tasks[i]
		ts := models.TaskScore{TaskID: task.TaskID, MigrationType: task.MigrationType}

		predPath := filepath.Join(predDir, task.TaskID+rundir.ArtifactExt)
		prediction, err := os.ReadFile(predPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("prediction not found", "task_id", task.TaskID, "path", predPath)
		case err != nil:
			return nil, fmt.Errorf("reading prediction for task %s: %w", task.TaskID, err)
		default:
			score, err := opts.Scorer.Similarity(string(prediction), *task.CodeAfter, task.Language)
			if err != nil {
				return nil, fmt.Errorf("scoring task %s: %w", task.TaskID, err)
			}
			ts.Score = &score
			logger.Info("scored task", "task_id", task.TaskID, "score", fmt.Sprintf("%.4f", score))
		}
		report.Tasks = append(report.Tasks, ts)
	}

	report.Groups = metrics.GroupScores(report.Tasks)

	if err := reporting.WriteScoresCSV(filepath.Join(outDir, reporting.ScoresFile), report.Tasks); err != nil {
		return nil, err
	}
	if err := reporting.WriteSummaryJSON(filepath.Join(outDir, reporting.SummaryJSONFile), report.Groups); err != nil {
		return nil, err
	}
	if err := reporting.WriteSummaryText(filepath.Join(outDir, reporting.SummaryTextFile), report.Groups); err != nil {
		return nil, err
	}

	for _, g := range report.Groups {
		attrs := []any{"migration_type", g.Label(), "samples_found", g.SamplesFound, "total_samples", g.TotalSamples}
		if g.AvgScore != nil {
			attrs = append(attrs, "avg_score", fmt.Sprintf("%.4f", *g.AvgScore))
		}
		logger.Info("group summary", attrs...)
	}
	return report, nil
}
