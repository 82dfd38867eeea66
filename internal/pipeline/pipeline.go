package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spboyer/migbench/internal/clients"
	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/extract"
	"github.com/spboyer/migbench/internal/manifest"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/reporting"
	"github.com/spboyer/migbench/internal/rundir"
)

// JUnitFile is the JUnit report written to the reports directory.
const JUnitFile = "junit.xml"

// Options tunes Run. The zero value parses with PolicyFirst and the fence
// extractor.
type Options struct {
	Policy    Policy
	Extractor extract.Extractor
	Batch     BatchOptions
	Score     ScoreOptions
	JUnit     reporting.JUnitOptions
}

// Run executes a full experiment into outDir: generate every task of the
// manifest at tasksPath, parse migrations/clean into parsed, and score the
// persisted tasks.jsonl against parsed into metrics. A JUnit view of the scores
// is written to reports/junit.xml. Tasks without ground truth are rejected
// before the run directory is created.
func Run(ctx context.Context, client clients.Client, tasksPath string, cfg *config.RunConfig, outDir string, opts Options) (*models.ScoreReport, error) {
	policy, err := ParsePolicy(string(opts.Policy))
	if err != nil {
		return nil, err
	}

	tasks, err := manifest.Load(tasksPath)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	// Scoring needs ground truth for every task; find out before paying for
	// any generation.
	for i := range tasks {
		if !tasks[i].HasGroundTruth() {
			return nil, &MissingGroundTruthError{TaskID: tasks[i].TaskID}
		}
	}

	dir, err := rundir.Ensure(outDir, cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("generating migrations", "tasks", len(tasks), "family", cfg.ClientFamily, "model", cfg.ModelVersion)
	if err := RunBatch(ctx, client, tasks, cfg, dir, opts.Batch); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}

	n, err := RunParse(dir.CleanDir(), dir.ParsedDir(), policy, opts.Extractor)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	slog.Info("parsed migrations", "documents", n, "policy", policy)

	// Score from the persisted manifest so the run directory alone is enough
	// to reproduce the numbers.
	persisted, err := manifest.Load(dir.ManifestPath())
	if err != nil {
		return nil, fmt.Errorf("loading persisted manifest: %w", err)
	}
	report, err := RunScore(ctx, persisted, dir.ParsedDir(), dir.MetricsDir(), opts.Score)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	if err := reporting.WriteJUnitXML(report, cfg, opts.JUnit, filepath.Join(dir.ReportsDir(), JUnitFile)); err != nil {
		return nil, fmt.Errorf("writing JUnit report: %w", err)
	}
	return report, nil
}
