package main

import (
	"fmt"

	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/pipeline"
	"github.com/spboyer/migbench/internal/reporting"
	"github.com/spf13/cobra"
)

func newPipelineCommand(g *globalOptions) *cobra.Command {
	var (
		tasksPath, configPath, outDir string
		threshold                     float64
		pf                            parseFlags
		cf                            cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Generate, parse and score in one run",
		Long: `Run batch, parse and score back to back into one run directory:

  <out>/config.json         run config snapshot
  <out>/tasks.jsonl         normalized manifest
  <out>/migrations/raw      verbatim responses
  <out>/migrations/clean    responses without reasoning preambles
  <out>/parsed              extracted code
  <out>/metrics             scores.csv, summary.json, summary.txt, analysis.log
  <out>/reports/junit.xml   per-task JUnit view of the scores

With --threshold, the command exits with status 1 when any task scores below it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, extractor, err := pf.resolve()
			if err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			client, release, err := openClient(cmd.Context(), g, cfg, &cf)
			if err != nil {
				return err
			}
			defer release()

			batch, stop := batchOptions(cmd, g)
			report, err := pipeline.Run(cmd.Context(), client, tasksPath, cfg, outDir, pipeline.Options{
				Policy:    policy,
				Extractor: extractor,
				Batch:     batch,
				Score:     pipeline.ScoreOptions{Console: cmd.ErrOrStderr()},
				JUnit:     reporting.JUnitOptions{Threshold: threshold},
			})
			stop()
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), reporting.FormatSummary(report.Groups)) //nolint:errcheck
			return checkThreshold(report.Tasks, threshold)
		},
	}

	cmd.Flags().StringVar(&tasksPath, "tasks", "", "Task manifest (CSV, JSONL or JSON)")
	cmd.Flags().StringVar(&configPath, "config", "", "Run config (JSON or YAML)")
	cmd.Flags().StringVar(&outDir, "out", "", "Run directory")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Lowest passing score per task (default: 0, never fails)")
	pf.register(cmd, "parse-policy")
	cf.register(cmd)
	for _, name := range []string{"tasks", "config", "out"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

// checkThreshold fails when a scored task falls below threshold. Tasks with
// a missing prediction are not counted.
func checkThreshold(scores []models.TaskScore, threshold float64) error {
	if threshold <= 0 {
		return nil
	}
	failed := 0
	for _, s := range scores {
		if s.Score != nil && *s.Score < threshold {
			failed++
		}
	}
	if failed > 0 {
		return &ThresholdError{Failed: failed, Total: len(scores), Threshold: threshold}
	}
	return nil
}
