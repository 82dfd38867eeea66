package main

import (
	"fmt"

	"github.com/spboyer/migbench/internal/manifest"
	"github.com/spboyer/migbench/internal/pipeline"
	"github.com/spboyer/migbench/internal/reporting"
	"github.com/spf13/cobra"
)

func newScoreCommand() *cobra.Command {
	var tasksPath, predDir, outDir string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score parsed predictions against ground truth",
		Long: `Compare <pred>/<task_id>.txt with the code_after of every task and write
scores.csv, summary.json, summary.txt and analysis.log to --out.

Every task needs code_after. A missing prediction is logged and counted as a
missing score.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := manifest.Load(tasksPath)
			if err != nil {
				return fmt.Errorf("failed to load manifest: %w", err)
			}
			report, err := pipeline.RunScore(cmd.Context(), tasks, predDir, outDir, pipeline.ScoreOptions{
				Console: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), reporting.FormatSummary(report.Groups)) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&tasksPath, "tasks", "", "Task manifest with code_after (e.g. <run>/tasks.jsonl)")
	cmd.Flags().StringVar(&predDir, "pred", "", "Directory of parsed predictions (e.g. <run>/parsed)")
	cmd.Flags().StringVar(&outDir, "out", "", "Metrics directory (e.g. <run>/metrics)")
	for _, name := range []string{"tasks", "pred", "out"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
