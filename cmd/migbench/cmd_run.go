package main

import (
	"context"
	"fmt"

	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/manifest"
	"github.com/spboyer/migbench/internal/pipeline"
	"github.com/spboyer/migbench/internal/rundir"
	"github.com/spf13/cobra"
)

func newRunCommand(g *globalOptions) *cobra.Command {
	var taskPath, configPath, outDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Migrate a single task",
		Long: `Run one task through the configured model and write its raw and cleaned
responses into the run directory.

The task file holds exactly one task, as a JSON object or a one-line JSONL/CSV
manifest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			task, err := manifest.LoadTask(taskPath)
			if err != nil {
				return fmt.Errorf("failed to load task: %w", err)
			}
			dir, err := rundir.Ensure(outDir, cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, release, err := openClient(ctx, g, cfg, nil)
			if err != nil {
				return err
			}
			defer release()

			if g.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, g.timeout)
				defer cancel()
			}
			if err := pipeline.RunOne(ctx, client, task, cfg, dir); err != nil {
				return fmt.Errorf("task %s: %w", task.TaskID, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Raw output:   %s\nClean output: %s\n", dir.RawPath(task.TaskID), dir.CleanPath(task.TaskID)) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&taskPath, "task", "", "Task file (JSON object, JSONL or CSV with one task)")
	cmd.Flags().StringVar(&configPath, "config", "", "Run config (JSON or YAML)")
	cmd.Flags().StringVar(&outDir, "out", "", "Run directory")
	for _, name := range []string{"task", "config", "out"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
