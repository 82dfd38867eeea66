package main

import (
	"fmt"

	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/manifest"
	"github.com/spboyer/migbench/internal/pipeline"
	"github.com/spboyer/migbench/internal/rundir"
	"github.com/spf13/cobra"
)

func newBatchCommand(g *globalOptions) *cobra.Command {
	var (
		tasksPath, configPath, outDir string
		cf                            cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Migrate every task of a manifest",
		Long: `Generate migrations for every task of a manifest, in manifest order.

The normalized manifest is saved as tasks.jsonl in the run directory. The first
failing task stops the batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			tasks, err := manifest.Load(tasksPath)
			if err != nil {
				return fmt.Errorf("failed to load manifest: %w", err)
			}
			dir, err := rundir.Ensure(outDir, cfg)
			if err != nil {
				return err
			}

			client, release, err := openClient(cmd.Context(), g, cfg, &cf)
			if err != nil {
				return err
			}
			defer release()

			opts, stop := batchOptions(cmd, g)
			err = pipeline.RunBatch(cmd.Context(), client, tasks, cfg, dir, opts)
			stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d task(s) into %s\n", len(tasks), dir.Root()) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&tasksPath, "tasks", "", "Task manifest (CSV, JSONL or JSON)")
	cmd.Flags().StringVar(&configPath, "config", "", "Run config (JSON or YAML)")
	cmd.Flags().StringVar(&outDir, "out", "", "Run directory")
	cf.register(cmd)
	for _, name := range []string{"tasks", "config", "out"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
