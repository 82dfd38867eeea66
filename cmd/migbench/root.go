package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spboyer/migbench/internal/prompt"
	"github.com/spf13/cobra"
)

var version = "dev"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	debug       bool
	timeout     time.Duration
	templateDir string
}

func (g *globalOptions) templates() *prompt.Templates {
	if g.templateDir != "" {
		return prompt.DirTemplates(g.templateDir)
	}
	return prompt.DefaultTemplates()
}

func newRootCommand() *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "migbench",
		Short: "migbench - reproducible LLM code-migration experiments",
		Long: `migbench asks a language model to migrate code snippets from one library to
another and measures how close the result is to a known-good migration.

A run generates a response per task, strips reasoning preambles, extracts the
code blocks, and scores them against the ground truth. Every artifact lands in
a run directory keyed by task_id.`,
		Version:      version,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolVar(&g.debug, "debug", false, "Enable debug logging")
	flags.DurationVar(&g.timeout, "timeout", 0, "Per-generation timeout, e.g. 2m (default: none)")
	flags.StringVar(&g.templateDir, "template-dir", "", "Directory of <name>.txt prompt templates (default: built-in)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if g.debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		// API keys may come from a .env file in the working directory.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		return nil
	}

	cmd.AddCommand(newRunCommand(g))
	cmd.AddCommand(newBatchCommand(g))
	cmd.AddCommand(newParseCommand())
	cmd.AddCommand(newScoreCommand())
	cmd.AddCommand(newPipelineCommand(g))
	cmd.AddCommand(newInitCommand(g))
	cmd.AddCommand(newArchiveCommand())
	cmd.AddCommand(newPublishCommand())
	cmd.AddCommand(newCacheCommand())

	return cmd
}

func execute(ctx context.Context) error {
	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}
