package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spboyer/migbench/internal/cache"
	"github.com/spboyer/migbench/internal/clients"
	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/pipeline"
	"github.com/spboyer/migbench/internal/spinner"
	"github.com/spf13/cobra"
)

// cacheFlags enable the response cache on generating commands.
type cacheFlags struct {
	enabled bool
	dir     string
}

func (c *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&c.enabled, "cache", false, "Reuse cached model responses for identical prompts (default: false)")
	cmd.Flags().StringVar(&c.dir, "cache-dir", cache.DefaultDir, "Cache directory for model responses")
}

// openClient builds the client for cfg's family, wrapped in the response
// cache when requested. The returned func releases the client.
func openClient(ctx context.Context, g *globalOptions, cfg *config.RunConfig, cf *cacheFlags) (clients.Client, func(), error) {
	templates := g.templates()
	client, err := clients.New(ctx, cfg.ClientFamily, clients.Options{Templates: templates})
	if err != nil {
		return nil, nil, err
	}
	if cf != nil && cf.enabled {
		slog.Debug("response cache enabled", "dir", cf.dir)
		client = cache.Wrap(client, cache.New(cf.dir), templates)
	}

	release := func() {
		if closer, ok := client.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				slog.Warn("closing client", "family", cfg.ClientFamily, "error", err)
			}
		}
	}
	return client, release, nil
}

// progress returns a batch hook that animates on a terminal and logs
// otherwise, plus a func to stop it.
func progress(cmd *cobra.Command) (func(i, n int, task *models.MigrationTask), func()) {
	errOut := cmd.ErrOrStderr()
	if !spinner.Enabled(errOut) {
		return func(i, n int, task *models.MigrationTask) {
			slog.Info("migrating", "task", fmt.Sprintf("%d/%d", i, n), "task_id", task.TaskID)
		}, func() {}
	}

	var s *spinner.Spinner
	hook := func(i, n int, task *models.MigrationTask) {
		msg := fmt.Sprintf("Migrating %d/%d: %s", i, n, task.TaskID)
		if s == nil {
			s = spinner.Start(errOut, msg)
			return
		}
		s.Update(msg)
	}
	stop := func() {
		if s != nil {
			s.Stop()
		}
	}
	return hook, stop
}

func batchOptions(cmd *cobra.Command, g *globalOptions) (pipeline.BatchOptions, func()) {
	hook, stop := progress(cmd)
	return pipeline.BatchOptions{OnTask: hook, Timeout: g.timeout}, stop
}
