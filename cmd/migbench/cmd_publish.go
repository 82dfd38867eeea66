package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spboyer/migbench/internal/archive"
	"github.com/spboyer/migbench/internal/publish"
	"github.com/spf13/cobra"
)

func newPublishCommand() *cobra.Command {
	var (
		runDir     string
		target     publish.Target
		asArchive  bool
		workers    int
		maxRetries int32
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload a run directory to Azure Blob Storage",
		Long: `Upload every file of a run directory to an Azure Blob Storage container.

Credentials come from the Azure default credential chain (environment, workload
identity, managed identity, Azure CLI, ...). Blob names default to
<run name>/<relative path>. With --archive, the run is packed into a single
.tar.zst blob first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if target.Prefix == "" {
				target.Prefix = filepath.Base(filepath.Clean(runDir))
			}

			src := runDir
			if asArchive {
				tmp, err := os.MkdirTemp("", "migbench-publish-")
				if err != nil {
					return err
				}
				defer os.RemoveAll(tmp)

				src = filepath.Join(tmp, filepath.Base(archive.DefaultPath(runDir)))
				if _, err := archive.Create(runDir, src); err != nil {
					return err
				}
				target.Prefix = ""
			}

			n, err := publish.Upload(cmd.Context(), src, target, publish.Options{Workers: workers, MaxRetries: maxRetries})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d file(s) to %s/%s\n", n, target.AccountURL, target.Container) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&runDir, "run", "", "Run directory")
	cmd.Flags().StringVar(&target.AccountURL, "account-url", "", "Blob service URL, e.g. https://<account>.blob.core.windows.net/")
	cmd.Flags().StringVar(&target.Container, "container", "", "Blob container")
	cmd.Flags().StringVar(&target.Prefix, "prefix", "", "Blob name prefix (default: run directory name)")
	cmd.Flags().BoolVar(&asArchive, "archive", false, "Upload a single .tar.zst of the run instead of individual files")
	cmd.Flags().IntVar(&workers, "workers", publish.DefaultWorkers, "Concurrent uploads")
	cmd.Flags().Int32Var(&maxRetries, "max-retries", 0, "Retries per upload (default: Azure SDK default)")
	for _, name := range []string{"run", "account-url", "container"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
