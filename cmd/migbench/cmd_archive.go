package main

import (
	"fmt"

	"github.com/spboyer/migbench/internal/archive"
	"github.com/spf13/cobra"
)

func newArchiveCommand() *cobra.Command {
	var runDir, outPath string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Pack a run directory into a .tar.zst file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath == "" {
				outPath = archive.DefaultPath(runDir)
			}
			n, err := archive.Create(runDir, outPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %d file(s) to %s\n", n, outPath) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&runDir, "run", "", "Run directory")
	cmd.Flags().StringVar(&outPath, "out", "", "Archive path (default: <run>.tar.zst)")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}
