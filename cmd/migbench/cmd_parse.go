package main

import (
	"fmt"
	"strings"

	"github.com/spboyer/migbench/internal/extract"
	"github.com/spboyer/migbench/internal/pipeline"
	"github.com/spf13/cobra"
)

// parseFlags are shared by parse and pipeline.
type parseFlags struct {
	policy    string
	extractor string
}

func (p *parseFlags) register(cmd *cobra.Command, policyFlag string) {
	cmd.Flags().StringVar(&p.policy, policyFlag, string(pipeline.PolicyFirst),
		"Code block policy: "+strings.Join(pipeline.Policies(), ", "))
	cmd.Flags().StringVar(&p.extractor, "extractor", extract.NameFence,
		"Code block extractor: "+strings.Join(extract.Names(), ", "))
}

func (p *parseFlags) resolve() (pipeline.Policy, extract.Extractor, error) {
	policy, err := pipeline.ParsePolicy(p.policy)
	if err != nil {
		return "", nil, err
	}
	extractor, err := extract.ByName(p.extractor)
	if err != nil {
		return "", nil, err
	}
	return policy, extractor, nil
}

func newParseCommand() *cobra.Command {
	var (
		inDir, outDir string
		pf            parseFlags
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Extract code blocks from model responses",
		Long: `Extract the code from every .txt response under --in and write it below
--out, keeping relative directories.

Policies:
  first         keep the first code block as <task_id>.txt
  all_concat    join every block with a blank line into <task_id>.txt
  all_separate  write block N as <task_id>__blockN.txt

A response without code fences is kept whole (trimmed) as a single block.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, extractor, err := pf.resolve()
			if err != nil {
				return err
			}
			n, err := pipeline.RunParse(inDir, outDir, policy, extractor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Parsed %d response(s) into %s (policy: %s)\n", n, outDir, policy) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&inDir, "in", "", "Directory of model responses (e.g. <run>/migrations/clean)")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (e.g. <run>/parsed)")
	pf.register(cmd, "policy")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
