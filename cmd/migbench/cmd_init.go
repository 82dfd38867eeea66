package main

import (
	"fmt"
	"os"

	"github.com/spboyer/migbench/internal/clients"
	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/wizard"
	"github.com/spf13/cobra"
)

func newInitCommand(g *globalOptions) *cobra.Command {
	var (
		defaults config.RunConfig
		yes      bool
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init <config.json>",
		Short: "Create a run config",
		Long: `Create a run config file, asking for any field not given as a flag.

With --yes no questions are asked and every field must come from flags
(language defaults to python).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			templateNames, err := g.templates().Names()
			if err != nil {
				return err
			}

			var cfg *config.RunConfig
			if yes {
				doc := map[string]any{
					"client_family":   defaults.ClientFamily,
					"model_version":   defaults.ModelVersion,
					"prompt_template": defaults.PromptTemplate,
				}
				if defaults.Language != "" {
					doc["language"] = defaults.Language
				}
				if cfg, err = config.FromDocument(doc, "flags"); err != nil {
					return err
				}
			} else {
				cfg, err = wizard.Run(cmd.InOrStdin(), cmd.OutOrStdout(), defaults, wizard.Choices{
					Families:  clients.Families(),
					Templates: templateNames,
				})
				if err != nil {
					return err
				}
			}

			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nWrote %s\n", path) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&defaults.ClientFamily, "family", "", "Client family")
	cmd.Flags().StringVar(&defaults.ModelVersion, "model", "", "Model version")
	cmd.Flags().StringVar(&defaults.PromptTemplate, "template", "zero_shot", "Prompt template name")
	cmd.Flags().StringVar(&defaults.Language, "language", config.DefaultLanguage, "Source language")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask; take every field from flags")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")

	return cmd
}
