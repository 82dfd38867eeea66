// Package wizard collects a RunConfig interactively for `migbench init`.
package wizard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spboyer/migbench/internal/config"
	"golang.org/x/term"
)

// Choices are the values offered for the enumerated fields.
type Choices struct {
	Families  []string
	Templates []string
}

var errUnexpectedEOF = errors.New("unexpected end of input")

// isTerminal is replaced in tests.
var isTerminal = func(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Run asks for every RunConfig field, offering defaults' values as the
// starting answers. A terminal gets a huh form; any other reader is read one
// answer per line, where an empty line keeps the default.
func Run(in io.Reader, out io.Writer, defaults config.RunConfig, choices Choices) (*config.RunConfig, error) {
	if defaults.Language == "" {
		defaults.Language = config.DefaultLanguage
	}

	if isTerminal(in) {
		return runForm(in, out, defaults, choices)
	}
	return runLines(in, out, defaults, choices)
}

func runForm(in io.Reader, out io.Writer, cfg config.RunConfig, choices Choices) (*config.RunConfig, error) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Client family").
				Description("Which backend generates the migrations").
				Options(huh.NewOptions(choices.Families...)...).
				Value(&cfg.ClientFamily),
			huh.NewInput().
				Title("Model version").
				Description("Model name as the backend knows it").
				Placeholder("gpt-4o, codeqwen:latest, gemini-2.5-flash").
				Value(&cfg.ModelVersion).
				Validate(required("model version")),
			huh.NewSelect[string]().
				Title("Prompt template").
				Options(huh.NewOptions(choices.Templates...)...).
				Value(&cfg.PromptTemplate),
			huh.NewInput().
				Title("Language").
				Value(&cfg.Language).
				Validate(required("language")),
		),
	).
		WithInput(in).
		WithOutput(out)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	cfg.ModelVersion = strings.TrimSpace(cfg.ModelVersion)
	cfg.Language = strings.TrimSpace(cfg.Language)
	return &cfg, nil
}

func runLines(in io.Reader, out io.Writer, cfg config.RunConfig, choices Choices) (*config.RunConfig, error) {
	scanner := bufio.NewScanner(in)
	ask := func(label, current string) (string, error) {
		if current != "" {
			fmt.Fprintf(out, "%s [%s]: ", label, current) //nolint:errcheck
		} else {
			fmt.Fprintf(out, "%s: ", label) //nolint:errcheck
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", errUnexpectedEOF
		}
		if answer := strings.TrimSpace(scanner.Text()); answer != "" {
			return answer, nil
		}
		return current, nil
	}

	var err error
	if cfg.ClientFamily, err = ask("Client family ("+strings.Join(choices.Families, ", ")+")", cfg.ClientFamily); err != nil {
		return nil, err
	}
	if err := oneOf("client family", cfg.ClientFamily, choices.Families); err != nil {
		return nil, err
	}

	if cfg.ModelVersion, err = ask("Model version", cfg.ModelVersion); err != nil {
		return nil, err
	}
	if err := required("model version")(cfg.ModelVersion); err != nil {
		return nil, err
	}

	if cfg.PromptTemplate, err = ask("Prompt template ("+strings.Join(choices.Templates, ", ")+")", cfg.PromptTemplate); err != nil {
		return nil, err
	}
	if err := oneOf("prompt template", cfg.PromptTemplate, choices.Templates); err != nil {
		return nil, err
	}

	if cfg.Language, err = ask("Language", cfg.Language); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func oneOf(field, value string, allowed []string) error {
	if value == "" {
		return fmt.Errorf("%s is required", field)
	}
	if len(allowed) > 0 && !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q (expected one of %s)", field, value, strings.Join(allowed, ", "))
	}
	return nil
}
