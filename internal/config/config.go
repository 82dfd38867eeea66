// Package config provides the RunConfig that governs a single run and its
// loader for JSON and YAML files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spboyer/migbench/schemas"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is used when a config file has no language key.
const DefaultLanguage = "python"

// ErrInvalid is wrapped by errors returned for config documents that fail
// schema validation.
var ErrInvalid = errors.New("invalid run config")

// RunConfig describes which model family, model version, prompt template
// and language a run uses. It is immutable once loaded and is snapshotted
// into the run directory for provenance.
type RunConfig struct {
	ClientFamily   string `json:"client_family" yaml:"client_family" mapstructure:"client_family"`
	ModelVersion   string `json:"model_version" yaml:"model_version" mapstructure:"model_version"`
	PromptTemplate string `json:"prompt_template" yaml:"prompt_template" mapstructure:"prompt_template"`
	Language       string `json:"language" yaml:"language" mapstructure:"language"`
}

var (
	printer     = message.NewPrinter(language.English)
	runSchema   *jsonschema.Schema
	runSchemaID = "runconfig.schema.json"
)

func init() {
	var doc any
	if err := json.Unmarshal([]byte(schemas.RunConfigSchemaJSON), &doc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", runSchemaID, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(runSchemaID, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", runSchemaID, err))
	}

	sch, err := compiler.Compile(runSchemaID)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", runSchemaID, err))
	}
	runSchema = sch
}

// Load reads a run config from path. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON. Only the presence of the
// required keys is checked; rejecting an unknown client family is left to
// the client registry.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}

	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing run config %s: %w", path, err)
	}

	return FromDocument(doc, path)
}

// FromDocument validates and decodes an already parsed config document.
// source is only used in error messages.
func FromDocument(doc any, source string) (*RunConfig, error) {
	if problems := validate(doc); len(problems) > 0 {
		return nil, fmt.Errorf("%w %s: %s", ErrInvalid, source, strings.Join(problems, "; "))
	}

	var cfg RunConfig
	if err := mapstructure.Decode(doc, &cfg); err != nil {
		return nil, fmt.Errorf("decoding run config %s: %w", source, err)
	}

	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	return &cfg, nil
}

// Snapshot returns the indented JSON written to config.json in a run
// directory.
func (c *RunConfig) Snapshot() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling run config: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes the config snapshot to path.
func (c *RunConfig) Save(path string) error {
	data, err := c.Snapshot()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

func validate(doc any) []string {
	err := runSchema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var problems []string
	collect(ve, &problems)
	return problems
}

func collect(ve *jsonschema.ValidationError, problems *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*problems = append(*problems, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(printer)))
		return
	}
	for _, c := range ve.Causes {
		collect(c, problems)
	}
}
