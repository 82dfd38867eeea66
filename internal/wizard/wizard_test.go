package wizard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spboyer/migbench/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testChoices = Choices{
	Families:  []string{"gemini", "gpt", "ollama"},
	Templates: []string{"one_shot", "zero_shot"},
}

func TestRun_ValidInput(t *testing.T) {
	in := strings.NewReader("ollama\ncodeqwen:latest\none_shot\njava\n")
	out := &bytes.Buffer{}

	cfg, err := Run(in, out, config.RunConfig{}, testChoices)
	require.NoError(t, err)

	assert.Equal(t, &config.RunConfig{
		ClientFamily:   "ollama",
		ModelVersion:   "codeqwen:latest",
		PromptTemplate: "one_shot",
		Language:       "java",
	}, cfg)
	assert.Contains(t, out.String(), "Client family (gemini, gpt, ollama)")
}

func TestRun_EmptyLinesKeepDefaults(t *testing.T) {
	defaults := config.RunConfig{ClientFamily: "gpt", ModelVersion: "gpt-4o", PromptTemplate: "zero_shot"}
	out := &bytes.Buffer{}

	cfg, err := Run(strings.NewReader("\n\n\n\n"), out, defaults, testChoices)
	require.NoError(t, err)

	assert.Equal(t, "gpt", cfg.ClientFamily)
	assert.Equal(t, "gpt-4o", cfg.ModelVersion)
	assert.Equal(t, "zero_shot", cfg.PromptTemplate)
	assert.Equal(t, "python", cfg.Language)
	assert.Contains(t, out.String(), "Model version [gpt-4o]")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty family", "\n", "client family is required"},
		{"unknown family", "claude\n", `invalid client family "claude"`},
		{"empty model", "gpt\n\n", "model version is required"},
		{"unknown template", "gpt\ngpt-4o\nfew_shot\n", `invalid prompt template "few_shot"`},
		{"eof", "gpt\n", "unexpected end of input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(strings.NewReader(tt.input), &bytes.Buffer{}, config.RunConfig{}, testChoices)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, isTerminal(strings.NewReader("")))
}
