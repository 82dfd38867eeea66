package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFences(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "two blocks with language tags",
			doc:  "Here you go:\n```python\nA\n```\nand\n```python\nB\n```\n",
			want: []string{"A", "B"},
		},
		{
			name: "no language tag",
			doc:  "```\nimport httpx\n```",
			want: []string{"import httpx"},
		},
		{
			name: "multi-line block is trimmed",
			doc:  "```go\n\n  x := 1\n  y := 2\n\n```",
			want: []string{"x := 1\n  y := 2"},
		},
		{
			name: "no fences falls back to whole trimmed document",
			doc:  "\n  import httpx\nhttpx.get(url)  \n",
			want: []string{"import httpx\nhttpx.get(url)"},
		},
		{
			name: "empty document",
			doc:  "",
			want: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fences(tt.doc))
		})
	}
}

func TestMarkdown(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "fenced blocks",
			doc:  "# Answer\n\n```python\nA\n```\n\nText.\n\n~~~\nB\n~~~\n",
			want: []string{"A", "B"},
		},
		{
			name: "indented block",
			doc:  "Paragraph.\n\n    indented = True\n",
			want: []string{"indented = True"},
		},
		{
			name: "inline code is not a block",
			doc:  "Use `httpx.get` instead.",
			want: []string{"Use `httpx.get` instead."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Markdown(tt.doc))
		})
	}
}

func TestByName(t *testing.T) {
	e, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, e.Extract("```\nA\n```"))

	_, err = ByName(NameMarkdown)
	require.NoError(t, err)

	_, err = ByName("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fence, markdown")
}
