package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

//go:embed templates/*.txt
var embedded embed.FS

// Templates resolves prompt template names to their text.
type Templates struct {
	fsys fs.FS
}

// DefaultTemplates returns the templates bundled with the binary:
// zero_shot, one_shot and chain_of_thoughts.
func DefaultTemplates() *Templates {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(fmt.Sprintf("embedded templates: %v", err))
	}
	return &Templates{fsys: sub}
}

// NewTemplates reads templates from fsys, one <name>.txt file per template.
func NewTemplates(fsys fs.FS) *Templates {
	return &Templates{fsys: fsys}
}

// DirTemplates reads templates from a directory on disk.
func DirTemplates(dir string) *Templates {
	return NewTemplates(os.DirFS(dir))
}

// Load returns the raw text of the named template.
func (t *Templates) Load(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid prompt template name %q", name)
	}
	data, err := fs.ReadFile(t.fsys, name+".txt")
	if err != nil {
		return "", fmt.Errorf("loading prompt template %q: %w", name, err)
	}
	return string(data), nil
}

// Names lists the available template names, sorted.
func (t *Templates) Names() ([]string, error) {
	matches, err := fs.Glob(t.fsys, "*.txt")
	if err != nil {
		return nil, fmt.Errorf("listing prompt templates: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, ".txt"))
	}
	return names, nil
}
