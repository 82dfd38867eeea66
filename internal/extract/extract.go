// Package extract pulls code blocks out of free-form model responses.
//
// Every extractor returns at least one block for a non-empty document: when no
// code block is found, the whole trimmed document is the single block.
package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Extractor finds the code blocks in a document.
type Extractor interface {
	Extract(doc string) []string
}

// ExtractorFunc adapts a plain function to Extractor.
type ExtractorFunc func(doc string) []string

func (f ExtractorFunc) Extract(doc string) []string { return f(doc) }

const (
	NameFence    = "fence"
	NameMarkdown = "markdown"
)

var extractors = map[string]Extractor{
	NameFence:    ExtractorFunc(Fences),
	NameMarkdown: ExtractorFunc(Markdown),
}

// ByName returns the extractor registered under name. An empty name selects
// the fence extractor.
func ByName(name string) (Extractor, error) {
	if name == "" {
		name = NameFence
	}
	e, ok := extractors[name]
	if !ok {
		return nil, fmt.Errorf("unknown extractor %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return e, nil
}

// Names lists the registered extractor names, sorted.
func Names() []string {
	names := make([]string, 0, len(extractors))
	for name := range extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// An optional language tag may follow the opening fence directly.
var fencePattern = regexp.MustCompile("(?s)```(?:\\w+)?\\s*(.*?)```")

// Fences matches triple-backtick regions with a regular expression. It is
// lenient about what a fence is (inline fences and unterminated languages
// still match), which suits chatty model output.
func Fences(doc string) []string {
	matches := fencePattern.FindAllStringSubmatch(doc, -1)
	if len(matches) == 0 {
		return fallback(doc)
	}
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, strings.TrimSpace(m[1]))
	}
	return blocks
}

// Markdown parses the document as CommonMark and returns its fenced and
// indented code blocks.
func Markdown(doc string) []string {
	source := []byte(doc)
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	var blocks []string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			blocks = append(blocks, strings.TrimSpace(blockText(n, source)))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if len(blocks) == 0 {
		return fallback(doc)
	}
	return blocks
}

func blockText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

func fallback(doc string) []string {
	return []string{strings.TrimSpace(doc)}
}
