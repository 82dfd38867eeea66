package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spboyer/migbench/internal/extract"
	"github.com/spboyer/migbench/internal/rundir"
)

// Policy decides how the code blocks of one document map to output files.
type Policy string

const (
	// PolicyFirst keeps only the first block, in <task_id>.txt.
	PolicyFirst Policy = "first"
	// PolicyAllConcat joins all blocks with a blank line, in <task_id>.txt.
	PolicyAllConcat Policy = "all_concat"
	// PolicyAllSeparate writes block N to <task_id>__block<N>.txt.
	PolicyAllSeparate Policy = "all_separate"
)

// ErrUnknownPolicy is returned for a policy outside Policies.
var ErrUnknownPolicy = errors.New("unknown parse policy")

// Policies lists the accepted policy names.
func Policies() []string {
	return []string{string(PolicyFirst), string(PolicyAllConcat), string(PolicyAllSeparate)}
}

// ParsePolicy validates s. The empty string selects PolicyFirst.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case "":
		return PolicyFirst, nil
	case PolicyFirst, PolicyAllConcat, PolicyAllSeparate:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownPolicy, s, strings.Join(Policies(), ", "))
	}
}

// RunParse extracts code from every .txt file under inputDir and writes the
// result below outDir, keeping the relative directory of each file. The file
// stem is taken as the task_id. A nil extractor selects extract.Fences. It
// returns the number of documents parsed.
func RunParse(inputDir, outDir string, policy Policy, extractor extract.Extractor) (int, error) {
	if _, err := ParsePolicy(string(policy)); err != nil {
		return 0, err
	}
	if policy == "" {
		policy = PolicyFirst
	}
	if extractor == nil {
		extractor = extract.ExtractorFunc(extract.Fences)
	}

	absIn, err := filepath.Abs(inputDir)
	if err != nil {
		return 0, err
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return 0, err
	}
	if absIn == absOut {
		return 0, fmt.Errorf("parse output directory %s is the input directory", outDir)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, fmt.Errorf("creating parse output directory: %w", err)
	}

	parsed := 0
	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// outDir may be nested in inputDir; its files are our own output.
			if abs, err := filepath.Abs(path); err == nil && abs == absOut {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Ext(d.Name()) != rundir.ArtifactExt {
			return nil
		}

		rel, err := filepath.Rel(inputDir, filepath.Dir(path))
		if err != nil {
			return err
		}
		targetDir := filepath.Join(outDir, rel)
		if err := os.MkdirAll(targetDir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", targetDir, err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		stem := strings.TrimSuffix(d.Name(), rundir.ArtifactExt)
		blocks := extractor.Extract(string(content))
		if err := writeBlocks(targetDir, stem, blocks, policy); err != nil {
			return err
		}

		slog.Debug("parsed document", "path", path, "blocks", len(blocks))
		parsed++
		return nil
	})
	if err != nil {
		return parsed, fmt.Errorf("parsing %s: %w", inputDir, err)
	}
	return parsed, nil
}

func writeBlocks(dir, stem string, blocks []string, policy Policy) error {
	write := func(name, content string) error {
		return os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
	}

	switch policy {
	case PolicyFirst:
		return write(stem+rundir.ArtifactExt, first(blocks))
	case PolicyAllConcat:
		return write(stem+rundir.ArtifactExt, strings.Join(blocks, "\n\n"))
	case PolicyAllSeparate:
		for i, b := range blocks {
			if err := write(fmt.Sprintf("%s__block%d%s", stem, i+1, rundir.ArtifactExt), b); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
}

func first(blocks []string) string {
	if len(blocks) == 0 {
		return ""
	}
	return blocks[0]
}
