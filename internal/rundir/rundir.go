// Package rundir owns the on-disk layout of a run. Every artifact for a task
// is addressed by its task_id; the layout itself never changes between runs.
package rundir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spboyer/migbench/internal/config"
)

const (
	rawDir       = "migrations/raw"
	cleanDir     = "migrations/clean"
	parsedDir    = "parsed"
	metricsDir   = "metrics"
	reportsDir   = "reports"
	configFile   = "config.json"
	manifestFile = "tasks.jsonl"

	// ArtifactExt is the extension of every per-task text artifact.
	ArtifactExt = ".txt"
)

// Layout lists the subtrees Ensure creates, relative to the run root.
var Layout = []string{rawDir, cleanDir, parsedDir, metricsDir, reportsDir}

// Dir is a handle on an initialized run directory.
type Dir struct {
	root string
}

// Open returns a handle for root without touching the filesystem.
func Open(root string) *Dir {
	return &Dir{root: root}
}

// Ensure creates the run layout under outDir and (over)writes the config
// snapshot. Calling it again on an existing run is safe; artifacts already
// present are left for the next stage to overwrite.
func Ensure(outDir string, cfg *config.RunConfig) (*Dir, error) {
	d := Open(outDir)
	for _, sub := range Layout {
		if err := os.MkdirAll(filepath.Join(d.root, filepath.FromSlash(sub)), 0755); err != nil {
			return nil, fmt.Errorf("creating run directory %s: %w", sub, err)
		}
	}
	if err := cfg.Save(d.ConfigPath()); err != nil {
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}
	return d, nil
}

// Root returns the run directory itself.
func (d *Dir) Root() string { return d.root }

func (d *Dir) RawDir() string     { return d.join(rawDir) }
func (d *Dir) CleanDir() string   { return d.join(cleanDir) }
func (d *Dir) ParsedDir() string  { return d.join(parsedDir) }
func (d *Dir) MetricsDir() string { return d.join(metricsDir) }
func (d *Dir) ReportsDir() string { return d.join(reportsDir) }

// ConfigPath is where the RunConfig snapshot lives.
func (d *Dir) ConfigPath() string { return d.join(configFile) }

// ManifestPath is where Batch persists the normalized manifest.
func (d *Dir) ManifestPath() string { return d.join(manifestFile) }

// RawPath is the verbatim model output for taskID.
func (d *Dir) RawPath(taskID string) string {
	return filepath.Join(d.RawDir(), taskID+ArtifactExt)
}

// CleanPath is the post-processed model output for taskID.
func (d *Dir) CleanPath(taskID string) string {
	return filepath.Join(d.CleanDir(), taskID+ArtifactExt)
}

// ParsedPath is the extracted code for taskID under the first and
// all_concat policies.
func (d *Dir) ParsedPath(taskID string) string {
	return filepath.Join(d.ParsedDir(), taskID+ArtifactExt)
}

func (d *Dir) join(rel string) string {
	return filepath.Join(d.root, filepath.FromSlash(rel))
}
