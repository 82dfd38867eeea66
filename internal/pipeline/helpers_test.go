package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/rundir"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.RunConfig {
	return &config.RunConfig{ClientFamily: "mock", ModelVersion: "test-model", PromptTemplate: "zero_shot", Language: "python"}
}

func newTask(id string, typ *string, after *string) models.MigrationTask {
	return models.MigrationTask{
		TaskID:        id,
		Language:      "python",
		SourceLib:     "requests",
		TargetLib:     "httpx",
		RepoName:      "example/repo",
		CodeBefore:    "import requests\nrequests.get(url)",
		CodeAfter:     after,
		MigrationType: typ,
	}
}

func ensureRun(t *testing.T) *rundir.Dir {
	t.Helper()
	dir, err := rundir.Ensure(filepath.Join(t.TempDir(), "run"), testConfig())
	require.NoError(t, err)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	require.NoError(t, filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	}))
	return files
}
