package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spboyer/migbench/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func sampleTasks() []models.MigrationTask {
	return []models.MigrationTask{
		{
			TaskID:        "t1",
			Language:      "python",
			SourceLib:     "requests",
			TargetLib:     "httpx",
			RepoName:      "acme/api",
			CodeBefore:    "import requests\nrequests.get(url)\n",
			CodeAfter:     models.StringPtr("import httpx\nhttpx.get(url)\n"),
			MigrationType: models.StringPtr("function_call"),
		},
		{
			TaskID:     "t2",
			Language:   "python",
			SourceLib:  "boto",
			TargetLib:  "boto3",
			RepoName:   "acme/storage",
			CodeBefore: "conn = boto.connect_s3()",
		},
		{
			TaskID:        "t3",
			Language:      "java",
			SourceLib:     "junit4",
			TargetLib:     "junit5",
			CodeBefore:    "@Test(expected = Foo.class)\npublic void x() {}",
			CodeAfter:     models.StringPtr("assertThrows(Foo.class, () -> {});"),
			MigrationType: nil,
		},
	}
}

func TestWriteThenLoad_RoundTrip(t *testing.T) {
	for _, name := range []string{"tasks.csv", "tasks.jsonl", "tasks.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			want := sampleTasks()

			require.NoError(t, Write(path, want))

			got, err := Load(path)
			require.NoError(t, err)
			require.Equal(t, want, got)
			assert.Nil(t, got[1].CodeAfter, "absent ground truth must stay absent")
			assert.Nil(t, got[1].MigrationType)
		})
	}
}

func TestLoadJSONL_PreservesEmptyGroundTruth(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tasks.jsonl",
		`{"task_id":"a","source_lib":"x","target_lib":"y","code_before":"c","code_after":""}`+"\n"+
			"\n"+
			`{"task_id":"b","source_lib":"x","target_lib":"y","code_before":"c","code_after":null}`+"\n")

	tasks, err := Load(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	require.NotNil(t, tasks[0].CodeAfter)
	assert.Equal(t, "", *tasks[0].CodeAfter)
	assert.False(t, tasks[0].HasGroundTruth())
	assert.Nil(t, tasks[1].CodeAfter)
}

func TestLoadCSV_LegacyAliases(t *testing.T) {
	path := writeFile(t, t.TempDir(), "legacy.csv",
		"id,rmv_lib,add_lib,repo,before,after,type\n"+
			"7,boto,boto3,acme,old(),new(),attribute\n")

	tasks, err := Load(path)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	task := tasks[0]
	assert.Equal(t, "7", task.TaskID)
	assert.Equal(t, "boto", task.SourceLib)
	assert.Equal(t, "boto3", task.TargetLib)
	assert.Equal(t, "acme", task.RepoName)
	assert.Equal(t, "old()", task.CodeBefore)
	require.NotNil(t, task.CodeAfter)
	assert.Equal(t, "new()", *task.CodeAfter)
	assert.Equal(t, "attribute", task.TypeLabel())
	assert.Equal(t, DefaultLanguage, task.Language)
}

func TestLoad_AliasPriority(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tasks.csv",
		"task_id,legacy_lib,rmv_lib,target_lib,code_before\n"+
			"a,first,second,y,code\n")

	tasks, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "first", tasks[0].SourceLib)
}

func TestLoadJSONL_NumericTaskID(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tasks.jsonl",
		`{"id":12,"legacy_lib":"x","target_lib":"y","code_before":"c"}`+"\n")

	tasks, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "12", tasks[0].TaskID)
	assert.Equal(t, "x", tasks[0].SourceLib)
}

func TestLoad_SchemaErrors(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		wantField string
		wantRow   int
	}{
		{
			name:      "missing task_id column",
			file:      "a.csv",
			content:   "source_lib,target_lib,code_before\nx,y,z\n",
			wantField: "task_id",
			wantRow:   1,
		},
		{
			name:      "empty code_before",
			file:      "b.csv",
			content:   "task_id,source_lib,target_lib,code_before\nok,x,y,z\nbad,x,y,\n",
			wantField: "code_before",
			wantRow:   2,
		},
		{
			name:      "missing target_lib in jsonl",
			file:      "c.jsonl",
			content:   `{"task_id":"a","source_lib":"x","code_before":"c"}` + "\n",
			wantField: "target_lib",
			wantRow:   1,
		},
		{
			name:      "duplicate task_id",
			file:      "d.csv",
			content:   "task_id,source_lib,target_lib,code_before\nsame,x,y,z\nsame,x,y,z\n",
			wantField: "task_id",
			wantRow:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchema))

			var se *SchemaError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.wantField, se.Field)
			assert.Equal(t, tt.wantRow, se.Row)
			assert.Equal(t, path, se.Path)
		})
	}
}

func TestLoadCSV_MismatchedColumns(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.csv", "task_id,source_lib\nok,fine\nbad\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong number of fields")
	assert.False(t, errors.Is(err, ErrSchema))
}

func TestLoadCSV_EmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.csv", "")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestLoadTask(t *testing.T) {
	dir := t.TempDir()
	single := writeFile(t, dir, "task.json",
		`{"task_id":"one","legacy_lib":"x","target_lib":"y","code_before":"c","language":"go"}`)

	task, err := LoadTask(single)
	require.NoError(t, err)
	assert.Equal(t, "one", task.TaskID)
	assert.Equal(t, "go", task.Language)

	multi := writeFile(t, dir, "many.json",
		`[{"task_id":"a","source_lib":"x","target_lib":"y","code_before":"c"},`+
			`{"task_id":"b","source_lib":"x","target_lib":"y","code_before":"c"}]`)
	_, err = LoadTask(multi)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected exactly one task")
}

func TestWriteThenLoad_EmptyOptionalFields(t *testing.T) {
	for _, name := range []string{"tasks.jsonl", "tasks.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := []models.MigrationTask{{
				TaskID:        "t1",
				Language:      "python",
				SourceLib:     "requests",
				TargetLib:     "httpx",
				CodeBefore:    "import requests",
				CodeAfter:     models.StringPtr(""),
				MigrationType: models.StringPtr(""),
			}}

			require.NoError(t, Write(path, want))

			got, err := Load(path)
			require.NoError(t, err)
			require.Equal(t, want, got)
			require.NotNil(t, got[0].MigrationType, "empty type must stay present")
		})
	}
}

func TestLoad_RejectsPathLikeTaskIDs(t *testing.T) {
	for _, id := range []string{"../escape", "a/b", `a\b`, "..", "."} {
		t.Run(id, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.jsonl")
			line := `{"task_id":` + strconv.Quote(id) + `,"source_lib":"x","target_lib":"y","code_before":"c"}`
			require.NoError(t, os.WriteFile(path, []byte(line+"\n"), 0o644))

			_, err := Load(path)
			require.ErrorIs(t, err, ErrSchema)

			var se *SchemaError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "task_id", se.Field)
			assert.Equal(t, 1, se.Row)
		})
	}
}
