package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/reporting"
	"github.com/spboyer/migbench/internal/runlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRunScore_Aggregation(t *testing.T) {
	ctrl := gomock.NewController(t)
	scorer := NewMockScorer(ctrl)
	predDir, outDir := t.TempDir(), filepath.Join(t.TempDir(), "metrics")

	x, y := models.StringPtr("X"), models.StringPtr("Y")
	tasks := []models.MigrationTask{
		newTask("x1", x, models.StringPtr("ref x1")),
		newTask("x2", x, models.StringPtr("ref x2")),
		newTask("x3", x, models.StringPtr("ref x3")),
		newTask("x4", x, models.StringPtr("ref x4")),
		newTask("y1", y, models.StringPtr("ref y1")),
		newTask("y2", y, models.StringPtr("ref y2")),
	}
	scores := map[string]float64{"x1": 0.8, "x2": 0.6, "y1": 1.0, "y2": 0.0}
	for id, s := range scores {
		writeFile(t, filepath.Join(predDir, id+".txt"), "pred "+id)
		scorer.EXPECT().Similarity("pred "+id, "ref "+id, "python").Return(s, nil)
	}

	var console bytes.Buffer
	report, err := RunScore(context.Background(), tasks, predDir, outDir, ScoreOptions{Scorer: scorer, Console: &console})
	require.NoError(t, err)

	require.Len(t, report.Tasks, 6)
	assert.True(t, report.Tasks[2].Missing())
	assert.True(t, report.Tasks[3].Missing())

	require.Len(t, report.Groups, 2)
	gx, gy := report.Groups[0], report.Groups[1]
	assert.Equal(t, "X", gx.Label())
	assert.Equal(t, 2, gx.SamplesFound)
	assert.Equal(t, 4, gx.TotalSamples)
	require.NotNil(t, gx.AvgScore)
	assert.InDelta(t, 0.7, *gx.AvgScore, 1e-9)

	assert.Equal(t, "Y", gy.Label())
	assert.Equal(t, 2, gy.SamplesFound)
	assert.Equal(t, 2, gy.TotalSamples)
	require.NotNil(t, gy.AvgScore)
	assert.InDelta(t, 0.5, *gy.AvgScore, 1e-9)

	for _, name := range []string{reporting.ScoresFile, reporting.SummaryJSONFile, reporting.SummaryTextFile, runlog.FileName} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}

	var summary []models.GroupSummary
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(outDir, reporting.SummaryJSONFile))), &summary))
	assert.Len(t, summary, 2)

	log := readFile(t, filepath.Join(outDir, runlog.FileName))
	assert.Contains(t, log, "prediction not found")
	assert.Contains(t, log, "task_id=x3")
	assert.Contains(t, console.String(), "prediction not found")
}

func TestRunScore_MissingGroundTruthIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	scorer := NewMockScorer(ctrl) // no calls expected
	predDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "metrics")

	tasks := []models.MigrationTask{
		newTask("ok", nil, models.StringPtr("ref")),
		newTask("bad", nil, nil),
	}
	writeFile(t, filepath.Join(predDir, "ok.txt"), "pred")

	_, err := RunScore(context.Background(), tasks, predDir, outDir, ScoreOptions{Scorer: scorer, Logger: runlog.Discard()})
	require.ErrorIs(t, err, ErrMissingGroundTruth)

	var mgt *MissingGroundTruthError
	require.True(t, errors.As(err, &mgt))
	assert.Equal(t, "bad", mgt.TaskID)

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "no output may be written")
}

func TestRunScore_EmptyGroundTruthIsFatal(t *testing.T) {
	tests := []struct {
		name  string
		after string
	}{
		{"empty", ""},
		{"whitespace only", "  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predDir := t.TempDir()
			outDir := filepath.Join(t.TempDir(), "metrics")
			writeFile(t, filepath.Join(predDir, "a.txt"), "x = 1")
			tasks := []models.MigrationTask{
				newTask("a", nil, models.StringPtr("x = 1")),
				newTask("b", nil, models.StringPtr(tt.after)),
			}

			_, err := RunScore(context.Background(), tasks, predDir, outDir, ScoreOptions{})
			require.ErrorIs(t, err, ErrMissingGroundTruth)

			var mgt *MissingGroundTruthError
			require.ErrorAs(t, err, &mgt)
			assert.Equal(t, "b", mgt.TaskID)
			assert.NoDirExists(t, outDir)
		})
	}
}

func TestRunScore_ScorerErrorAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	scorer := NewMockScorer(ctrl)
	predDir := t.TempDir()
	writeFile(t, filepath.Join(predDir, "t1.txt"), "pred")

	boom := errors.New("tokenizer exploded")
	scorer.EXPECT().Similarity(gomock.Any(), gomock.Any(), gomock.Any()).Return(0.0, boom)

	tasks := []models.MigrationTask{newTask("t1", nil, models.StringPtr("ref"))}
	_, err := RunScore(context.Background(), tasks, predDir, t.TempDir(), ScoreOptions{Scorer: scorer, Logger: runlog.Discard()})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "t1")
}

func TestRunScore_DefaultScorer(t *testing.T) {
	predDir, outDir := t.TempDir(), t.TempDir()
	code := "import httpx\nhttpx.get(url)"
	writeFile(t, filepath.Join(predDir, "t1.txt"), code)

	tasks := []models.MigrationTask{newTask("t1", nil, models.StringPtr(code))}
	report, err := RunScore(context.Background(), tasks, predDir, outDir, ScoreOptions{Logger: runlog.Discard()})
	require.NoError(t, err)

	require.NotNil(t, report.Tasks[0].Score)
	assert.InDelta(t, 1.0, *report.Tasks[0].Score, 1e-9)
	assert.NoFileExists(t, filepath.Join(outDir, runlog.FileName))
}

func TestRunScore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := []models.MigrationTask{newTask("t1", nil, models.StringPtr("ref"))}
	_, err := RunScore(ctx, tasks, t.TempDir(), t.TempDir(), ScoreOptions{Logger: runlog.Discard()})
	require.ErrorIs(t, err, context.Canceled)
}
