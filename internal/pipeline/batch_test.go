package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/manifest"
	"github.com/spboyer/migbench/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRunBatch_InOrderAndPersistsManifest(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	dir := ensureRun(t)
	tasks := []models.MigrationTask{
		newTask("a", models.StringPtr("X"), models.StringPtr("after a")),
		newTask("b", nil, nil),
	}

	gomock.InOrder(
		client.EXPECT().Migrate(gomock.Any(), &tasks[0], gomock.Any()).Return("out a", nil),
		client.EXPECT().Migrate(gomock.Any(), &tasks[1], gomock.Any()).Return("out b", nil),
	)

	var seen []string
	err := RunBatch(context.Background(), client, tasks, testConfig(), dir, BatchOptions{
		OnTask: func(i, n int, task *models.MigrationTask) {
			assert.Equal(t, 2, n)
			seen = append(seen, task.TaskID)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, "out a", readFile(t, dir.CleanPath("a")))
	assert.Equal(t, "out b", readFile(t, dir.RawPath("b")))

	persisted, err := manifest.Load(dir.ManifestPath())
	require.NoError(t, err)
	assert.Equal(t, tasks, persisted)
}

func TestRunBatch_FirstFailureAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	dir := ensureRun(t)
	tasks := []models.MigrationTask{newTask("a", nil, nil), newTask("b", nil, nil), newTask("c", nil, nil)}

	unreachable := errors.New("endpoint unreachable")
	gomock.InOrder(
		client.EXPECT().Migrate(gomock.Any(), &tasks[0], gomock.Any()).Return("ok", nil),
		client.EXPECT().Migrate(gomock.Any(), &tasks[1], gomock.Any()).Return("", unreachable),
	)

	err := RunBatch(context.Background(), client, tasks, testConfig(), dir, BatchOptions{})
	require.ErrorIs(t, err, unreachable)
	assert.Contains(t, err.Error(), "task b")

	assert.FileExists(t, dir.CleanPath("a"))
	_, statErr := os.Stat(dir.CleanPath("c"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunBatch_TimeoutBoundsEachCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	dir := ensureRun(t)
	tasks := []models.MigrationTask{newTask("a", nil, nil)}

	client.EXPECT().Migrate(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ *models.MigrationTask, _ *config.RunConfig) (string, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
			return "ok", nil
		})

	require.NoError(t, RunBatch(context.Background(), client, tasks, testConfig(), dir, BatchOptions{Timeout: time.Minute}))
}
