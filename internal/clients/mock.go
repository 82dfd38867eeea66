package clients

import (
	"context"
	"fmt"

	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/prompt"
)

// MockClient echoes the pre-migration code back inside a fenced block. It
// still assembles the prompt, so a dry run catches malformed templates.
type MockClient struct {
	templates *prompt.Templates
}

func newMockFactory(_ context.Context, opts Options) (Client, error) {
	return &MockClient{templates: opts.Templates}, nil
}

func (m *MockClient) Migrate(ctx context.Context, task *models.MigrationTask, cfg *config.RunConfig) (string, error) {
	if _, err := prompt.Assemble(m.templates, task, cfg); err != nil {
		return "", err
	}
	return fmt.Sprintf("```%s\n%s\n```\n", task.Language, task.CodeBefore), nil
}
