package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/prompt"
	"github.com/spboyer/migbench/internal/runlog"
)

// CopilotClient generates migrations through a GitHub Copilot session. The
// Copilot runtime takes a single prompt per turn, so the assembled messages
// are flattened into one role-labelled transcript.
type CopilotClient struct {
	client    copilotClient
	templates *prompt.Templates

	startOnce sync.Once
	startErr  error
}

func newCopilotFactory(_ context.Context, opts Options) (Client, error) {
	return &CopilotClient{
		client: newCopilotSDKClient(&copilot.ClientOptions{
			LogLevel:  "error",
			AutoStart: copilot.Bool(false),
		}),
		templates: opts.Templates,
	}, nil
}

// Migrate opens a fresh session and sends the flattened prompt.
func (c *CopilotClient) Migrate(ctx context.Context, task *models.MigrationTask, cfg *config.RunConfig) (string, error) {
	messages, err := prompt.Assemble(c.templates, task, cfg)
	if err != nil {
		return "", err
	}

	c.startOnce.Do(func() {
		c.startErr = c.client.Start(ctx)
	})
	if c.startErr != nil {
		return "", fmt.Errorf("copilot failed to start: %w", c.startErr)
	}

	session, err := c.client.CreateSession(ctx, &copilot.SessionConfig{
		Model:               cfg.ModelVersion,
		OnPermissionRequest: denyAllTools,
	})
	if err != nil {
		return "", fmt.Errorf("copilot: failed to create session: %w", err)
	}

	event, err := session.SendAndWait(ctx, copilot.MessageOptions{
		Prompt: FlattenMessages(messages),
	})
	if err != nil {
		return "", fmt.Errorf("copilot: send: %w", err)
	}
	runlog.SessionEvent(event)
	if event == nil || event.Data.Content == nil {
		return "", errors.New("copilot: session ended without an assistant message")
	}
	return *event.Data.Content, nil
}

// Close stops the Copilot runtime.
func (c *CopilotClient) Close() error {
	return c.client.Stop()
}

// FlattenMessages renders a chat as one prompt, each turn introduced by its
// role in brackets.
func FlattenMessages(messages []prompt.Message) string {
	var sb strings.Builder
	for i, m := range messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%s]\n%s", m.Role, m.Content)
	}
	return sb.String()
}

// Migrations are pure text generation; the model gets no tools.
func denyAllTools(request copilot.PermissionRequest, invocation copilot.PermissionInvocation) (copilot.PermissionRequestResult, error) {
	return copilot.PermissionRequestResult{Kind: "denied-by-rules"}, nil
}
