package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/prompt"
)

// DefaultOpenAIBaseURL is used when neither Options.BaseURL nor
// OPENAI_BASE_URL is set.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	templates  *prompt.Templates
}

type openAIRequest struct {
	Model    string           `json:"model"`
	Messages []prompt.Message `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message prompt.Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newOpenAIFactory(_ context.Context, opts Options) (Client, error) {
	apiKey := opts.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("gpt: OPENAI_API_KEY is not set")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = opts.Getenv("OPENAI_BASE_URL")
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: opts.HTTPClient,
		templates:  opts.Templates,
	}, nil
}

// Migrate sends the assembled prompt as one chat completion request.
func (c *OpenAIClient) Migrate(ctx context.Context, task *models.MigrationTask, cfg *config.RunConfig) (string, error) {
	messages, err := prompt.Assemble(c.templates, task, cfg)
	if err != nil {
		return "", err
	}

	start := time.Now()
	slog.Debug("gpt: chat completion", "model", cfg.ModelVersion, "task_id", task.TaskID, "turns", len(messages))

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	var resp openAIResponse
	err = postJSON(ctx, c.httpClient, c.baseURL+"/chat/completions", header, openAIRequest{
		Model:    cfg.ModelVersion,
		Messages: messages,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("gpt: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("gpt: API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("gpt: no completion returned")
	}

	slog.Debug("gpt: completed", "task_id", task.TaskID, "duration", time.Since(start))
	return resp.Choices[0].Message.Content, nil
}
