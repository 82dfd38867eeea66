package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/prompt"
)

// DefaultOllamaHost is used when neither Options.BaseURL nor OLLAMA_HOST is set.
const DefaultOllamaHost = "http://localhost:11434"

// OllamaClient talks to a locally served Ollama instance. Before each
// generation it makes sure the requested model is present, pulling it once
// if the server does not have it.
type OllamaClient struct {
	host       string
	httpClient *http.Client
	templates  *prompt.Templates
}

type ollamaModelRequest struct {
	Model  string `json:"model"`
	Stream *bool  `json:"stream,omitempty"`
}

type ollamaPullResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ollamaChatRequest struct {
	Model    string           `json:"model"`
	Messages []prompt.Message `json:"messages"`
	Stream   bool             `json:"stream"`
}

type ollamaChatResponse struct {
	Message prompt.Message `json:"message"`
	Error   string         `json:"error,omitempty"`
}

func newOllamaFactory(_ context.Context, opts Options) (Client, error) {
	host := opts.BaseURL
	if host == "" {
		host = opts.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = DefaultOllamaHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	return &OllamaClient{
		host:       strings.TrimRight(host, "/"),
		httpClient: opts.HTTPClient,
		templates:  opts.Templates,
	}, nil
}

// Migrate ensures the model is available and then runs one chat request.
func (c *OllamaClient) Migrate(ctx context.Context, task *models.MigrationTask, cfg *config.RunConfig) (string, error) {
	messages, err := prompt.Assemble(c.templates, task, cfg)
	if err != nil {
		return "", err
	}

	if err := c.ensureModel(ctx, cfg.ModelVersion); err != nil {
		return "", err
	}

	var resp ollamaChatResponse
	err = postJSON(ctx, c.httpClient, c.host+"/api/chat", nil, ollamaChatRequest{
		Model:    cfg.ModelVersion,
		Messages: messages,
		Stream:   false,
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("ollama: chat: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama: chat: %s", resp.Error)
	}
	return resp.Message.Content, nil
}

// ensureModel is a precondition check: one lookup, and one pull when the
// lookup says the model is missing.
func (c *OllamaClient) ensureModel(ctx context.Context, model string) error {
	err := postJSON(ctx, c.httpClient, c.host+"/api/show", nil, ollamaModelRequest{Model: model}, nil)
	if err == nil {
		return nil
	}

	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		return fmt.Errorf("ollama: checking model %q: %w", model, err)
	}

	slog.Info("ollama: pulling model", "model", model)

	stream := false
	var pull ollamaPullResponse
	if err := postJSON(ctx, c.httpClient, c.host+"/api/pull", nil, ollamaModelRequest{Model: model, Stream: &stream}, &pull); err != nil {
		return fmt.Errorf("ollama: pulling model %q: %w", model, err)
	}
	if pull.Error != "" {
		return fmt.Errorf("ollama: pulling model %q: %s", model, pull.Error)
	}
	if pull.Status != "success" {
		return fmt.Errorf("ollama: pulling model %q: unexpected status %q", model, pull.Status)
	}
	return nil
}
