package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/prompt"
	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	client    *genai.Client
	templates *prompt.Templates
}

func newGeminiFactory(ctx context.Context, opts Options) (Client, error) {
	apiKey := opts.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = opts.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("gemini: GEMINI_API_KEY or GOOGLE_API_KEY is required")
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &GeminiClient{client: client, templates: opts.Templates}, nil
}

// Migrate sends the conversation as one GenerateContent call.
func (c *GeminiClient) Migrate(ctx context.Context, task *models.MigrationTask, cfg *config.RunConfig) (string, error) {
	messages, err := prompt.Assemble(c.templates, task, cfg)
	if err != nil {
		return "", err
	}

	system, contents := toGeminiContents(messages)
	var gc *genai.GenerateContentConfig
	if system != nil {
		gc = &genai.GenerateContentConfig{SystemInstruction: system}
	}

	resp, err := c.client.Models.GenerateContent(ctx, cfg.ModelVersion, contents, gc)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini: no candidates returned")
	}
	return resp.Text(), nil
}

// toGeminiContents maps chat messages onto Gemini's shape: system turns
// become the system instruction, assistant turns become model turns.
func toGeminiContents(messages []prompt.Message) (*genai.Content, []*genai.Content) {
	var system *genai.Content
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case prompt.RoleSystem:
			system = genai.NewContentFromText(m.Content, genai.RoleUser)
		case prompt.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return system, contents
}
