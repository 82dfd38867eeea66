// Package clients turns a migration task and run config into a single
// generated response from a language model.
//
// Every family shares the prompt assembly in package prompt and differs only
// in how the request is transmitted. Families are looked up by name in a
// registry, so new ones can be added without touching call sites.
package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"

	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/prompt"
)

// ErrUnsupportedFamily is returned by [New] for a family nobody registered.
var ErrUnsupportedFamily = errors.New("unsupported client family")

// Client generates the migrated code for one task. Implementations perform
// exactly one generation call per invocation, without retries or streaming.
// Clients that hold resources also implement io.Closer.
type Client interface {
	Migrate(ctx context.Context, task *models.MigrationTask, cfg *config.RunConfig) (string, error)
}

// Options carries the collaborators a client family may need.
type Options struct {
	// Templates resolves prompt template names. Defaults to the embedded set.
	Templates *prompt.Templates

	// HTTPClient is used by HTTP-based families. Defaults to a client
	// without a timeout; per-call deadlines come from the context.
	HTTPClient *http.Client

	// BaseURL overrides the family's endpoint (useful for proxies and tests).
	BaseURL string

	// Getenv looks up credentials and endpoints. Defaults to os.Getenv.
	Getenv func(string) string
}

func (o Options) withDefaults() Options {
	if o.Templates == nil {
		o.Templates = prompt.DefaultTemplates()
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	return o
}

// Factory builds a client for one family.
type Factory func(ctx context.Context, opts Options) (Client, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		FamilyGPT:     newOpenAIFactory,
		FamilyOllama:  newOllamaFactory,
		FamilyGemini:  newGeminiFactory,
		FamilyCopilot: newCopilotFactory,
		FamilyMock:    newMockFactory,
	}
)

// Built-in family names.
const (
	FamilyGPT     = "gpt"
	FamilyOllama  = "ollama"
	FamilyGemini  = "gemini"
	FamilyCopilot = "copilot"
	FamilyMock    = "mock"
)

// Register adds or replaces the factory for family.
func Register(family string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[family] = factory
}

// Families returns the registered family names, sorted.
func Families() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a client for family.
func New(ctx context.Context, family string, opts Options) (Client, error) {
	registryMu.RLock()
	factory, ok := registry[family]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnsupportedFamily, family, Families())
	}
	return factory(ctx, opts.withDefaults())
}
