// Package cache memoizes model responses on disk so that re-running a
// manifest against the same config does not pay for identical generations.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spboyer/migbench/internal/clients"
	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/models"
	"github.com/spboyer/migbench/internal/prompt"
)

// DefaultDir is the cache location used by the CLI when none is given.
const DefaultDir = ".migbench-cache"

// Entry is one cached generation.
type Entry struct {
	Key       string    `json:"key"`
	TaskID    string    `json:"task_id"`
	Family    string    `json:"client_family"`
	Model     string    `json:"model_version"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// Cache stores generations as one JSON file per key.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key derives the cache key for one generation from:
// - the run config (family, model, template name, language)
// - the template text, so edits to a template invalidate old entries
// - the task fields the prompt is rendered from
func Key(cfg *config.RunConfig, task *models.MigrationTask, templateText string) string {
	h := sha256.New()
	for _, s := range []string{
		cfg.ClientFamily,
		cfg.ModelVersion,
		cfg.PromptTemplate,
		cfg.Language,
		templateText,
		task.Language,
		task.SourceLib,
		task.TargetLib,
		task.CodeBefore,
	} {
		writeString(h, s)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached entry if it exists
func (c *Cache) Get(key string) (*Entry, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return &entry, true
}

// Put stores an entry under its key
func (c *Cache) Put(entry *Entry) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	if err := os.WriteFile(c.cachePath(entry.Key), data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached results
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Refuse to delete anything that does not look like a cache directory.
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if filepath.Ext(entry.Name()) != ".json" {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Wrap returns a client that answers from c when it can and otherwise calls
// inner and records the response. templates must be the set inner renders
// from; it is only read to fold the template text into the key.
func Wrap(inner clients.Client, c *Cache, templates *prompt.Templates) clients.Client {
	return &cachingClient{inner: inner, cache: c, templates: templates}
}

type cachingClient struct {
	inner     clients.Client
	cache     *Cache
	templates *prompt.Templates
}

func (cc *cachingClient) Migrate(ctx context.Context, task *models.MigrationTask, cfg *config.RunConfig) (string, error) {
	// A template that fails to load still gets a key; inner reports the error.
	text, _ := cc.templates.Load(cfg.PromptTemplate)
	key := Key(cfg, task, text)

	if entry, ok := cc.cache.Get(key); ok {
		slog.Debug("cache hit", "task_id", task.TaskID, "key", key)
		return entry.Response, nil
	}

	response, err := cc.inner.Migrate(ctx, task, cfg)
	if err != nil {
		return "", err
	}

	if err := cc.cache.Put(&Entry{
		Key:       key,
		TaskID:    task.TaskID,
		Family:    cfg.ClientFamily,
		Model:     cfg.ModelVersion,
		Response:  response,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		slog.Warn("failed to write cache entry", "task_id", task.TaskID, "error", err)
	}
	return response, nil
}

// Close forwards to the wrapped client when it holds resources.
func (cc *cachingClient) Close() error {
	if closer, ok := cc.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func writeString(w io.Writer, s string) {
	// null byte delimiter prevents collisions between adjacent fields
	_, _ = w.Write([]byte(s + "\x00"))
}
