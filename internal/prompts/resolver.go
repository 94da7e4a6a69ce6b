package prompts

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Resolver resolves prompts with file overrides.
// Resolution order: override file > Embedded default
type Resolver struct {
	store    *Store
	embedded map[string]EmbeddedPrompt
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewResolver creates a new prompt resolver. A nil store disables overrides.
func NewResolver(store *Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:    store,
		embedded: make(map[string]EmbeddedPrompt),
		logger:   logger,
	}
}

// Register registers an embedded prompt.
func (r *Resolver) Register(prompt EmbeddedPrompt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Compute hash if not provided
	if prompt.Hash == "" {
		prompt.Hash = HashText(prompt.Text)
	}

	// Extract variables if not provided
	if prompt.Variables == nil {
		prompt.Variables = ExtractVariables(prompt.Text)
	}

	r.embedded[prompt.Key] = prompt
	r.logger.Debug("registered embedded prompt", "key", prompt.Key, "vars", prompt.Variables)
}

// Resolve returns the override if it exists, otherwise the embedded default.
func (r *Resolver) Resolve(key string) (*ResolvedPrompt, error) {
	r.mu.RLock()
	embedded, ok := r.embedded[key]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", key)
	}

	// Check for override first
	if r.store != nil {
		text, path, found, err := r.store.Get(key)
		if err != nil {
			r.logger.Warn("failed to check prompt override", "key", key, "error", err)
			// Fall through to embedded default
		} else if found {
			hash := HashText(text)
			return &ResolvedPrompt{
				Key:        key,
				Text:       text,
				Variables:  ExtractVariables(text),
				IsOverride: true,
				Source:     path,
				Hash:       hash,
				Modified:   hash != embedded.Hash,
			}, nil
		}
	}

	return &ResolvedPrompt{
		Key:       key,
		Text:      embedded.Text,
		Variables: embedded.Variables,
		Hash:      embedded.Hash,
	}, nil
}

// Render resolves key and executes it with data.
func (r *Resolver) Render(key string, data any) (string, error) {
	p, err := r.Resolve(key)
	if err != nil {
		return "", err
	}
	return Render(key, p.Text, data)
}

// GetEmbedded returns the embedded default for a key (no override resolution).
func (r *Resolver) GetEmbedded(key string) (*EmbeddedPrompt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.embedded[key]
	return &p, ok
}

// AllEmbedded returns all registered embedded prompts, sorted by key.
func (r *Resolver) AllEmbedded() []EmbeddedPrompt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]EmbeddedPrompt, 0, len(r.embedded))
	for _, p := range r.embedded {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// ExportAll writes every embedded prompt without an override to the store,
// so it can be edited in place. Returns the keys written.
func (r *Resolver) ExportAll() ([]string, error) {
	if r.store == nil {
		return nil, fmt.Errorf("store not configured")
	}

	existing, err := r.store.List()
	if err != nil {
		return nil, err
	}
	overridden := make(map[string]bool, len(existing))
	for _, key := range existing {
		overridden[key] = true
	}

	var written []string
	for _, p := range r.AllEmbedded() {
		if overridden[p.Key] {
			continue
		}
		if err := r.store.Put(p.Key, p.Text); err != nil {
			return written, fmt.Errorf("failed to export prompt %s: %w", p.Key, err)
		}
		written = append(written, p.Key)
	}

	r.logger.Info("exported prompts", "count", len(written), "dir", r.store.Dir())
	return written, nil
}

// Reset removes the override for key so the embedded default applies again.
func (r *Resolver) Reset(key string) error {
	if _, ok := r.GetEmbedded(key); !ok {
		return fmt.Errorf("prompt not found: %s", key)
	}
	if r.store == nil {
		return fmt.Errorf("store not configured")
	}
	if err := r.store.Delete(key); err != nil {
		return err
	}
	r.logger.Info("reset prompt to default", "key", key)
	return nil
}
