package prompts

import (
	"embed"
	"log/slog"
	"strings"
	"sync"
)

// Prompt keys used by the LLM-backed capabilities.
const (
	SummarizeSystem  = "summarize.system"
	SummarizeUser    = "summarize.user"
	ClassifySystem   = "classify.system"
	SpellcheckSystem = "spellcheck.system"
)

//go:embed templates/*.tmpl
var templates embed.FS

var descriptions = map[string]string{
	SummarizeSystem:  "Summarizer system prompt",
	SummarizeUser:    "Summarizer request with word bounds (Min, Max, Text)",
	ClassifySystem:   "Sentiment and topic classifier system prompt (Task, Labels)",
	SpellcheckSystem: "Spell checker system prompt; tokens are sent as a JSON array",
}

// RegisterDefaults registers every embedded template with r.
func RegisterDefaults(r *Resolver) {
	entries, err := templates.ReadDir("templates")
	if err != nil {
		panic(err)
	}
	for _, e := range entries {
		data, err := templates.ReadFile("templates/" + e.Name())
		if err != nil {
			panic(err)
		}
		key := strings.TrimSuffix(e.Name(), fileExt)
		r.Register(EmbeddedPrompt{
			Key:         key,
			Text:        string(data),
			Description: descriptions[key],
		})
	}
}

// NewDefaultResolver creates a resolver with the embedded defaults
// registered. A nil store disables overrides.
func NewDefaultResolver(store *Store, logger *slog.Logger) *Resolver {
	r := NewResolver(store, logger)
	RegisterDefaults(r)
	return r
}

var (
	defaultOnce     sync.Once
	defaultResolver *Resolver
)

// Default returns a shared resolver with embedded defaults and no overrides.
func Default() *Resolver {
	defaultOnce.Do(func() {
		defaultResolver = NewDefaultResolver(nil, slog.New(slog.DiscardHandler))
	})
	return defaultResolver
}
