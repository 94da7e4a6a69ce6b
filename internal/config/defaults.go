package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrNoDefault is returned when no default value exists for a config key.
var ErrNoDefault = errors.New("no default exists")

// Entry represents a single configuration entry.
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

// DefaultEntries returns the default configuration entries.
// These are registered as viper defaults so a config file only needs the
// keys it changes.
func DefaultEntries() []Entry {
	d := DefaultConfig()
	or := d.LLMProviders["openrouter"]
	oa := d.LLMProviders["openai"]

	return []Entry{
		// ===================
		// LLM Providers
		// ===================

		// LLM Providers - OpenRouter
		{Key: "llm_providers.openrouter.type", Value: or.Type, Description: "LLM provider type for OpenRouter"},
		{Key: "llm_providers.openrouter.model", Value: or.Model, Description: "Default model for OpenRouter"},
		{Key: "llm_providers.openrouter.api_key", Value: or.APIKey, Description: "OpenRouter API key (uses environment variable)"},
		{Key: "llm_providers.openrouter.rate_limit", Value: or.RateLimit, Description: "Rate limit in requests per second for OpenRouter"},
		{Key: "llm_providers.openrouter.enabled", Value: or.Enabled, Description: "Whether OpenRouter LLM provider is enabled"},

		// LLM Providers - OpenAI
		{Key: "llm_providers.openai.type", Value: oa.Type, Description: "LLM provider type for OpenAI"},
		{Key: "llm_providers.openai.model", Value: oa.Model, Description: "Default OpenAI chat model"},
		{Key: "llm_providers.openai.api_key", Value: oa.APIKey, Description: "OpenAI API key (uses environment variable)"},
		{Key: "llm_providers.openai.rate_limit", Value: oa.RateLimit, Description: "Rate limit in requests per second for OpenAI"},
		{Key: "llm_providers.openai.enabled", Value: oa.Enabled, Description: "Whether OpenAI LLM provider is enabled"},

		// ===================
		// Capabilities
		// ===================
		{Key: "capabilities.summarizer", Value: d.Capabilities.Summarizer, Description: `Summarizer: "extractive" or an LLM provider name`},
		{Key: "capabilities.spellchecker", Value: d.Capabilities.SpellChecker, Description: `Spell checker: "dictionary", "none" or an LLM provider name`},
		{Key: "capabilities.dictionary", Value: d.Capabilities.Dictionary, Description: "Word list for the dictionary spell checker (default: {home}/dictionary.txt)"},
		{Key: "capabilities.sentiment", Value: d.Capabilities.Sentiment, Description: "LLM provider for sentiment analysis (empty: not configured)"},
		{Key: "capabilities.classification", Value: d.Capabilities.Classification, Description: "LLM provider for text classification (empty: not configured)"},
		{Key: "capabilities.classification_labels", Value: d.Capabilities.ClassificationLabels, Description: "Labels the classifier may choose from"},

		// ===================
		// Note synthesis
		// ===================
		{Key: "notes.concurrency", Value: d.Notes.Concurrency, Description: "Sections processed concurrently"},
		{Key: "notes.heading.max", Value: d.Notes.Heading.Max, Description: "Maximum summary words for heading sections"},
		{Key: "notes.heading.min", Value: d.Notes.Heading.Min, Description: "Minimum summary words for heading sections"},
		{Key: "notes.paragraph.max", Value: d.Notes.Paragraph.Max, Description: "Maximum summary words for paragraph sections"},
		{Key: "notes.paragraph.min", Value: d.Notes.Paragraph.Min, Description: "Minimum summary words for paragraph sections"},
		{Key: "notes.document.max", Value: d.Notes.Document.Max, Description: "Maximum words for the whole-document summary"},
		{Key: "notes.document.min", Value: d.Notes.Document.Min, Description: "Minimum words for the whole-document summary"},

		// ===================
		// Ambient
		// ===================
		{Key: "log_level", Value: d.LogLevel, Description: "Log level: debug, info, warn, error"},
		{Key: "metrics_file", Value: d.MetricsFile, Description: "Write Prometheus metrics to this file after each run (empty: disabled)"},
	}
}

// GetDefault returns the default entry for a config key.
// Returns nil if no default exists for the key.
func GetDefault(key string) *Entry {
	for _, entry := range DefaultEntries() {
		if entry.Key == key {
			return &entry
		}
	}
	return nil
}

// ResetToDefault resets a config key to its default value on v.
// Returns ErrNoDefault if no default exists for the key.
func ResetToDefault(v *viper.Viper, key string) error {
	def := GetDefault(key)
	if def == nil {
		return fmt.Errorf("%w for key %q", ErrNoDefault, key)
	}
	v.Set(key, def.Value)
	return nil
}

func registerDefaults(v *viper.Viper) {
	for _, e := range DefaultEntries() {
		v.SetDefault(e.Key, e.Value)
	}
}
