package config

import (
	"fmt"

	"github.com/jackzampolin/cornell/internal/notes"
	"github.com/jackzampolin/cornell/internal/providers"
)

// Built-in capability implementations. Any other capability value names an
// entry in llm_providers.
const (
	SummarizerExtractive   = "extractive"
	SpellCheckerDictionary = "dictionary"
	CapabilityNone         = "none"
)

// Config holds cornell configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Capabilities CapabilitiesCfg           `mapstructure:"capabilities" yaml:"capabilities"`
	Notes        NotesCfg                  `mapstructure:"notes" yaml:"notes"`
	LogLevel     string                    `mapstructure:"log_level" yaml:"log_level"`       // debug, info, warn, error
	MetricsFile  string                    `mapstructure:"metrics_file" yaml:"metrics_file"` // Prometheus textfile output, empty disables
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type      string  `mapstructure:"type" yaml:"type"`             // "openrouter", "openai"
	Model     string  `mapstructure:"model" yaml:"model"`           // Model name
	APIKey    string  `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	BaseURL   string  `mapstructure:"base_url" yaml:"base_url"`     // Optional endpoint override
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
}

// CapabilitiesCfg selects the implementation behind each capability.
type CapabilitiesCfg struct {
	Summarizer           string   `mapstructure:"summarizer" yaml:"summarizer"`                       // "extractive" or an llm_providers name
	SpellChecker         string   `mapstructure:"spellchecker" yaml:"spellchecker"`                   // "dictionary", "none" or an llm_providers name
	Dictionary           string   `mapstructure:"dictionary" yaml:"dictionary"`                       // Word list path, defaults to {home}/dictionary.txt
	Sentiment            string   `mapstructure:"sentiment" yaml:"sentiment"`                         // llm_providers name, empty leaves it unconfigured
	Classification       string   `mapstructure:"classification" yaml:"classification"`               // llm_providers name, empty leaves it unconfigured
	ClassificationLabels []string `mapstructure:"classification_labels" yaml:"classification_labels"` // Allowed labels for classification
}

// NotesCfg tunes note synthesis.
type NotesCfg struct {
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"` // Sections processed at once
	Heading     notes.Lengths `mapstructure:"heading" yaml:"heading"`
	Paragraph   notes.Lengths `mapstructure:"paragraph" yaml:"paragraph"`
	Document    notes.Lengths `mapstructure:"document" yaml:"document"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:      providers.OpenRouterName,
				Model:     "anthropic/claude-3.5-haiku",
				APIKey:    "${OPENROUTER_API_KEY}",
				RateLimit: 10.0,
				Enabled:   true,
			},
			"openai": {
				Type:      providers.OpenAIName,
				Model:     "gpt-4o-mini",
				APIKey:    "${OPENAI_API_KEY}",
				RateLimit: 8.0,
				Enabled:   true,
			},
		},
		Capabilities: CapabilitiesCfg{
			Summarizer:           SummarizerExtractive,
			SpellChecker:         SpellCheckerDictionary,
			ClassificationLabels: []string{},
		},
		Notes: NotesCfg{
			Concurrency: 1,
			Heading:     notes.DefaultHeadingLengths,
			Paragraph:   notes.DefaultParagraphLengths,
			Document:    notes.DefaultDocumentLengths,
		},
		LogLevel: "info",
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// Validate checks that capability selections refer to known implementations
// and that summary bounds are consistent.
func (c *Config) Validate() error {
	checkProvider := func(capability, name string, builtins ...string) error {
		if name == "" {
			return nil
		}
		for _, b := range builtins {
			if name == b {
				return nil
			}
		}
		if _, ok := c.GetLLMProvider(name); !ok {
			return fmt.Errorf("capabilities.%s: unknown provider %q", capability, name)
		}
		return nil
	}

	caps := c.Capabilities
	if err := checkProvider("summarizer", caps.Summarizer, SummarizerExtractive); err != nil {
		return err
	}
	if err := checkProvider("spellchecker", caps.SpellChecker, SpellCheckerDictionary, CapabilityNone); err != nil {
		return err
	}
	if err := checkProvider("sentiment", caps.Sentiment, CapabilityNone); err != nil {
		return err
	}
	if err := checkProvider("classification", caps.Classification, CapabilityNone); err != nil {
		return err
	}
	if caps.Classification != "" && caps.Classification != CapabilityNone && len(caps.ClassificationLabels) == 0 {
		return fmt.Errorf("capabilities.classification_labels: required when classification is enabled")
	}

	if c.Notes.Concurrency < 0 {
		return fmt.Errorf("notes.concurrency: must not be negative, got %d", c.Notes.Concurrency)
	}
	for name, l := range map[string]notes.Lengths{
		"heading":   c.Notes.Heading,
		"paragraph": c.Notes.Paragraph,
		"document":  c.Notes.Document,
	} {
		if l.Min < 0 || l.Max < 0 || (l.Max > 0 && l.Min > l.Max) {
			return fmt.Errorf("notes.%s: invalid bounds min=%d max=%d", name, l.Min, l.Max)
		}
	}
	return nil
}

// Redacted returns a copy with literal API keys masked. ${ENV_VAR}
// references are kept since they hold no secret.
func (c *Config) Redacted() *Config {
	out := *c
	out.LLMProviders = make(map[string]LLMProviderCfg, len(c.LLMProviders))
	for name, p := range c.LLMProviders {
		if p.APIKey != "" && !envVarPattern.MatchString(p.APIKey) {
			p.APIKey = "****"
		}
		out.LLMProviders[name] = p
	}
	return &out
}
