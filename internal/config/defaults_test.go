package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaultEntries(t *testing.T) {
	entries := DefaultEntries()

	if len(entries) == 0 {
		t.Fatal("DefaultEntries() returned empty slice")
	}

	// Verify required keys exist
	requiredKeys := []string{
		"llm_providers.openrouter.type",
		"llm_providers.openrouter.api_key",
		"llm_providers.openrouter.rate_limit",
		"llm_providers.openrouter.enabled",
		"llm_providers.openai.type",
		"capabilities.summarizer",
		"capabilities.spellchecker",
		"notes.concurrency",
		"notes.heading.max",
		"notes.document.min",
		"log_level",
	}

	keys := make(map[string]bool)
	for _, e := range entries {
		if keys[e.Key] {
			t.Errorf("duplicate key %s", e.Key)
		}
		keys[e.Key] = true
		if e.Description == "" {
			t.Errorf("key %s has no description", e.Key)
		}
		if strings.ToLower(e.Key) != e.Key {
			t.Errorf("key %s must be lowercase for viper", e.Key)
		}
	}

	for _, key := range requiredKeys {
		if !keys[key] {
			t.Errorf("DefaultEntries() missing required key: %s", key)
		}
	}
}

func TestGetDefault(t *testing.T) {
	t.Run("existing_key", func(t *testing.T) {
		entry := GetDefault("llm_providers.openrouter.type")
		if entry == nil {
			t.Fatal("GetDefault() returned nil for existing key")
		}
		if entry.Value != "openrouter" {
			t.Errorf("GetDefault() Value = %v, want %q", entry.Value, "openrouter")
		}
	})

	t.Run("numeric_key", func(t *testing.T) {
		entry := GetDefault("notes.paragraph.max")
		if entry == nil {
			t.Fatal("GetDefault() returned nil for existing key")
		}
		if entry.Value != 100 {
			t.Errorf("GetDefault() Value = %v, want 100", entry.Value)
		}
	})

	t.Run("non_existent_key", func(t *testing.T) {
		entry := GetDefault("does.not.exist")
		if entry != nil {
			t.Errorf("GetDefault() = %v, want nil for non-existent key", entry)
		}
	})
}

func TestResetToDefault(t *testing.T) {
	t.Run("resets_existing_key", func(t *testing.T) {
		v := viper.New()
		v.Set("capabilities.summarizer", "openai")

		if err := ResetToDefault(v, "capabilities.summarizer"); err != nil {
			t.Fatalf("ResetToDefault() error = %v", err)
		}
		if got := v.GetString("capabilities.summarizer"); got != SummarizerExtractive {
			t.Errorf("after reset = %q, want %q", got, SummarizerExtractive)
		}
	})

	t.Run("error_for_non_existent_key", func(t *testing.T) {
		err := ResetToDefault(viper.New(), "does.not.exist")
		if !errors.Is(err, ErrNoDefault) {
			t.Errorf("ResetToDefault() error = %v, want ErrNoDefault", err)
		}
	})
}
