package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackzampolin/cornell/internal/notes"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configFile
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.LLMProviders) == 0 {
		t.Error("expected default LLM providers")
	}
	if cfg.LLMProviders["openrouter"].APIKey != "${OPENROUTER_API_KEY}" {
		t.Error("expected openrouter API key placeholder")
	}
	if cfg.Capabilities.Summarizer != SummarizerExtractive {
		t.Errorf("Summarizer = %q, want %q", cfg.Capabilities.Summarizer, SummarizerExtractive)
	}
	if cfg.Notes.Heading != notes.DefaultHeadingLengths {
		t.Errorf("Heading = %+v, want %+v", cfg.Notes.Heading, notes.DefaultHeadingLengths)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_API_KEY", "secret123")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestConfig_ToProviderRegistryConfig(t *testing.T) {
	t.Setenv("TEST_OPENROUTER_KEY", "or-key-123")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {Type: "openrouter", APIKey: "${TEST_OPENROUTER_KEY}", RateLimit: 5, Enabled: true},
			"literal":    {Type: "openai", APIKey: "direct-key", BaseURL: "http://localhost:9999/v1"},
		},
	}

	rc := cfg.ToProviderRegistryConfig()

	t.Run("resolves env var reference", func(t *testing.T) {
		if got := rc.LLMProviders["openrouter"].APIKey; got != "or-key-123" {
			t.Errorf("expected or-key-123, got %s", got)
		}
	})

	t.Run("returns literal value", func(t *testing.T) {
		p := rc.LLMProviders["literal"]
		if p.APIKey != "direct-key" {
			t.Errorf("expected direct-key, got %s", p.APIKey)
		}
		if p.BaseURL != "http://localhost:9999/v1" {
			t.Errorf("BaseURL = %q", p.BaseURL)
		}
		if p.Enabled {
			t.Error("expected literal provider to stay disabled")
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "provider summarizer",
			mutate: func(c *Config) { c.Capabilities.Summarizer = "openrouter" },
		},
		{
			name:   "spellchecker disabled",
			mutate: func(c *Config) { c.Capabilities.SpellChecker = CapabilityNone },
		},
		{
			name:    "unknown summarizer",
			mutate:  func(c *Config) { c.Capabilities.Summarizer = "bart" },
			wantErr: "capabilities.summarizer",
		},
		{
			name:    "unknown sentiment provider",
			mutate:  func(c *Config) { c.Capabilities.Sentiment = "huggingface" },
			wantErr: "capabilities.sentiment",
		},
		{
			name:    "classification without labels",
			mutate:  func(c *Config) { c.Capabilities.Classification = "openai" },
			wantErr: "classification_labels",
		},
		{
			name: "classification with labels",
			mutate: func(c *Config) {
				c.Capabilities.Classification = "openai"
				c.Capabilities.ClassificationLabels = []string{"science", "history"}
			},
		},
		{
			name:    "negative concurrency",
			mutate:  func(c *Config) { c.Notes.Concurrency = -1 },
			wantErr: "notes.concurrency",
		},
		{
			name:    "min above max",
			mutate:  func(c *Config) { c.Notes.Paragraph = notes.Lengths{Max: 10, Min: 20} },
			wantErr: "notes.paragraph",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewManager(t *testing.T) {
	t.Run("defaults without config file", func(t *testing.T) {
		mgr, err := NewManager("", t.TempDir())
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if mgr.ConfigFile() != "" {
			t.Errorf("ConfigFile() = %q, want empty", mgr.ConfigFile())
		}

		cfg := mgr.Get()
		want := DefaultConfig()
		if cfg.Capabilities.Summarizer != want.Capabilities.Summarizer ||
			cfg.Capabilities.SpellChecker != want.Capabilities.SpellChecker {
			t.Errorf("capabilities = %+v, want %+v", cfg.Capabilities, want.Capabilities)
		}
		if cfg.Notes.Concurrency != want.Notes.Concurrency ||
			cfg.Notes.Heading != want.Notes.Heading ||
			cfg.Notes.Paragraph != want.Notes.Paragraph ||
			cfg.Notes.Document != want.Notes.Document {
			t.Errorf("notes = %+v, want %+v", cfg.Notes, want.Notes)
		}
		if cfg.LLMProviders["openai"] != want.LLMProviders["openai"] {
			t.Errorf("openai provider = %+v, want %+v", cfg.LLMProviders["openai"], want.LLMProviders["openai"])
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
		}
	})

	t.Run("loads from config file", func(t *testing.T) {
		configFile := writeConfig(t, `
capabilities:
  summarizer: openrouter
notes:
  concurrency: 4
  paragraph:
    max: 80
`)

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Capabilities.Summarizer != "openrouter" {
			t.Errorf("expected openrouter, got %s", cfg.Capabilities.Summarizer)
		}
		if cfg.Notes.Concurrency != 4 {
			t.Errorf("Concurrency = %d, want 4", cfg.Notes.Concurrency)
		}
		if cfg.Notes.Paragraph.Max != 80 || cfg.Notes.Paragraph.Min != notes.DefaultParagraphLengths.Min {
			t.Errorf("Paragraph = %+v, want max 80 with default min", cfg.Notes.Paragraph)
		}
		if cfg.Capabilities.SpellChecker != SpellCheckerDictionary {
			t.Errorf("unset keys should keep defaults, got spellchecker %q", cfg.Capabilities.SpellChecker)
		}
	})

	t.Run("finds config in search dir", func(t *testing.T) {
		configFile := writeConfig(t, "log_level: debug\n")

		mgr, err := NewManager("", filepath.Dir(configFile))
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if mgr.Get().LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", mgr.Get().LogLevel)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("CORNELL_NOTES_CONCURRENCY", "8")
		configFile := writeConfig(t, "notes:\n  concurrency: 2\n")

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}
		if mgr.Get().Notes.Concurrency != 8 {
			t.Errorf("Concurrency = %d, want 8", mgr.Get().Notes.Concurrency)
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		configFile := writeConfig(t, "capabilities:\n  summarizer: nope\n")

		if _, err := NewManager(configFile); err == nil {
			t.Error("expected error for unknown summarizer")
		}
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		configFile := writeConfig(t, "notes: [unterminated\n")

		if _, err := NewManager(configFile); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})
}

func TestManager_SetAndReset(t *testing.T) {
	mgr, err := NewManager("", t.TempDir())
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	var calls atomic.Int32
	mgr.OnChange(func(*Config) { calls.Add(1) })

	if err := mgr.Set("notes.concurrency", 3); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if mgr.Get().Notes.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3", mgr.Get().Notes.Concurrency)
	}

	if err := mgr.Set("notes.concurrency", -2); err == nil {
		t.Error("expected Set() to reject negative concurrency")
	}

	if err := mgr.Reset("notes.concurrency"); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if mgr.Get().Notes.Concurrency != 1 {
		t.Errorf("Concurrency after reset = %d, want 1", mgr.Get().Notes.Concurrency)
	}
	if calls.Load() != 2 {
		t.Errorf("callbacks = %d, want 2", calls.Load())
	}
}

func TestManager_OnChange_Multiple(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log_level: info\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Register multiple callbacks
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestManager_Get_ThreadSafe(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "log_level: info\n"))
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Call Get concurrently to verify no race conditions
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				cfg := mgr.Get()
				_ = cfg.Capabilities.Summarizer
			}
			done <- struct{}{}
		}()
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestManager_WatchConfig(t *testing.T) {
	configFile := writeConfig(t, `
notes:
  concurrency: 1
`)

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Track callback invocations
	var callbackCount atomic.Int32
	var lastValue atomic.Int32

	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastValue.Store(int32(cfg.Notes.Concurrency))
	})

	// Start watching
	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	// Update the config file
	newContent := `
notes:
  concurrency: 6
`
	if err := os.WriteFile(configFile, []byte(newContent), 0644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	// Wait for the watcher to detect the change (fsnotify is async)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if lastValue.Load() == 6 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Error("callback was not invoked after config file change")
	}
	if got := mgr.Get().Notes.Concurrency; got != 6 {
		t.Errorf("config not updated: expected 6, got %d", got)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("written default config should load: %v", err)
	}
	cfg := mgr.Get()
	if cfg.LLMProviders["openrouter"].Model != "anthropic/claude-3.5-haiku" {
		t.Errorf("openrouter model = %q", cfg.LLMProviders["openrouter"].Model)
	}
	if cfg.Notes.Document != notes.DefaultDocumentLengths {
		t.Errorf("Document = %+v", cfg.Notes.Document)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "# Cornell configuration") {
		t.Error("expected header comment")
	}
}

func TestConfig_Redacted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLMProviders["openai"] = LLMProviderCfg{Type: "openai", APIKey: "sk-live-123"}

	red := cfg.Redacted()
	if red.LLMProviders["openai"].APIKey != "****" {
		t.Errorf("literal key not masked: %q", red.LLMProviders["openai"].APIKey)
	}
	if red.LLMProviders["openrouter"].APIKey != "${OPENROUTER_API_KEY}" {
		t.Errorf("env reference should be kept: %q", red.LLMProviders["openrouter"].APIKey)
	}
	if cfg.LLMProviders["openai"].APIKey != "sk-live-123" {
		t.Error("Redacted must not modify the original")
	}
}
