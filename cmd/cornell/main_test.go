package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/cornell/internal/notes"
)

// execute runs the CLI with args against a temp home and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithStderr(t, stdin, args...)
	return out, err
}

func executeWithStderr(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cfgFile, homeDir, outputFormat, verbose = "", t.TempDir(), "yaml", false
	notesConcurrency, notesWatch, notesSave, notesStats, notesMetricsFile = 0, false, false, false, ""
	extractToday, configForce = "", false

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestNotesCommand(t *testing.T) {
	input := writeFile(t, "lecture.txt", "Photosynthesis\n==============\nPlants make sugar from light. They release oxygen.\n\nA closing remark.")

	out, err := execute(t, "", "notes", input)
	if err != nil {
		t.Fatalf("notes error = %v", err)
	}
	for _, want := range []string{
		"title: Photosynthesis",
		"main_idea: Plants make sugar from light.",
		"What is the main idea of 'Photosynthesis'?",
		"title: Paragraph",
		"summary:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNotesCommand_Stdin(t *testing.T) {
	out, err := execute(t, "Just one paragraph here.", "notes", "-o", "json")
	if err != nil {
		t.Fatalf("notes error = %v", err)
	}
	if !strings.Contains(out, `"pages": [`) || !strings.Contains(out, `"title": "Paragraph"`) {
		t.Errorf("unexpected json output:\n%s", out)
	}
}

func TestNotesCommand_InvalidUTF8(t *testing.T) {
	_, err := execute(t, "bad \xff\xfe bytes", "notes")
	if err == nil || !strings.Contains(err.Error(), "UTF-8") {
		t.Errorf("expected UTF-8 error, got %v", err)
	}
}

func TestNotesCommand_MetricsFile(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "cornell.prom")
	if _, err := execute(t, "One. Two.", "notes", "--metrics-file", metricsFile); err != nil {
		t.Fatalf("notes error = %v", err)
	}
	data, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(data), "cornell_documents_total 1") {
		t.Errorf("metrics file missing document counter:\n%s", data)
	}
}

func TestNotesCommand_Save(t *testing.T) {
	input := writeFile(t, "chapter1.txt", "Some text to keep.")
	if _, err := execute(t, "", "notes", "--save", input); err != nil {
		t.Fatalf("notes error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(homeDir, "notes", "chapter1.yaml")); err != nil {
		t.Errorf("saved notes not found: %v", err)
	}
}

func TestNotesCommand_Stats(t *testing.T) {
	out, stderr, err := executeWithStderr(t, "Title\n=====\nOne. Two.\n\nA paragraph.", "notes", "--stats")
	if err != nil {
		t.Fatalf("notes error = %v", err)
	}
	if !strings.Contains(out, "pages:") {
		t.Errorf("stdout missing notes:\n%s", out)
	}
	for _, want := range []string{"documents: 1", "pages: 2", "capability: summarizer", "capability: spellchecker"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stats missing %q:\n%s", want, stderr)
		}
	}
}

func TestNotesCommand_WatchRequiresFile(t *testing.T) {
	if _, err := execute(t, "text", "notes", "--watch"); err == nil {
		t.Error("expected error for --watch on stdin")
	}
}

func TestNotesCommand_Watch(t *testing.T) {
	input := writeFile(t, "live.txt", "First draft.")
	cfgFile, homeDir, outputFormat, verbose = "", t.TempDir(), "yaml", false
	notesConcurrency, notesSave, notesMetricsFile = 0, false, ""
	notesWatch = true
	defer func() { notesWatch = false }()

	var out syncBuffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"notes", "--watch", input})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rootCmd.ExecuteContext(ctx) }()

	waitFor := func(want string) bool {
		deadline := time.Now().Add(3 * time.Second)
		for time.Now().Before(deadline) {
			if strings.Contains(out.String(), want) {
				return true
			}
			time.Sleep(25 * time.Millisecond)
		}
		return false
	}

	if !waitFor("First draft.") {
		t.Fatalf("initial run missing:\n%s", out.String())
	}
	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(input, []byte("Second draft."), 0644); err != nil {
		t.Fatal(err)
	}
	if !waitFor("Second draft.") {
		t.Errorf("re-run after change missing:\n%s", out.String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watch did not stop after cancel")
	}
}

func TestNotesCommand_InvalidConfig(t *testing.T) {
	cfg := writeFile(t, "config.yaml", "capabilities:\n  summarizer: nowhere\n")
	if _, err := execute(t, "text", "--config", cfg, "notes"); err == nil {
		t.Error("expected config validation error")
	}
}

func TestNoteError(t *testing.T) {
	cause := errors.New("model offline")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "section",
			err:  &notes.CapabilityError{Capability: notes.CapSummarizer, Section: 2, Err: cause},
			want: "note generation failed at summarizer (section 2): model offline",
		},
		{
			name: "document",
			err:  &notes.CapabilityError{Capability: notes.CapSentiment, Section: notes.DocumentIndex, Err: cause},
			want: "note generation failed at sentiment (whole document): model offline",
		},
		{
			name: "other",
			err:  cause,
			want: "note generation failed: model offline",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := noteError(tt.err)
			if got.Error() != tt.want {
				t.Errorf("noteError() = %q, want %q", got.Error(), tt.want)
			}
			if !errors.Is(got, cause) {
				t.Error("noteError() should wrap the cause")
			}
		})
	}
}

func TestSectionsCommand(t *testing.T) {
	out, err := execute(t, "Intro\n-----\nHello there.\n\nTrailing paragraph.", "sections")
	if err != nil {
		t.Fatalf("sections error = %v", err)
	}
	for _, want := range []string{"type: heading", "title: Intro", "content: Hello there.", "type: paragraph"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "", "sections", "-o", "json")
	if err != nil {
		t.Fatalf("sections error = %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("empty input = %q, want []", out)
	}
}

func TestExtractCommands(t *testing.T) {
	t.Run("prescription", func(t *testing.T) {
		out, err := execute(t, "Patient Name: Jane Roe\nMedicine 1: Amoxicillin\nDosage: 500mg\nInstructions: Twice daily",
			"extract", "prescription", "--today", "2024-03-01")
		if err != nil {
			t.Fatalf("extract error = %v", err)
		}
		for _, want := range []string{"patient_name: Jane Roe", "2024-03-01", "name: Amoxicillin", "dosage: 500mg"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("bad today", func(t *testing.T) {
		if _, err := execute(t, "", "extract", "prescription", "--today", "March 1"); err == nil {
			t.Error("expected error for invalid --today")
		}
	})

	t.Run("receipt", func(t *testing.T) {
		out, err := execute(t, "Order ID: 42\nCustomer Name: Sam\nItem: Tea\nPrice: $3.00\nTotal: Price: $3.00",
			"extract", "receipt", "-o", "json")
		if err != nil {
			t.Fatalf("extract error = %v", err)
		}
		for _, want := range []string{`"order_id": "42"`, `"item": "Tea"`, `"total": "$3.00"`} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestAnalyzeCommand(t *testing.T) {
	out, err := execute(t, "I think the sky is blue.", "analyze")
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	for _, want := range []string{"intent: Speculative", "confidence: Low", "label: N/A"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeCommand_DefaultSpelling(t *testing.T) {
	out, err := execute(t, "This is a sampel text with mistkaes in it", "analyze", "-o", "json")
	if err != nil {
		t.Fatalf("analyze error = %v", err)
	}
	var got struct {
		SpellingMistakes []string `json:"spelling_mistakes"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, out)
	}
	want := []string{"mistkaes", "sampel"}
	if !reflect.DeepEqual(got.SpellingMistakes, want) {
		t.Errorf("spelling_mistakes = %v, want %v", got.SpellingMistakes, want)
	}
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := execute(t, "", "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if _, err := execute(t, "", "--config", path, "config", "init"); err == nil {
		t.Error("expected error when config exists without --force")
	}
	if _, err := execute(t, "", "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force error = %v", err)
	}

	home := t.TempDir()
	if _, err := execute(t, "", "--home", home, "config", "init"); err != nil {
		t.Fatalf("config init in home error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, "config.yaml")); err != nil {
		t.Fatalf("home config not written: %v", err)
	}
	if _, err := execute(t, "", "--home", home, "config", "init"); err == nil {
		t.Error("expected error when home config exists without --force")
	}

	out, err := execute(t, "", "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "summarizer: extractive") {
		t.Errorf("config show missing summarizer:\n%s", out)
	}

	out, err = execute(t, "", "config", "defaults")
	if err != nil {
		t.Fatalf("config defaults error = %v", err)
	}
	if !strings.Contains(out, "key: notes.concurrency") {
		t.Errorf("config defaults missing key:\n%s", out)
	}
}

func TestOutputFlagValidation(t *testing.T) {
	if _, err := execute(t, "x", "sections", "-o", "xml"); err == nil {
		t.Error("expected error for unknown output format")
	}
}

func TestPromptsCommands(t *testing.T) {
	out, err := execute(t, "", "prompts", "list")
	if err != nil {
		t.Fatalf("prompts list error = %v", err)
	}
	if !strings.Contains(out, "key: summarize.user") || strings.Contains(out, "override: true") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	// execute resets homeDir, so export and list share one home explicitly
	home := t.TempDir()
	if _, err := execute(t, "", "--home", home, "prompts", "export"); err != nil {
		t.Fatalf("prompts export error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, "prompts", "summarize.user.tmpl")); err != nil {
		t.Fatalf("exported prompt missing: %v", err)
	}

	out, err = execute(t, "", "--home", home, "prompts", "show", "summarize.user")
	if err != nil {
		t.Fatalf("prompts show error = %v", err)
	}
	if !strings.Contains(out, "is_override: true") {
		t.Errorf("expected override after export:\n%s", out)
	}

	if _, err := execute(t, "", "--home", home, "prompts", "reset", "summarize.user"); err != nil {
		t.Fatalf("prompts reset error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, "prompts", "summarize.user.tmpl")); !os.IsNotExist(err) {
		t.Errorf("override should be removed after reset, stat error = %v", err)
	}

	if _, err := execute(t, "", "prompts", "show", "nope"); err == nil {
		t.Error("expected error for unknown prompt")
	}
}
