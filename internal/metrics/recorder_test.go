package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/cornell/internal/analysis"
	"github.com/jackzampolin/cornell/internal/notes"
	"github.com/jackzampolin/cornell/internal/providers"
	"github.com/jackzampolin/cornell/internal/sentences"
	"github.com/jackzampolin/cornell/internal/summarize"
)

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, string) (analysis.Label, error) {
	return analysis.Label{}, errors.New("model offline")
}

func findCapability(t *testing.T, s *Summary, name string) CapabilityStats {
	t.Helper()
	for _, c := range s.Capabilities {
		if c.Capability == name {
			return c
		}
	}
	t.Fatalf("capability %q not in summary: %+v", name, s.Capabilities)
	return CapabilityStats{}
}

func TestInstrument(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder()

	sum := InstrumentSummarizer(rec, summarize.NewExtractive())
	if _, err := sum.Summarize(ctx, "One sentence. Two sentence.", 10, 1); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if _, err := sum.Summarize(ctx, "", 10, 1); err == nil {
		t.Fatal("expected error for empty text")
	}

	split := InstrumentSplitter(rec, sentences.New())
	if _, err := split.Split(ctx, "A. B."); err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	spell := InstrumentSpellChecker(rec, analysis.NewDictionary([]string{"a"}))
	if _, err := spell.Unknown(ctx, []string{"a", "b"}); err != nil {
		t.Fatalf("Unknown() error = %v", err)
	}

	cls := InstrumentClassifier(rec, notes.CapSentiment, failingClassifier{})
	if _, err := cls.Classify(ctx, "text"); err == nil {
		t.Fatal("expected classifier error")
	}

	s, err := rec.Summary()
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if c := findCapability(t, s, notes.CapSummarizer); c.Calls != 2 || c.Errors != 1 {
		t.Errorf("summarizer stats = %+v, want 2 calls / 1 error", c)
	}
	if c := findCapability(t, s, notes.CapSentenceSplitter); c.Calls != 1 || c.Errors != 0 {
		t.Errorf("splitter stats = %+v", c)
	}
	if c := findCapability(t, s, notes.CapSpellChecker); c.Calls != 1 {
		t.Errorf("spellchecker stats = %+v", c)
	}
	if c := findCapability(t, s, notes.CapSentiment); c.Errors != 1 {
		t.Errorf("sentiment stats = %+v", c)
	}
	for i := 1; i < len(s.Capabilities); i++ {
		if s.Capabilities[i-1].Capability > s.Capabilities[i].Capability {
			t.Errorf("capabilities not sorted: %+v", s.Capabilities)
		}
	}
}

func TestInstrumentLLM(t *testing.T) {
	rec := NewRecorder()
	mock := providers.NewMockClient()
	mock.ResponseText = strings.Repeat("x", 40)

	client := InstrumentLLM(rec, mock)
	if client.Name() != providers.MockClientName {
		t.Errorf("Name() = %q", client.Name())
	}
	if _, err := client.Chat(context.Background(), &providers.ChatRequest{
		Messages: []providers.Message{{Role: "user", Content: strings.Repeat("y", 80)}},
	}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	s, err := rec.Summary()
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if s.LLMCalls != 1 {
		t.Errorf("LLMCalls = %d, want 1", s.LLMCalls)
	}
	if s.PromptTokens != 20 || s.CompletionTokens != 10 {
		t.Errorf("tokens = %d/%d, want 20/10", s.PromptTokens, s.CompletionTokens)
	}
}

func TestRecorder_Documents(t *testing.T) {
	rec := NewRecorder()
	rec.RecordDocument()
	rec.RecordPage("heading")
	rec.RecordPage("paragraph")
	rec.RecordPage("paragraph")

	s, err := rec.Summary()
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if s.Documents != 1 || s.Pages != 3 {
		t.Errorf("Documents/Pages = %d/%d, want 1/3", s.Documents, s.Pages)
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	rec := NewRecorder()
	rec.RecordCapability(notes.CapSummarizer, 20*time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "cornell.prom")
	if err := rec.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `cornell_capability_calls_total{capability="summarizer",outcome="success"} 1`) {
		t.Errorf("textfile missing call counter:\n%s", text)
	}
	if !strings.Contains(text, "cornell_capability_duration_seconds_bucket") {
		t.Errorf("textfile missing histogram:\n%s", text)
	}
}

func TestRecorder_Nil(t *testing.T) {
	var rec *Recorder
	rec.RecordCapability("x", time.Second, nil)
	rec.RecordDocument()
	if err := rec.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("WriteTextfile() on nil recorder error = %v", err)
	}

	s := summarize.NewExtractive()
	if got := InstrumentSummarizer(nil, s); got != notes.Summarizer(s) {
		t.Error("nil recorder should return the capability unchanged")
	}
}
