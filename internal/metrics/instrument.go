package metrics

import (
	"context"
	"time"

	"github.com/jackzampolin/cornell/internal/analysis"
	"github.com/jackzampolin/cornell/internal/notes"
	"github.com/jackzampolin/cornell/internal/providers"
)

type summarizer struct {
	rec  *Recorder
	next notes.Summarizer
}

// InstrumentSummarizer records every call to s.
func InstrumentSummarizer(rec *Recorder, s notes.Summarizer) notes.Summarizer {
	if rec == nil {
		return s
	}
	return &summarizer{rec: rec, next: s}
}

func (s *summarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	start := time.Now()
	out, err := s.next.Summarize(ctx, text, maxLength, minLength)
	s.rec.RecordCapability(notes.CapSummarizer, time.Since(start), err)
	return out, err
}

type splitter struct {
	rec  *Recorder
	next notes.SentenceSplitter
}

// InstrumentSplitter records every call to s.
func InstrumentSplitter(rec *Recorder, s notes.SentenceSplitter) notes.SentenceSplitter {
	if rec == nil {
		return s
	}
	return &splitter{rec: rec, next: s}
}

func (s *splitter) Split(ctx context.Context, text string) ([]string, error) {
	start := time.Now()
	out, err := s.next.Split(ctx, text)
	s.rec.RecordCapability(notes.CapSentenceSplitter, time.Since(start), err)
	return out, err
}

type spellChecker struct {
	rec  *Recorder
	next analysis.SpellChecker
}

// InstrumentSpellChecker records every call to s.
func InstrumentSpellChecker(rec *Recorder, s analysis.SpellChecker) analysis.SpellChecker {
	if rec == nil || s == nil {
		return s
	}
	return &spellChecker{rec: rec, next: s}
}

func (s *spellChecker) Unknown(ctx context.Context, tokens []string) ([]string, error) {
	start := time.Now()
	out, err := s.next.Unknown(ctx, tokens)
	s.rec.RecordCapability(notes.CapSpellChecker, time.Since(start), err)
	return out, err
}

type classifier struct {
	rec        *Recorder
	capability string
	next       analysis.Classifier
}

// InstrumentClassifier records every call to c under the capability name.
func InstrumentClassifier(rec *Recorder, capability string, c analysis.Classifier) analysis.Classifier {
	if rec == nil || c == nil {
		return c
	}
	return &classifier{rec: rec, capability: capability, next: c}
}

func (c *classifier) Classify(ctx context.Context, text string) (analysis.Label, error) {
	start := time.Now()
	out, err := c.next.Classify(ctx, text)
	c.rec.RecordCapability(c.capability, time.Since(start), err)
	return out, err
}

type llmClient struct {
	rec  *Recorder
	next providers.LLMClient
}

// InstrumentLLM records token usage and cost of every chat request.
func InstrumentLLM(rec *Recorder, c providers.LLMClient) providers.LLMClient {
	if rec == nil {
		return c
	}
	return &llmClient{rec: rec, next: c}
}

func (c *llmClient) Name() string {
	return c.next.Name()
}

func (c *llmClient) Chat(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResult, error) {
	result, err := c.next.Chat(ctx, req)
	c.rec.RecordLLMCall(c.next.Name(), result, err)
	return result, err
}
