package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackzampolin/cornell/internal/analysis"
	"github.com/jackzampolin/cornell/internal/prompts"
)

// ErrEmptyInput is returned by LLM capabilities asked to process blank text.
var ErrEmptyInput = errors.New("empty input")

// CapabilityOption configures an LLM-backed capability.
type CapabilityOption func(*capabilityOptions)

type capabilityOptions struct {
	prompts *prompts.Resolver
}

// WithPrompts resolves prompt templates through r instead of the embedded
// defaults.
func WithPrompts(r *prompts.Resolver) CapabilityOption {
	return func(o *capabilityOptions) {
		if r != nil {
			o.prompts = r
		}
	}
}

func buildOptions(opts []CapabilityOption) capabilityOptions {
	o := capabilityOptions{prompts: prompts.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Summarizer is a summarization capability backed by an LLM.
// Lengths are measured in words.
type Summarizer struct {
	client  LLMClient
	model   string
	prompts *prompts.Resolver
}

// NewSummarizer creates a Summarizer. An empty model uses the client default.
func NewSummarizer(client LLMClient, model string, opts ...CapabilityOption) *Summarizer {
	o := buildOptions(opts)
	return &Summarizer{client: client, model: model, prompts: o.prompts}
}

// Summarize asks the model for a summary of text within the word bounds.
func (s *Summarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	system, err := s.prompts.Render(prompts.SummarizeSystem, nil)
	if err != nil {
		return "", err
	}
	user, err := s.prompts.Render(prompts.SummarizeUser, map[string]any{
		"Min":  minLength,
		"Max":  maxLength,
		"Text": text,
	})
	if err != nil {
		return "", err
	}
	result, err := s.client.Chat(ctx, newChat(s.model, system, user))
	if err != nil {
		return "", fmt.Errorf("%s summarize: %w", s.client.Name(), err)
	}
	return strings.TrimSpace(result.Content), nil
}

// SentimentLabels is the label set of NewSentimentClassifier.
var SentimentLabels = []string{"POSITIVE", "NEGATIVE"}

var sentimentSchema = mustSchema("sentiment", labelSchema(SentimentLabels))

// Classifier is a Classifier capability backed by an LLM. The model must
// pick one of a fixed set of labels; other output is rejected.
type Classifier struct {
	client  LLMClient
	model   string
	task    string
	labels  []string
	schema  *Schema
	prompts *prompts.Resolver
}

// NewClassifier creates a Classifier for task choosing among labels.
func NewClassifier(client LLMClient, model, task string, labels []string, opts ...CapabilityOption) (*Classifier, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("classifier %q: no labels configured", task)
	}
	schema, err := NewSchema("classification", labelSchema(labels))
	if err != nil {
		return nil, fmt.Errorf("classifier %q: %w", task, err)
	}
	return newClassifier(client, model, task, labels, schema, opts), nil
}

// NewSentimentClassifier creates a Classifier over SentimentLabels.
func NewSentimentClassifier(client LLMClient, model string, opts ...CapabilityOption) *Classifier {
	return newClassifier(client, model, "sentiment", SentimentLabels, sentimentSchema, opts)
}

func newClassifier(client LLMClient, model, task string, labels []string, schema *Schema, opts []CapabilityOption) *Classifier {
	return &Classifier{
		client:  client,
		model:   model,
		task:    task,
		labels:  append([]string(nil), labels...),
		schema:  schema,
		prompts: buildOptions(opts).prompts,
	}
}

// labelSchema describes a {"label", "score"} reply restricted to labels.
func labelSchema(labels []string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"label": map[string]any{"type": "string", "enum": labels},
			"score": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		},
		"required":             []string{"label", "score"},
		"additionalProperties": false,
	}
}

// Labels returns the allowed labels.
func (c *Classifier) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Classify returns the top label for text. Blank text yields an absent label
// without calling the model.
func (c *Classifier) Classify(ctx context.Context, text string) (analysis.Label, error) {
	if strings.TrimSpace(text) == "" {
		return analysis.Label{}, nil
	}
	system, err := c.prompts.Render(prompts.ClassifySystem, map[string]any{
		"Task":   c.task,
		"Labels": strings.Join(c.labels, ", "),
	})
	if err != nil {
		return analysis.Label{}, err
	}
	raw, err := ChatStructured(ctx, c.client, newChat(c.model, system, text), c.schema)
	if err != nil {
		return analysis.Label{}, fmt.Errorf("%s %s: %w", c.client.Name(), c.task, err)
	}

	var out struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return analysis.Label{}, fmt.Errorf("%s %s: decode: %w", c.client.Name(), c.task, err)
	}
	return analysis.NewLabel(out.Label, out.Score), nil
}

var spellcheckSchema = mustSchema("spellcheck", json.RawMessage(`{
	"type": "object",
	"properties": {
		"unknown": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["unknown"],
	"additionalProperties": false
}`))

// SpellChecker is a SpellChecker capability backed by an LLM.
type SpellChecker struct {
	client  LLMClient
	model   string
	prompts *prompts.Resolver
}

// NewSpellChecker creates a SpellChecker.
func NewSpellChecker(client LLMClient, model string, opts ...CapabilityOption) *SpellChecker {
	return &SpellChecker{client: client, model: model, prompts: buildOptions(opts).prompts}
}

// Unknown returns the tokens the model flags. Only tokens present in the
// input are returned.
func (s *SpellChecker) Unknown(ctx context.Context, tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tokens: %w", err)
	}
	system, err := s.prompts.Render(prompts.SpellcheckSystem, nil)
	if err != nil {
		return nil, err
	}
	raw, err := ChatStructured(ctx, s.client, newChat(s.model, system, string(payload)), spellcheckSchema)
	if err != nil {
		return nil, fmt.Errorf("%s spellcheck: %w", s.client.Name(), err)
	}

	var out struct {
		Unknown []string `json:"unknown"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%s spellcheck: decode: %w", s.client.Name(), err)
	}

	present := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		present[t] = struct{}{}
	}
	unknown := make([]string, 0, len(out.Unknown))
	for _, u := range out.Unknown {
		if _, ok := present[u]; ok {
			unknown = append(unknown, u)
		}
	}
	return unknown, nil
}

var (
	_ analysis.Classifier   = (*Classifier)(nil)
	_ analysis.SpellChecker = (*SpellChecker)(nil)
)
