package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SpellChecker returns the subset of tokens it does not recognize.
type SpellChecker interface {
	Unknown(ctx context.Context, tokens []string) ([]string, error)
}

// Classifier returns the top label and its score for a text.
type Classifier interface {
	Classify(ctx context.Context, text string) (Label, error)
}

// Unconfigured is the Classifier used when no model is configured.
// It always reports an absent label.
type Unconfigured struct{}

// Classify returns an absent label.
func (Unconfigured) Classify(context.Context, string) (Label, error) {
	return Label{}, nil
}

// Stage names reported by StageError.
const (
	StageSpellcheck     = "spellcheck"
	StageSentiment      = "sentiment"
	StageClassification = "classification"
)

// ErrStage is matched by every StageError.
var ErrStage = errors.New("analysis stage failed")

// StageError reports which analysis capability failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStage) true for any StageError.
func (e *StageError) Is(target error) bool {
	return target == ErrStage
}

// Analyzer runs the analysis capabilities over text.
// Capabilities are fixed at construction; an Analyzer is safe for
// concurrent use when its capabilities are.
type Analyzer struct {
	spell          SpellChecker
	sentiment      Classifier
	classification Classifier
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSentiment sets the sentiment classifier.
func WithSentiment(c Classifier) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.sentiment = c
		}
	}
}

// WithClassification sets the text classifier.
func WithClassification(c Classifier) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.classification = c
		}
	}
}

// New creates an Analyzer. Sentiment and classification default to
// Unconfigured.
func New(spell SpellChecker, opts ...Option) *Analyzer {
	a := &Analyzer{
		spell:          spell,
		sentiment:      Unconfigured{},
		classification: Unconfigured{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes the Analysis of text. Capability failures are returned
// as *StageError.
func (a *Analyzer) Analyze(ctx context.Context, text string) (Analysis, error) {
	intent, confidence := Heuristic(text)
	result := Analysis{
		SpellingMistakes: []string{},
		Intent:           intent,
		Confidence:       confidence,
	}

	// Tokens are passed exactly as whitespace splitting yields them, so
	// trailing punctuation stays attached.
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return result, nil
	}

	if a.spell != nil {
		unknown, err := a.spell.Unknown(ctx, tokens)
		if err != nil {
			return Analysis{}, &StageError{Stage: StageSpellcheck, Err: err}
		}
		result.SpellingMistakes = toSet(unknown)
	}

	sentiment, err := a.sentiment.Classify(ctx, text)
	if err != nil {
		return Analysis{}, &StageError{Stage: StageSentiment, Err: err}
	}
	result.Sentiment = sentiment

	classification, err := a.classification.Classify(ctx, text)
	if err != nil {
		return Analysis{}, &StageError{Stage: StageClassification, Err: err}
	}
	result.Classification = classification

	return result, nil
}

// Heuristic classifies intent by literal, case-sensitive phrase matching.
// Speculative phrases take priority over assertive ones.
func Heuristic(text string) (Intent, Confidence) {
	switch {
	case strings.Contains(text, "I think") || strings.Contains(text, "I believe"):
		return Speculative, Low
	case strings.Contains(text, "It is clear that") || strings.Contains(text, "The evidence shows"):
		return Assertive, High
	default:
		return Informative, Medium
	}
}

func toSet(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
