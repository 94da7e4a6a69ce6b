package svcctx

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackzampolin/cornell/internal/analysis"
	"github.com/jackzampolin/cornell/internal/config"
	"github.com/jackzampolin/cornell/internal/metrics"
	"github.com/jackzampolin/cornell/internal/notes"
	"github.com/jackzampolin/cornell/internal/providers"
	"github.com/jackzampolin/cornell/internal/sentences"
	"github.com/jackzampolin/cornell/internal/summarize"
)

func (s *Services) config() *config.Config {
	if s.Config == nil {
		return config.DefaultConfig()
	}
	return s.Config.Get()
}

// llm resolves a provider by name and instruments it.
func (s *Services) llm(capability, name string) (providers.LLMClient, error) {
	if s.Registry == nil {
		return nil, fmt.Errorf("%s: no provider registry", capability)
	}
	if !s.Registry.HasLLM(name) {
		if p, ok := s.config().GetLLMProvider(name); ok && !p.Enabled {
			return nil, fmt.Errorf("%s: provider %q is disabled in llm_providers", capability, name)
		}
		registered := "none"
		if names := s.Registry.ListLLM(); len(names) > 0 {
			registered = strings.Join(names, ", ")
		}
		return nil, fmt.Errorf("%s: provider %q is not available (registered: %s); is it enabled with an api_key?", capability, name, registered)
	}
	client, err := s.Registry.GetLLM(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", capability, err)
	}
	return metrics.InstrumentLLM(s.Metrics, client), nil
}

// SentenceSplitter returns the rule-based splitter.
func (s *Services) SentenceSplitter() notes.SentenceSplitter {
	return metrics.InstrumentSplitter(s.Metrics, sentences.New())
}

// Summarizer returns the configured summarizer.
func (s *Services) Summarizer() (notes.Summarizer, error) {
	name := s.config().Capabilities.Summarizer
	if name == "" || name == config.SummarizerExtractive {
		return metrics.InstrumentSummarizer(s.Metrics, summarize.NewExtractive()), nil
	}
	client, err := s.llm(notes.CapSummarizer, name)
	if err != nil {
		return nil, err
	}
	return metrics.InstrumentSummarizer(s.Metrics, providers.NewSummarizer(client, "", s.promptOpts()...)), nil
}

// SpellChecker returns the configured spell checker, or nil when spell
// checking is disabled.
//
// The dictionary checker reads capabilities.dictionary, then the home
// directory word list, then the built-in English word list.
func (s *Services) SpellChecker() (analysis.SpellChecker, error) {
	caps := s.config().Capabilities
	switch caps.SpellChecker {
	case "", config.CapabilityNone:
		return nil, nil
	case config.SpellCheckerDictionary:
		path := caps.Dictionary
		if path == "" && s.Home != nil && s.Home.DictionaryExists() {
			path = s.Home.DictionaryPath()
		}
		if path == "" {
			s.logger().Debug("using built-in English dictionary")
			return metrics.InstrumentSpellChecker(s.Metrics, analysis.English()), nil
		}
		dict, err := analysis.LoadDictionary(path)
		if err != nil {
			return nil, err
		}
		s.logger().Debug("loaded dictionary", "path", path, "words", dict.Len())
		return metrics.InstrumentSpellChecker(s.Metrics, dict), nil
	default:
		client, err := s.llm(notes.CapSpellChecker, caps.SpellChecker)
		if err != nil {
			return nil, err
		}
		return metrics.InstrumentSpellChecker(s.Metrics, providers.NewSpellChecker(client, "", s.promptOpts()...)), nil
	}
}

// Sentiment returns the configured sentiment classifier, or Unconfigured.
func (s *Services) Sentiment() (analysis.Classifier, error) {
	name := s.config().Capabilities.Sentiment
	if name == "" || name == config.CapabilityNone {
		return analysis.Unconfigured{}, nil
	}
	client, err := s.llm(notes.CapSentiment, name)
	if err != nil {
		return nil, err
	}
	return metrics.InstrumentClassifier(s.Metrics, notes.CapSentiment, providers.NewSentimentClassifier(client, "", s.promptOpts()...)), nil
}

// Classification returns the configured topic classifier, or Unconfigured.
func (s *Services) Classification() (analysis.Classifier, error) {
	caps := s.config().Capabilities
	if caps.Classification == "" || caps.Classification == config.CapabilityNone {
		return analysis.Unconfigured{}, nil
	}
	client, err := s.llm(notes.CapClassification, caps.Classification)
	if err != nil {
		return nil, err
	}
	c, err := providers.NewClassifier(client, "", "topic classification", caps.ClassificationLabels, s.promptOpts()...)
	if err != nil {
		return nil, err
	}
	return metrics.InstrumentClassifier(s.Metrics, notes.CapClassification, c), nil
}

// Analyzer builds the text analyzer from the configured capabilities.
func (s *Services) Analyzer() (*analysis.Analyzer, error) {
	spell, err := s.SpellChecker()
	if err != nil {
		return nil, err
	}
	sentiment, err := s.Sentiment()
	if err != nil {
		return nil, err
	}
	classification, err := s.Classification()
	if err != nil {
		return nil, err
	}
	return analysis.New(spell,
		analysis.WithSentiment(sentiment),
		analysis.WithClassification(classification),
	), nil
}

// Synthesizer builds the note synthesizer. A positive concurrency overrides
// notes.concurrency.
func (s *Services) Synthesizer(concurrency int) (*notes.Synthesizer, error) {
	cfg := s.config()
	summarizer, err := s.Summarizer()
	if err != nil {
		return nil, err
	}
	analyzer, err := s.Analyzer()
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = cfg.Notes.Concurrency
	}
	return notes.New(s.SentenceSplitter(), summarizer, analyzer,
		notes.WithLogger(s.logger()),
		notes.WithConcurrency(concurrency),
		notes.WithLengths(cfg.Notes.Heading, cfg.Notes.Paragraph, cfg.Notes.Document),
	), nil
}

func (s *Services) promptOpts() []providers.CapabilityOption {
	if s.Prompts == nil {
		return nil
	}
	return []providers.CapabilityOption{providers.WithPrompts(s.Prompts)}
}

func (s *Services) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
