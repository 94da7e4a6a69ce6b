// Package notes turns a document into Cornell Notes pages: one page per
// section with a main idea, supporting details, a review cue and an
// analysis, plus a summary and analysis of the whole document.
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jackzampolin/cornell/internal/analysis"
	"github.com/jackzampolin/cornell/internal/sections"
)

// NotAvailable fills page fields that could not be derived.
const NotAvailable = "N/A"

// ParagraphTitle is the title given to paragraph pages.
const ParagraphTitle = "Paragraph"

// SentenceSplitter splits text into sentences.
type SentenceSplitter interface {
	Split(ctx context.Context, text string) ([]string, error)
}

// Summarizer condenses text to between minLength and maxLength units.
// Behaviour on empty input is undefined; callers must not pass it.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error)
}

// Analyzer analyzes a span of text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (analysis.Analysis, error)
}

// Lengths bounds a summarizer call.
type Lengths struct {
	Max int `mapstructure:"max" yaml:"max"`
	Min int `mapstructure:"min" yaml:"min"`
}

// Default summary bounds per section kind and for the whole document.
var (
	DefaultHeadingLengths   = Lengths{Max: 150, Min: 30}
	DefaultParagraphLengths = Lengths{Max: 100, Min: 20}
	DefaultDocumentLengths  = Lengths{Max: 200, Min: 50}
)

// NotePage is one Cornell Notes page.
type NotePage struct {
	PageType          sections.Kind     `json:"page_type" yaml:"page_type"`
	Title             string            `json:"title" yaml:"title"`
	MainIdea          string            `json:"main_idea" yaml:"main_idea"`
	SupportingDetails string            `json:"supporting_details" yaml:"supporting_details"`
	Cues              string            `json:"cues" yaml:"cues"`
	Analysis          analysis.Analysis `json:"analysis" yaml:"analysis"`
}

// Result is the output of Synthesize.
type Result struct {
	Pages   []NotePage        `json:"pages" yaml:"pages"`
	Summary string            `json:"summary" yaml:"summary"`
	Overall analysis.Analysis `json:"overall" yaml:"overall"`
}

// Synthesizer builds notes from text using injected capabilities.
type Synthesizer struct {
	splitter    SentenceSplitter
	summarizer  Summarizer
	analyzer    Analyzer
	logger      *slog.Logger
	concurrency int
	heading     Lengths
	paragraph   Lengths
	document    Lengths
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConcurrency processes up to n sections at once. Page order always
// follows section order.
func WithConcurrency(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLengths overrides the summary bounds. Zero values keep the defaults.
func WithLengths(heading, paragraph, document Lengths) Option {
	return func(s *Synthesizer) {
		if heading != (Lengths{}) {
			s.heading = heading
		}
		if paragraph != (Lengths{}) {
			s.paragraph = paragraph
		}
		if document != (Lengths{}) {
			s.document = document
		}
	}
}

// New creates a Synthesizer.
func New(splitter SentenceSplitter, summarizer Summarizer, analyzer Analyzer, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		splitter:    splitter,
		summarizer:  summarizer,
		analyzer:    analyzer,
		logger:      slog.Default(),
		concurrency: 1,
		heading:     DefaultHeadingLengths,
		paragraph:   DefaultParagraphLengths,
		document:    DefaultDocumentLengths,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize splits text into sections and builds one page per section,
// then summarizes and analyzes the whole document.
//
// Any capability failure aborts the run and is returned as a
// *CapabilityError; no partial result is returned.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*Result, error) {
	secs := sections.Split(text)
	s.logger.Debug("split document", "sections", len(secs))

	pages, err := s.pages(ctx, secs)
	if err != nil {
		return nil, err
	}

	contents := make([]string, len(secs))
	for i, sec := range secs {
		contents[i] = sec.Content
	}
	all := strings.Join(contents, " ")

	summary := NotAvailable
	if strings.TrimSpace(all) != "" {
		summary, err = s.summarizer.Summarize(ctx, all, s.document.Max, s.document.Min)
		if err != nil {
			return nil, capabilityErr(CapSummarizer, DocumentIndex, err)
		}
	}

	overall, err := s.analyzer.Analyze(ctx, all)
	if err != nil {
		return nil, analysisErr(DocumentIndex, err)
	}

	return &Result{Pages: pages, Summary: summary, Overall: overall}, nil
}

func (s *Synthesizer) pages(ctx context.Context, secs []sections.Section) ([]NotePage, error) {
	pages := make([]NotePage, len(secs))

	if s.concurrency <= 1 {
		for i, sec := range secs {
			page, err := s.Page(ctx, i, sec)
			if err != nil {
				return nil, err
			}
			pages[i] = page
		}
		return pages, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, sec := range secs {
		g.Go(func() error {
			page, err := s.Page(gctx, i, sec)
			if err != nil {
				return err
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// Page builds the note page for the section at index.
func (s *Synthesizer) Page(ctx context.Context, index int, sec sections.Section) (NotePage, error) {
	page := NotePage{
		PageType:          sec.Kind,
		Title:             ParagraphTitle,
		MainIdea:          NotAvailable,
		SupportingDetails: NotAvailable,
		Cues:              "What are the key points?",
	}
	lengths := s.paragraph
	if sec.Kind == sections.Heading {
		page.Title = sec.Title
		page.Cues = fmt.Sprintf("What is the main idea of '%s'?", sec.Title)
		lengths = s.heading
	}

	if strings.TrimSpace(sec.Content) != "" {
		mainIdea, details, err := s.ideas(ctx, index, sec.Content, lengths)
		if err != nil {
			return NotePage{}, err
		}
		page.MainIdea = mainIdea
		page.SupportingDetails = details
	}

	a, err := s.analyzer.Analyze(ctx, sec.Content)
	if err != nil {
		return NotePage{}, analysisErr(index, err)
	}
	page.Analysis = a

	s.logger.Debug("built note page", "section", index, "type", sec.Kind.String(), "title", page.Title)
	return page, nil
}

// ideas derives the main idea from the summary and keeps every other
// sentence of the content as supporting detail.
func (s *Synthesizer) ideas(ctx context.Context, index int, content string, lengths Lengths) (string, string, error) {
	sents, err := s.splitter.Split(ctx, content)
	if err != nil {
		return "", "", capabilityErr(CapSentenceSplitter, index, err)
	}

	summary, err := s.summarizer.Summarize(ctx, content, lengths.Max, lengths.Min)
	if err != nil {
		return "", "", capabilityErr(CapSummarizer, index, err)
	}

	var summarySents []string
	if strings.TrimSpace(summary) != "" {
		summarySents, err = s.splitter.Split(ctx, summary)
		if err != nil {
			return "", "", capabilityErr(CapSentenceSplitter, index, err)
		}
	}

	mainIdea := NotAvailable
	switch {
	case len(summarySents) > 0:
		mainIdea = summarySents[0]
	case len(sents) > 0:
		mainIdea = sents[0]
	}

	if len(sents) == 0 {
		return mainIdea, NotAvailable, nil
	}
	details := make([]string, 0, len(sents))
	for _, sent := range sents {
		if sent != mainIdea {
			details = append(details, sent)
		}
	}
	return mainIdea, strings.Join(details, " "), nil
}
