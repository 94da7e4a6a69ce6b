// Package metrics records capability and LLM usage to a Prometheus registry
// that can be exported in text exposition format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jackzampolin/cornell/internal/providers"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Recorder handles recording metrics. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	capabilityCalls    *prometheus.CounterVec
	capabilityDuration *prometheus.HistogramVec

	llmCalls  *prometheus.CounterVec
	llmTokens *prometheus.CounterVec
	llmCost   *prometheus.CounterVec

	documents prometheus.Counter
	pages     *prometheus.CounterVec
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,

		capabilityCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cornell_capability_calls_total",
				Help: "Total number of capability calls",
			},
			[]string{"capability", "outcome"},
		),
		capabilityDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cornell_capability_duration_seconds",
				Help:    "Capability call duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"capability"},
		),

		llmCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cornell_llm_calls_total",
				Help: "Total number of LLM chat requests",
			},
			[]string{"provider", "outcome"},
		),
		llmTokens: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cornell_llm_tokens_total",
				Help: "Total number of LLM tokens",
			},
			[]string{"provider", "model", "kind"},
		),
		llmCost: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cornell_llm_cost_usd_total",
				Help: "Total LLM cost in USD",
			},
			[]string{"provider", "model"},
		),

		documents: f.NewCounter(
			prometheus.CounterOpts{
				Name: "cornell_documents_total",
				Help: "Total number of documents turned into notes",
			},
		),
		pages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cornell_pages_total",
				Help: "Total number of note pages generated",
			},
			[]string{"type"},
		),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordCapability records one capability call.
func (r *Recorder) RecordCapability(capability string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.capabilityCalls.WithLabelValues(capability, outcome(err)).Inc()
	r.capabilityDuration.WithLabelValues(capability).Observe(duration.Seconds())
}

// RecordLLMCall records metrics from an LLM chat result.
func (r *Recorder) RecordLLMCall(provider string, result *providers.ChatResult, err error) {
	if r == nil {
		return
	}
	r.llmCalls.WithLabelValues(provider, outcome(err)).Inc()
	if result == nil {
		return
	}
	model := result.Model
	r.llmTokens.WithLabelValues(provider, model, "prompt").Add(float64(result.PromptTokens))
	r.llmTokens.WithLabelValues(provider, model, "completion").Add(float64(result.CompletionTokens))
	if result.CostUSD > 0 {
		r.llmCost.WithLabelValues(provider, model).Add(result.CostUSD)
	}
}

// RecordPage records one generated page of the given type.
func (r *Recorder) RecordPage(pageType string) {
	if r == nil {
		return
	}
	r.pages.WithLabelValues(pageType).Inc()
}

// RecordDocument records one completed document.
func (r *Recorder) RecordDocument() {
	if r == nil {
		return
	}
	r.documents.Inc()
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
