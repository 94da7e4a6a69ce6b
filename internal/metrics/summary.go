package metrics

import (
	"fmt"
	"sort"

	dto "github.com/prometheus/client_model/go"
)

// CapabilityStats aggregates calls to one capability.
type CapabilityStats struct {
	Capability   string  `json:"capability" yaml:"capability"`
	Calls        int     `json:"calls" yaml:"calls"`
	Errors       int     `json:"errors" yaml:"errors"`
	TotalSeconds float64 `json:"total_seconds" yaml:"total_seconds"`
}

// Summary is a snapshot of everything recorded so far.
type Summary struct {
	Documents        int               `json:"documents" yaml:"documents"`
	Pages            int               `json:"pages" yaml:"pages"`
	Capabilities     []CapabilityStats `json:"capabilities" yaml:"capabilities"`
	LLMCalls         int               `json:"llm_calls" yaml:"llm_calls"`
	PromptTokens     int               `json:"prompt_tokens" yaml:"prompt_tokens"`
	CompletionTokens int               `json:"completion_tokens" yaml:"completion_tokens"`
	TotalCostUSD     float64           `json:"total_cost_usd" yaml:"total_cost_usd"`
}

// Summary gathers the registry into a Summary.
func (r *Recorder) Summary() (*Summary, error) {
	if r == nil {
		return &Summary{}, nil
	}
	families, err := r.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	s := &Summary{}
	caps := make(map[string]*CapabilityStats)
	capStats := func(name string) *CapabilityStats {
		if c, ok := caps[name]; ok {
			return c
		}
		c := &CapabilityStats{Capability: name}
		caps[name] = c
		return c
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := labelMap(m)
			switch mf.GetName() {
			case "cornell_documents_total":
				s.Documents += int(m.GetCounter().GetValue())
			case "cornell_pages_total":
				s.Pages += int(m.GetCounter().GetValue())
			case "cornell_capability_calls_total":
				c := capStats(labels["capability"])
				n := int(m.GetCounter().GetValue())
				c.Calls += n
				if labels["outcome"] == OutcomeError {
					c.Errors += n
				}
			case "cornell_capability_duration_seconds":
				capStats(labels["capability"]).TotalSeconds += m.GetHistogram().GetSampleSum()
			case "cornell_llm_calls_total":
				s.LLMCalls += int(m.GetCounter().GetValue())
			case "cornell_llm_tokens_total":
				switch labels["kind"] {
				case "prompt":
					s.PromptTokens += int(m.GetCounter().GetValue())
				case "completion":
					s.CompletionTokens += int(m.GetCounter().GetValue())
				}
			case "cornell_llm_cost_usd_total":
				s.TotalCostUSD += m.GetCounter().GetValue()
			}
		}
	}

	s.Capabilities = make([]CapabilityStats, 0, len(caps))
	for _, c := range caps {
		s.Capabilities = append(s.Capabilities, *c)
	}
	sort.Slice(s.Capabilities, func(i, j int) bool {
		return s.Capabilities[i].Capability < s.Capabilities[j].Capability
	})
	return s, nil
}

func labelMap(m *dto.Metric) map[string]string {
	out := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}
