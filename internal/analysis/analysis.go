// Package analysis computes spelling, sentiment, classification and a
// lexical intent/confidence heuristic for a span of text.
package analysis

import (
	"encoding/json"
	"fmt"
)

// NotAvailable is the display form of an absent label or score.
const NotAvailable = "N/A"

// Intent is the heuristic stance of a text.
type Intent int

const (
	Informative Intent = iota
	Speculative
	Assertive
)

// String returns the display name of the intent.
func (i Intent) String() string {
	switch i {
	case Speculative:
		return "Speculative"
	case Assertive:
		return "Assertive"
	default:
		return "Informative"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// Confidence is the heuristic confidence paired with an Intent.
type Confidence int

const (
	Medium Confidence = iota
	Low
	High
)

// String returns the display name of the confidence level.
func (c Confidence) String() string {
	switch c {
	case Low:
		return "Low"
	case High:
		return "High"
	default:
		return "Medium"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Label is a classifier's top label and score. The zero value is absent,
// which is what an unconfigured classifier reports.
type Label struct {
	name    string
	score   float64
	present bool
}

// NewLabel returns a present label.
func NewLabel(name string, score float64) Label {
	return Label{name: name, score: score, present: true}
}

// Name returns the label name and whether it is present.
func (l Label) Name() (string, bool) {
	return l.name, l.present
}

// Score returns the score and whether it is present.
func (l Label) Score() (float64, bool) {
	return l.score, l.present
}

// String renders "label (score)" or "N/A".
func (l Label) String() string {
	if !l.present {
		return NotAvailable
	}
	return fmt.Sprintf("%s (%.4f)", l.name, l.score)
}

// labelView is the boundary representation of a Label.
type labelView struct {
	Label      string `json:"label" yaml:"label"`
	Confidence any    `json:"confidence" yaml:"confidence"`
}

func (l Label) view() labelView {
	if !l.present {
		return labelView{Label: NotAvailable, Confidence: NotAvailable}
	}
	return labelView{Label: l.name, Confidence: l.score}
}

// MarshalJSON renders absent labels as "N/A"/"N/A".
func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.view())
}

// MarshalYAML renders absent labels as "N/A"/"N/A".
func (l Label) MarshalYAML() (any, error) {
	return l.view(), nil
}

// Analysis is the result of analyzing one span of text.
type Analysis struct {
	SpellingMistakes []string   `json:"spelling_mistakes" yaml:"spelling_mistakes"`
	Sentiment        Label      `json:"sentiment" yaml:"sentiment"`
	Classification   Label      `json:"classification" yaml:"classification"`
	Intent           Intent     `json:"intent" yaml:"intent"`
	Confidence       Confidence `json:"confidence" yaml:"confidence"`
}
