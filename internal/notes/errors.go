package notes

import (
	"errors"
	"fmt"

	"github.com/jackzampolin/cornell/internal/analysis"
)

// Capability names reported by CapabilityError.
const (
	CapSentenceSplitter = "sentence_splitter"
	CapSummarizer       = "summarizer"
	CapSpellChecker     = "spellchecker"
	CapSentiment        = "sentiment"
	CapClassification   = "classification"
)

// DocumentIndex is the section index reported for whole-document failures.
const DocumentIndex = -1

// ErrCapability is matched by every CapabilityError.
var ErrCapability = errors.New("capability failed")

// CapabilityError identifies the capability and section whose call failed.
type CapabilityError struct {
	Capability string
	Section    int // DocumentIndex for the whole-document pass
	Err        error
}

func (e *CapabilityError) Error() string {
	if e.Section == DocumentIndex {
		return fmt.Sprintf("%s failed for whole document: %v", e.Capability, e.Err)
	}
	return fmt.Sprintf("%s failed for section %d: %v", e.Capability, e.Section, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrCapability) true for any CapabilityError.
func (e *CapabilityError) Is(target error) bool {
	return target == ErrCapability
}

func capabilityErr(capability string, section int, err error) error {
	return &CapabilityError{Capability: capability, Section: section, Err: err}
}

// analysisErr maps an analyzer stage failure to the capability that failed.
func analysisErr(section int, err error) error {
	var stageErr *analysis.StageError
	if !errors.As(err, &stageErr) {
		return capabilityErr("analyzer", section, err)
	}
	capability := stageErr.Stage
	switch stageErr.Stage {
	case analysis.StageSpellcheck:
		capability = CapSpellChecker
	case analysis.StageSentiment:
		capability = CapSentiment
	case analysis.StageClassification:
		capability = CapClassification
	}
	return capabilityErr(capability, section, stageErr.Err)
}
