// Package prompts provides prompt management with embedded defaults and
// file overrides.
//
// Embedded .tmpl files are the source of truth for defaults. A prompt can be
// customized by placing {key}.tmpl in the override directory
// ({home}/prompts).
//
// Resolution order:
//  1. Override file (if exists)
//  2. Embedded default
package prompts

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   `json:"key" yaml:"key"`                 // Hierarchical key: summarize.user
	Text        string   `json:"text" yaml:"text"`               // The prompt text (Go template)
	Description string   `json:"description" yaml:"description"` // Human-readable description
	Variables   []string `json:"variables" yaml:"variables"`     // Extracted template variables
	Hash        string   `json:"hash" yaml:"hash"`               // SHA256 hash of the text for change detection
}

// ResolvedPrompt is the result of resolving a prompt.
type ResolvedPrompt struct {
	Key        string   `json:"key" yaml:"key"`
	Text       string   `json:"text" yaml:"text"`
	Variables  []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	IsOverride bool     `json:"is_override" yaml:"is_override"`           // true if read from the override directory
	Source     string   `json:"source,omitempty" yaml:"source,omitempty"` // override file path
	Hash       string   `json:"hash" yaml:"hash"`
	// Modified is set when an override differs from the embedded default.
	Modified bool `json:"modified" yaml:"modified"`
}
