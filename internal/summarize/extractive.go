// Package summarize provides an offline extractive summarizer that keeps
// the leading sentences of a text within a word budget.
package summarize

import (
	"context"
	"errors"
	"strings"

	"github.com/jackzampolin/cornell/internal/sentences"
)

// ErrEmptyInput is returned when asked to summarize blank text.
var ErrEmptyInput = errors.New("cannot summarize empty text")

// Extractive summarizes by taking whole leading sentences until the word
// budget is met. Lengths are measured in words.
type Extractive struct{}

// NewExtractive returns an Extractive summarizer.
func NewExtractive() Extractive {
	return Extractive{}
}

// Summarize returns the leading sentences of text totalling at least
// minLength words where the text allows, and at most maxLength words.
func (Extractive) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	if maxLength <= 0 {
		maxLength = len(strings.Fields(text))
	}
	if minLength > maxLength {
		minLength = maxLength
	}

	var picked []string
	words := 0
	for _, s := range sentences.Split(text) {
		if len(picked) > 0 && words >= minLength {
			break
		}
		fields := strings.Fields(s)
		if words+len(fields) > maxLength {
			// Fill the remaining budget with a prefix of this sentence.
			if rest := fields[:maxLength-words]; len(rest) > 0 {
				picked = append(picked, strings.Join(rest, " "))
			}
			break
		}
		picked = append(picked, s)
		words += len(fields)
	}
	return strings.Join(picked, " "), nil
}
