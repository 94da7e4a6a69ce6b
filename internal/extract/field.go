// Package extract pulls structured prescription and receipt records out of
// plain text using fixed patterns. Extraction never fails: a field whose
// pattern does not match is recorded as absent.
package extract

import (
	"encoding/json"
	"strings"
	"time"
)

// NotAvailable is the display form of an absent field.
const NotAvailable = "N/A"

// Field is an extracted value that may be absent.
// The zero value is absent.
type Field struct {
	value string
	ok    bool
}

// Found returns a present field holding v.
func Found(v string) Field {
	return Field{value: v, ok: true}
}

// Missing returns an absent field.
func Missing() Field {
	return Field{}
}

// Value returns the extracted value and whether it was present.
func (f Field) Value() (string, bool) {
	return f.value, f.ok
}

// OK reports whether the field was matched.
func (f Field) OK() bool {
	return f.ok
}

// String returns the value, or "N/A" when absent.
func (f Field) String() string {
	if !f.ok {
		return NotAvailable
	}
	return f.value
}

// MarshalJSON renders the display form.
func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// MarshalYAML renders the display form.
func (f Field) MarshalYAML() (any, error) {
	return f.String(), nil
}

// fieldFrom trims a submatch and treats an empty result as absent.
func fieldFrom(s string) Field {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing()
	}
	return Found(s)
}

// Clock supplies the current date for fields that default to today.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Today returns the current local time.
func (SystemClock) Today() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Today returns the fixed instant.
func (c FixedClock) Today() time.Time {
	return time.Time(c)
}

// DateLayout is the ISO calendar date layout used for extracted dates.
const DateLayout = "2006-01-02"
