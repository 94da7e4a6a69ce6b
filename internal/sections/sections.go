// Package sections partitions raw text into typed heading and paragraph blocks.
package sections

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the type of a section.
type Kind int

const (
	// Paragraph is a blank-line-delimited block of body text.
	Paragraph Kind = iota
	// Heading is a block introduced by an underlined title line.
	Heading
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Heading:
		return "heading"
	case Paragraph:
		return "paragraph"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "heading":
		*k = Heading
	case "paragraph":
		*k = Paragraph
	default:
		return fmt.Errorf("unknown section kind: %q", string(b))
	}
	return nil
}

// Section is one typed block of a document, in document order.
type Section struct {
	Kind    Kind   `json:"type" yaml:"type"`
	Title   string `json:"title,omitempty" yaml:"title,omitempty"` // Heading only
	Marker  string `json:"-" yaml:"-"`                             // title line + underline, Heading only
	Content string `json:"content" yaml:"content"`
}

// Text reconstructs the source form of the section.
// Split(s.Text()) yields s again for a heading section.
func (s Section) Text() string {
	if s.Kind == Heading {
		if s.Content == "" {
			return s.Marker
		}
		return s.Marker + "\n" + s.Content
	}
	return s.Content
}

// markerPattern matches a title line made of word characters followed by
// an underline of three or more '=' or '-' characters.
var markerPattern = regexp.MustCompile(`(?m)^[ \t]*(\w[\w \t]*?)[ \t]*\n[ \t]*[=-]{3,}[ \t]*$`)

// blankLinePattern separates paragraphs.
var blankLinePattern = regexp.MustCompile(`\n\s*\n`)

// Split partitions text into sections in order of first appearance.
//
// Text before the first heading marker is split into paragraphs on blank
// lines. A heading owns the first block that follows its marker; further
// blocks up to the next marker become paragraphs.
func Split(text string) []Section {
	text = normalizeNewlines(text)

	var out []Section
	markers := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(markers) == 0 {
		return appendParagraphs(out, text)
	}

	out = appendParagraphs(out, text[:markers[0][0]])
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}

		marker := strings.TrimSpace(text[m[0]:m[1]])
		title := strings.TrimSpace(text[m[2]:m[3]])
		content, rest := firstBlock(text[m[1]:end])

		out = append(out, Section{
			Kind:    Heading,
			Title:   title,
			Marker:  marker,
			Content: content,
		})
		out = appendParagraphs(out, rest)
	}
	return out
}

// firstBlock returns the first blank-line-delimited block of body (trimmed)
// and whatever follows it.
func firstBlock(body string) (string, string) {
	body = strings.TrimLeft(body, " \t\n")
	loc := blankLinePattern.FindStringIndex(body)
	if loc == nil {
		return strings.TrimSpace(body), ""
	}
	return strings.TrimSpace(body[:loc[0]]), body[loc[1]:]
}

func appendParagraphs(out []Section, text string) []Section {
	for _, chunk := range blankLinePattern.Split(text, -1) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		out = append(out, Section{Kind: Paragraph, Content: chunk})
	}
	return out
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
