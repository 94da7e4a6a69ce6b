package analysis

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

//go:embed english.txt
var englishWords string

var (
	englishOnce sync.Once
	english     *Dictionary
)

// English returns the built-in English word list. The dictionary is parsed
// once and shared; it is never modified after loading.
func English() *Dictionary {
	englishOnce.Do(func() {
		d, err := ReadDictionary(strings.NewReader(englishWords))
		if err != nil {
			panic(fmt.Sprintf("analysis: built-in word list: %v", err))
		}
		english = d
	})
	return english
}

// Dictionary is a word-list SpellChecker. Lookups are case-insensitive;
// tokens are otherwise compared as given, so "mistakes." is unknown even
// when "mistakes" is listed.
type Dictionary struct {
	words map[string]struct{}
}

// NewDictionary builds a Dictionary from a list of words.
func NewDictionary(words []string) *Dictionary {
	d := &Dictionary{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		d.add(w)
	}
	return d
}

// LoadDictionary reads a word list with one word per line.
// Blank lines and lines starting with '#' are ignored.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	d, err := ReadDictionary(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary %s: %w", path, err)
	}
	return d, nil
}

// ReadDictionary reads a word list from r.
func ReadDictionary(r io.Reader) (*Dictionary, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewDictionary(words), nil
}

func (d *Dictionary) add(w string) {
	w = strings.ToLower(strings.TrimSpace(w))
	if w != "" {
		d.words[w] = struct{}{}
	}
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	return len(d.words)
}

// Contains reports whether word is known.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.words[strings.ToLower(word)]
	return ok
}

// Unknown returns the tokens not in the dictionary, preserving their
// original spelling.
func (d *Dictionary) Unknown(_ context.Context, tokens []string) ([]string, error) {
	var out []string
	for _, t := range tokens {
		if !d.Contains(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

var _ SpellChecker = (*Dictionary)(nil)
