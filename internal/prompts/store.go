package prompts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// validKeyPattern matches valid prompt keys (alphanumeric with dots, underscores).
var validKeyPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._]*$`)

// fileExt is the extension of prompt files.
const fileExt = ".tmpl"

// Store reads and writes prompt overrides as {dir}/{key}.tmpl files.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on the
// first Put.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the override directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the override file path for key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// Get returns the override text for key and its path.
// Returns ok=false if no override exists.
func (s *Store) Get(key string) (text string, path string, ok bool, err error) {
	if !validKeyPattern.MatchString(key) {
		return "", "", false, fmt.Errorf("invalid prompt key: %s", key)
	}
	path = s.Path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", path, false, nil
	}
	if err != nil {
		return "", path, false, fmt.Errorf("failed to read prompt override %s: %w", path, err)
	}
	return string(data), path, true, nil
}

// Put writes an override for key.
func (s *Store) Put(key, text string) error {
	if !validKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid prompt key: %s", key)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create prompts directory: %w", err)
	}
	if err := os.WriteFile(s.Path(key), []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write prompt override: %w", err)
	}
	return nil
}

// Delete removes the override for key. Missing overrides are not an error.
func (s *Store) Delete(key string) error {
	if !validKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid prompt key: %s", key)
	}
	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete prompt override: %w", err)
	}
	return nil
}

// List returns the keys that have overrides, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt overrides: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		key := strings.TrimSuffix(name, fileExt)
		if validKeyPattern.MatchString(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
