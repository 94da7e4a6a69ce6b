package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDirName is the default name for the cornell home directory.
	DefaultDirName = ".cornell"

	// NotesDirName is the subdirectory for saved notes.
	NotesDirName = "notes"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// DictionaryFileName is the default word list for the dictionary spell checker.
	DictionaryFileName = "dictionary.txt"

	// PromptsDirName is the subdirectory for prompt overrides.
	PromptsDirName = "prompts"
)

// Dir represents the cornell home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.cornell).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// DictionaryPath returns the path to the default word list.
func (d *Dir) DictionaryPath() string {
	return filepath.Join(d.path, DictionaryFileName)
}

// PromptsDir returns the directory for prompt overrides.
func (d *Dir) PromptsDir() string {
	return filepath.Join(d.path, PromptsDirName)
}

// NotesDir returns the directory for saved notes.
func (d *Dir) NotesDir() string {
	return filepath.Join(d.path, NotesDirName)
}

// NotesPath returns where notes for the named input are saved.
// The input's directory and extension are dropped.
func (d *Dir) NotesPath(input, format string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) || base == "-" {
		base = "stdin"
	}
	return filepath.Join(d.NotesDir(), base+"."+format)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	// Create notes directory (this also creates the parent)
	if err := os.MkdirAll(d.NotesDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create notes directory: %w", err)
	}
	return nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// DictionaryExists returns true if the default word list exists.
func (d *Dir) DictionaryExists() bool {
	_, err := os.Stat(d.DictionaryPath())
	return err == nil
}
