// Package config loads the optional .lineup.jsonc file that customizes
// where lineup looks for compose files and how it renders the README.
//
// The file is JSONC (JSON with comments and trailing commas), so this
// package uses github.com/tidwall/jsonc to strip comments before parsing
// with the standard encoding/json library. Every field is optional; a
// missing file yields the defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/stack-lineup/internal/compose"
	"github.com/mmr-tortoise/stack-lineup/internal/lineup"
	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

// FileName is the default config file name, looked up at the repository root.
const FileName = ".lineup.jsonc"

// DefaultDocument is the README path used when none is configured.
const DefaultDocument = "README.md"

// Config is the parsed content of .lineup.jsonc.
type Config struct {
	// Document is the README to regenerate, relative to the repository root.
	Document string `json:"document,omitempty"`

	// RootCompose is the repository-level compose file.
	RootCompose string `json:"rootCompose,omitempty"`

	// StacksDir holds one sub-directory per stack.
	StacksDir string `json:"stacksDir,omitempty"`

	// ComposeFiles are the file names tried inside each stack directory,
	// in priority order.
	ComposeFiles []string `json:"composeFiles,omitempty"`

	// Section is the text that identifies the lineup "## " heading.
	Section string `json:"section,omitempty"`

	// DomainPlaceholder replaces ${DOMAIN...} tokens in Host rules.
	DomainPlaceholder string `json:"domainPlaceholder,omitempty"`

	// Separator joins service entries within a stack paragraph.
	Separator string `json:"separator,omitempty"`

	// EmptyPlaceholder is rendered for a stack without services.
	EmptyPlaceholder string `json:"emptyPlaceholder,omitempty"`

	// Synonyms replaces the built-in synonym table when set.
	Synonyms []model.Synonym `json:"synonyms,omitempty"`

	// ExtraSynonyms is appended to the table in use.
	ExtraSynonyms []model.Synonym `json:"extraSynonyms,omitempty"`
}

// ValidationError represents a single invalid field in the config file.
type ValidationError struct {
	// Field is the JSON field path that failed validation (e.g., "synonyms[2].key").
	Field string

	// Message describes what's wrong with the field value.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation error: %s: %s", FileName, e.Field, e.Message)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	layout := compose.DefaultLayout()
	return &Config{
		Document:          DefaultDocument,
		RootCompose:       layout.RootCompose,
		StacksDir:         layout.StacksDir,
		ComposeFiles:      layout.ComposeFiles,
		Section:           lineup.DefaultSectionTitle,
		DomainPlaceholder: compose.DefaultDomainPlaceholder,
		Separator:         lineup.DefaultSeparator,
		EmptyPlaceholder:  lineup.DefaultEmptyPlaceholder,
	}
}

// Path returns the config path for a repository root when none is given.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

// Load reads the config file at path and overlays it on the defaults.
// A missing file is not an error: the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// Strip comments and trailing commas, then decode over the defaults so
	// that omitted fields keep their default values.
	if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields that would otherwise fail later with a less
// helpful message. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Document) == "" {
		errs = append(errs, &ValidationError{Field: "document", Message: "must not be empty"})
	}
	if strings.TrimSpace(c.Section) == "" {
		errs = append(errs, &ValidationError{Field: "section", Message: "must not be empty"})
	}
	if len(c.ComposeFiles) == 0 {
		errs = append(errs, &ValidationError{Field: "composeFiles", Message: "at least one file name is required"})
	}
	for i, name := range c.ComposeFiles {
		if name == "" || strings.ContainsAny(name, `/\`) {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("composeFiles[%d]", i),
				Message: fmt.Sprintf("%q must be a plain file name", name),
			})
		}
	}
	if filepath.IsAbs(c.StacksDir) {
		errs = append(errs, &ValidationError{Field: "stacksDir", Message: "must be relative to the repository root"})
	}

	if err := lineup.NewStackKeyer(c.SynonymTable()).Validate(); err != nil {
		errs = append(errs, &ValidationError{Field: "synonyms", Message: err.Error()})
	}

	return errors.Join(errs...)
}

// Layout returns the compose layout described by the config.
func (c *Config) Layout() compose.Layout {
	return compose.Layout{
		RootCompose:  c.RootCompose,
		StacksDir:    c.StacksDir,
		ComposeFiles: c.ComposeFiles,
	}
}

// SynonymTable returns the synonym table in effect: Synonyms when set,
// the built-in table otherwise, followed by ExtraSynonyms.
func (c *Config) SynonymTable() []model.Synonym {
	table := c.Synonyms
	if table == nil {
		table = lineup.DefaultSynonyms()
	}
	out := make([]model.Synonym, 0, len(table)+len(c.ExtraSynonyms))
	out = append(out, table...)
	return append(out, c.ExtraSynonyms...)
}
