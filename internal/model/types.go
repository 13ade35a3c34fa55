// Package model defines the domain types for the lineup CLI.
//
// All entities in this package are transient: services are parsed from
// compose files, header entries are read from the README, and both are
// thrown away once the regenerated section has been written.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Service is one deployable unit declared in a compose file.
//
// Services are created by the compose parser and are never mutated
// afterwards. The renderer only reads Name and Description; URL is carried
// along for the list command and JSON output.
type Service struct {
	// Name is the compose service key. Unique within its stack.
	Name string `json:"name"`

	// Description comes from the homepage.description label or from the
	// comment line directly above the service declaration. May be empty.
	Description string `json:"description,omitempty"`

	// URL is the https URL derived from a traefik Host() routing rule.
	// Empty when the service has no routing rule.
	URL string `json:"url,omitempty"`
}

// HasURL reports whether a routable URL was found for the service.
func (s Service) HasURL() bool {
	return s.URL != ""
}

// SortServices orders services by name, case-insensitively. Names that
// differ only in case are ordered by their raw byte value so the result
// is fully deterministic.
func SortServices(services []Service) {
	sort.SliceStable(services, func(i, j int) bool {
		a, b := strings.ToLower(services[i].Name), strings.ToLower(services[j].Name)
		if a != b {
			return a < b
		}
		return services[i].Name < services[j].Name
	})
}

// Stack is a named group of services: one compose file on disk and one
// "###" subsection in the README.
type Stack struct {
	// Key is the normalized identifier shared by the directory name and
	// the README heading (e.g., "media").
	Key string `json:"key"`

	// DisplayName is the heading text as written in the README
	// (e.g., "🎬 Media"). Empty for stacks that exist only on disk.
	DisplayName string `json:"displayName,omitempty"`

	// Services holds the stack's services sorted by name.
	Services []Service `json:"services"`
}

// HeaderEntry is one "###" subheading inside the lineup section.
// The order of entries in the README is the render order.
type HeaderEntry struct {
	// DisplayName is the heading text after "### ", trimmed.
	DisplayName string `json:"displayName"`

	// Key is the stack key derived from DisplayName.
	Key string `json:"key"`
}

// String returns "DisplayName (key)" for log and error output.
func (h HeaderEntry) String() string {
	return fmt.Sprintf("%s (%s)", h.DisplayName, h.Key)
}

// Enhancement is a hyperlink a person wrapped around a service name in
// the README. Enhancements are recomputed on every run from the previous
// section text and re-applied to the freshly rendered one.
type Enhancement struct {
	// Key is the label lowercased with spaces, hyphens and underscores removed.
	Key string `json:"key"`

	// Label is the link text as it appeared in the README, without any
	// surrounding bold markers.
	Label string `json:"label"`

	// URL is the link target, preserved verbatim.
	URL string `json:"url"`
}

// ExitCode defines the process exit codes of the CLI.
// Every failure maps to ExitGeneralError so scripts only need to test
// for a non-zero status.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates any failure: missing README, missing
	// section or headers, stack mismatch, or an I/O error.
	ExitGeneralError ExitCode = 1
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// Synonym collapses several stack-name spellings into one canonical key,
// e.g. "apps" and "applications" into "app".
//
// Entries beyond the built-in table come from .lineup.jsonc.
type Synonym struct {
	// Key is the canonical stack key. It must already be normalized.
	Key string `json:"key"`

	// Aliases are the normalized names that map to Key.
	Aliases []string `json:"aliases"`

	// Contains switches matching from exact equality to substring
	// containment, so "root-stack" and "my-root" both map to "root".
	Contains bool `json:"contains,omitempty"`
}
