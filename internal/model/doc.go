// Package model defines the domain types and value objects for the
// lineup CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (Service, Stack, HeaderEntry, Enhancement) are transient:
// they are rebuilt from the compose files and the README on every run and
// discarded once the document has been written.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
