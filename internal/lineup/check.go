package lineup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

// MismatchError reports stack keys that exist on only one side: in the
// README headers or on disk. Both lists are sorted.
type MismatchError struct {
	// DocumentOnly holds keys declared in the README with no services on disk.
	DocumentOnly []string

	// DiskOnly holds keys with services on disk but no README header.
	DiskOnly []string
}

// Error implements the error interface for MismatchError.
func (e *MismatchError) Error() string {
	var parts []string
	if len(e.DocumentOnly) > 0 {
		parts = append(parts, "in README but missing compose files or services: "+strings.Join(e.DocumentOnly, ", "))
	}
	if len(e.DiskOnly) > 0 {
		parts = append(parts, "with services but missing in README: "+strings.Join(e.DiskOnly, ", "))
	}
	return "stack mismatch: " + strings.Join(parts, "; ")
}

// Remediation returns one line per unmatched key telling the user how to
// fix it. expectedPath maps a README-only key to the compose file path
// that should exist for it.
func (e *MismatchError) Remediation(expectedPath func(key string) string) []string {
	var lines []string
	for _, key := range e.DocumentOnly {
		lines = append(lines, fmt.Sprintf("%s: create %s or remove its '###' header from the README", key, expectedPath(key)))
	}
	for _, key := range e.DiskOnly {
		lines = append(lines, fmt.Sprintf("%s: add a section like '### %s' to the README", key, Capitalize(key)))
	}
	return lines
}

// CheckConsistency compares the stacks found on disk with the stacks
// declared in the README. Only stacks with at least one service count as
// present on disk. The two key sets must be equal; otherwise a
// *MismatchError describes both differences.
func CheckConsistency(disk map[string][]model.Service, headers []model.HeaderEntry) error {
	declared := make(map[string]bool, len(headers))
	for _, h := range headers {
		declared[h.Key] = true
	}

	present := make(map[string]bool, len(disk))
	for key, services := range disk {
		if len(services) > 0 {
			present[key] = true
		}
	}

	mismatch := &MismatchError{}
	for key := range declared {
		if !present[key] {
			mismatch.DocumentOnly = append(mismatch.DocumentOnly, key)
		}
	}
	for key := range present {
		if !declared[key] {
			mismatch.DiskOnly = append(mismatch.DiskOnly, key)
		}
	}

	if len(mismatch.DocumentOnly) == 0 && len(mismatch.DiskOnly) == 0 {
		return nil
	}

	sort.Strings(mismatch.DocumentOnly)
	sort.Strings(mismatch.DiskOnly)
	return mismatch
}
