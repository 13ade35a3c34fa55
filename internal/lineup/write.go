package lineup

import (
	"fmt"
	"os"

	"github.com/moby/sys/atomicwriter"
	"github.com/pmezard/go-difflib/difflib"
)

// WriteDocument replaces the file at path with data in one step. The
// content goes to a temporary file in the same directory which is then
// renamed over the original, so readers never see a half-written README.
// The existing file mode is kept.
func WriteDocument(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	if err := atomicwriter.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// UnifiedDiff returns a unified diff between the current and the
// regenerated document, or "" when they are equal.
func UnifiedDiff(name, before, after string) string {
	if before == after {
		return ""
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return fmt.Sprintf("(diff unavailable: %v)\n", err)
	}
	return out
}
