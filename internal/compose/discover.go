package compose

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

// RootStackKey is the stack key of the repository-level compose file.
const RootStackKey = "root"

// Layout describes where compose files live, relative to the repository root.
type Layout struct {
	// RootCompose is the compose file at the repository root.
	RootCompose string

	// StacksDir holds one sub-directory per stack.
	StacksDir string

	// ComposeFiles are the candidate file names inside a stack directory,
	// in priority order. The first one that exists is used.
	ComposeFiles []string
}

// DefaultLayout returns the conventional layout: compose.yaml at the root
// and stacks/<name>/compose.yaml for each stack.
func DefaultLayout() Layout {
	return Layout{
		RootCompose:  "compose.yaml",
		StacksDir:    "stacks",
		ComposeFiles: []string{"compose.yaml", "compose.yml", "docker-compose.yaml", "docker-compose.yml"},
	}
}

// KeyNormalizer derives a stack key from a directory name or heading.
type KeyNormalizer interface {
	Key(name string) string
}

// Discover collects the services of every stack under root.
//
// The root compose file becomes the "root" stack; each immediate
// sub-directory of the stacks directory becomes a stack whose key is the
// normalized directory name. Stacks without services are left out, so the
// returned keys are exactly the stacks that must appear in the README.
//
// A missing stacks directory is not an error. Two directories that
// normalize to the same key are merged.
func Discover(root string, layout Layout, parser *Parser, keys KeyNormalizer, logger *zap.Logger) (map[string][]model.Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	stacks := make(map[string][]model.Service)

	// Step 1: the root compose file.
	if layout.RootCompose != "" {
		if services := parser.ParseFile(filepath.Join(root, layout.RootCompose)); len(services) > 0 {
			stacks[RootStackKey] = services
		}
	}

	// Step 2: one compose file per stack directory.
	stacksDir := filepath.Join(root, layout.StacksDir)
	entries, err := os.ReadDir(stacksDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("stacks directory not found", zap.String("path", stacksDir))
			return stacks, nil
		}
		return nil, fmt.Errorf("failed to read stacks directory %s: %w", stacksDir, err)
	}

	// os.ReadDir already sorts by file name; the explicit sort documents
	// that merge order is deterministic.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		composePath := findComposeFile(filepath.Join(stacksDir, entry.Name()), layout.ComposeFiles)
		if composePath == "" {
			logger.Debug("no compose file in stack directory", zap.String("stack", entry.Name()))
			continue
		}

		services := parser.ParseFile(composePath)
		if len(services) == 0 {
			continue
		}

		key := keys.Key(entry.Name())
		if existing, ok := stacks[key]; ok {
			logger.Warn("merging stacks that share a key",
				zap.String("key", key), zap.String("directory", entry.Name()))
			services = append(existing, services...)
			model.SortServices(services)
		}
		stacks[key] = services
	}

	return stacks, nil
}

// findComposeFile returns the first candidate file that exists in dir.
func findComposeFile(dir string, candidates []string) string {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ExpectedPath returns where the compose file for a stack key is expected
// to live. It is used in remediation messages for README-only stacks.
func ExpectedPath(root string, layout Layout, key string) string {
	if key == RootStackKey {
		return filepath.Join(root, layout.RootCompose)
	}
	name := "compose.yaml"
	if len(layout.ComposeFiles) > 0 {
		name = layout.ComposeFiles[0]
	}
	return filepath.Join(root, layout.StacksDir, key, name)
}

// SortedKeys returns the stack keys of a discovery result in sorted order.
func SortedKeys(stacks map[string][]model.Service) []string {
	keys := make([]string, 0, len(stacks))
	for k := range stacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CountServices returns the total number of services across all stacks.
func CountServices(stacks map[string][]model.Service) int {
	n := 0
	for _, services := range stacks {
		n += len(services)
	}
	return n
}
