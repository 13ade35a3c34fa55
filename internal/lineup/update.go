package lineup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mmr-tortoise/stack-lineup/internal/compose"
	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

// ErrDocumentNotFound is returned when the target README does not exist.
var ErrDocumentNotFound = errors.New("document not found")

// Options configures an Updater.
type Options struct {
	// Root is the repository root. Relative paths are resolved against it.
	Root string

	// Document is the README path, relative to Root or absolute.
	Document string

	// SectionTitle identifies the lineup section's "## " heading.
	SectionTitle string

	// Layout locates the compose files.
	Layout compose.Layout

	// DryRun computes the new document and its diff without writing it.
	DryRun bool
}

// Result describes one run of the Updater.
type Result struct {
	// DocumentPath is the absolute README path.
	DocumentPath string

	// Headers are the stack headers declared in the README.
	Headers []model.HeaderEntry

	// Stacks are the services discovered on disk, by stack key.
	Stacks map[string][]model.Service

	// Section is the regenerated section, with manual links re-applied.
	Section string

	// Changed reports whether the regenerated document differs from the
	// current one.
	Changed bool

	// Written reports whether the document was written back.
	Written bool

	// Diff is the unified diff between the current and regenerated
	// document. Only set for dry runs.
	Diff string
}

// ServiceCount returns the total number of discovered services.
func (r *Result) ServiceCount() int {
	return compose.CountServices(r.Stacks)
}

// Updater regenerates the lineup section of a README.
type Updater struct {
	opts     Options
	parser   *compose.Parser
	keys     *StackKeyer
	renderer *Renderer
	logger   *zap.Logger
}

// NewUpdater wires an Updater from its parts. A nil logger is replaced by
// a no-op logger.
func NewUpdater(opts Options, parser *compose.Parser, keys *StackKeyer, renderer *Renderer, logger *zap.Logger) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SectionTitle == "" {
		opts.SectionTitle = DefaultSectionTitle
	}
	return &Updater{opts: opts, parser: parser, keys: keys, renderer: renderer, logger: logger}
}

// DocumentPath returns the absolute path of the target README.
func (u *Updater) DocumentPath() string {
	if filepath.IsAbs(u.opts.Document) {
		return u.opts.Document
	}
	return filepath.Join(u.opts.Root, u.opts.Document)
}

// ExpectedComposePath returns where the compose file for key should be.
func (u *Updater) ExpectedComposePath(key string) string {
	return compose.ExpectedPath(u.opts.Root, u.opts.Layout, key)
}

// snapshot is the state shared by Check and Run: what was read from the
// README and what was found on disk.
type snapshot struct {
	result *Result
	doc    string
	inv    *Inventory
}

// load reads the README and the compose tree and runs the consistency
// check. On a mismatch the snapshot is still returned alongside the error.
func (u *Updater) load(ctx context.Context) (*snapshot, error) {
	result := &Result{DocumentPath: u.DocumentPath()}

	// Step 1: read the README.
	data, err := os.ReadFile(result.DocumentPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, result.DocumentPath)
		}
		return nil, fmt.Errorf("failed to read %s: %w", result.DocumentPath, err)
	}
	doc := string(data)

	// Step 2: read the stack headers the README declares.
	inv, err := ParseInventory(doc, u.opts.SectionTitle, u.keys)
	if err != nil {
		return nil, err
	}
	result.Headers = inv.Headers
	u.logger.Debug("read stack headers", zap.Int("headers", len(inv.Headers)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 3: collect services from the compose tree.
	stacks, err := compose.Discover(u.opts.Root, u.opts.Layout, u.parser, u.keys, u.logger)
	if err != nil {
		return nil, err
	}
	result.Stacks = stacks

	snap := &snapshot{result: result, doc: doc, inv: inv}

	// Step 4: the README and the disk must agree on the set of stacks.
	if err := CheckConsistency(stacks, inv.Headers); err != nil {
		return snap, err
	}
	return snap, nil
}

// Check reads the README and the compose tree and verifies that both
// declare the same stacks. Nothing is rendered or written. On a mismatch
// the returned Result is still populated so callers can report details.
func (u *Updater) Check(ctx context.Context) (*Result, error) {
	snap, err := u.load(ctx)
	if snap == nil {
		return nil, err
	}
	return snap.result, err
}

// Run performs the full regeneration. The README is only written when
// every earlier step succeeded, the content changed, and DryRun is off.
func (u *Updater) Run(ctx context.Context) (*Result, error) {
	snap, err := u.load(ctx)
	if err != nil {
		if snap != nil {
			return snap.result, err
		}
		return nil, err
	}
	result, doc, inv := snap.result, snap.doc, snap.inv

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 5: render the new section.
	section := u.renderer.Render(inv, result.Stacks)

	// Step 6: carry manual links from the old section over to the new one
	// and splice the result into the document.
	section = PreserveEnhancements(doc[inv.Start:inv.End], section)
	section = withLineEnding(section, lineEnding(doc))
	updated := doc[:inv.Start] + section + doc[inv.End:]
	result.Section = section
	result.Changed = updated != doc

	if u.opts.DryRun {
		result.Diff = UnifiedDiff(filepath.Base(result.DocumentPath), doc, updated)
		return result, nil
	}

	if !result.Changed {
		u.logger.Debug("document already up to date")
		return result, nil
	}

	// Step 7: write the whole document back.
	if err := WriteDocument(result.DocumentPath, []byte(updated)); err != nil {
		return result, err
	}
	result.Written = true
	return result, nil
}

// Preview renders the section that Run would write, without touching the
// README. It fails under the same conditions as Run.
func (u *Updater) Preview(ctx context.Context) (string, error) {
	opts := u.opts
	opts.DryRun = true
	dry := &Updater{opts: opts, parser: u.parser, keys: u.keys, renderer: u.renderer, logger: u.logger}

	result, err := dry.Run(ctx)
	if err != nil {
		return "", err
	}
	return result.Section, nil
}
