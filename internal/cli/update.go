// update.go implements the "lineup update" command.
//
// The update command runs the whole pipeline: read the README's stack
// headers, collect services from the compose tree, verify both sides
// declare the same stacks, render the section, carry over manual links and
// write the README back. With --dry-run the new README is only diffed.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/stack-lineup/internal/lineup"
	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

// updateFlags holds the flag values for the update command.
type updateFlags struct {
	// dryRun prints a unified diff instead of writing the README.
	dryRun bool
}

// NewUpdateCommand creates the "update" cobra command.
func NewUpdateCommand() *cobra.Command {
	flags := &updateFlags{}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Regenerate the lineup section of the README",
		Long: `Regenerate the "Stack/Service Lineup" section of the README from the
compose files.

The README is written only when every step succeeds and the content
changed. A stack mismatch between the README and the compose tree aborts
the update and lists how to fix each side.

Examples:
  lineup update
  lineup update --dry-run
  lineup --root ~/src/nexus update`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Show the changes as a diff without writing the README")

	return cmd
}

// runUpdate is the main logic function for the update command.
func runUpdate(ctx context.Context, flags *updateFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Resolve the repository and wire the pipeline.
	env, err := newEnvironment(ctx, flags.dryRun)
	if err != nil {
		return err
	}

	// Step 2: Run the pipeline. Nothing is written on failure.
	VerboseLog("Updating %s", env.updater.DocumentPath())
	result, err := env.updater.Run(ctx)
	if err != nil {
		return pipelineError(env.updater, err)
	}

	// Step 3: Output results.
	printUpdateResult(result, flags.dryRun)
	return nil
}

// pipelineError prints the remediation hints for a stack mismatch and
// wraps err into a CLIError.
func pipelineError(updater *lineup.Updater, err error) error {
	var mismatch *lineup.MismatchError
	if errors.As(err, &mismatch) && !IsJSONOutput() {
		fmt.Fprint(os.Stderr, FormatMismatch(mismatch, updater.ExpectedComposePath))
	}

	switch {
	case errors.Is(err, lineup.ErrDocumentNotFound):
		return model.WrapCLIError(model.ExitGeneralError, "README not found", err)
	case errors.Is(err, lineup.ErrSectionNotFound), errors.Is(err, lineup.ErrNoStackHeaders):
		return model.WrapCLIError(model.ExitGeneralError, "README is not set up for lineup", err)
	case mismatch != nil:
		return model.WrapCLIError(model.ExitGeneralError, "stack mismatch detected", err)
	default:
		return model.WrapCLIError(model.ExitGeneralError, "lineup failed", err)
	}
}

// FormatMismatch renders a stack mismatch as a human-readable block with
// one remediation line per stack.
//
// Example:
//
//	Stacks in README but missing compose files or services:
//	  - media (expected at: stacks/media/compose.yaml)
//
//	Stacks with services but missing in README:
//	  - core
//	    Add a section like '### Core' to the README
func FormatMismatch(mismatch *lineup.MismatchError, expectedPath func(string) string) string {
	var b strings.Builder

	if len(mismatch.DocumentOnly) > 0 {
		b.WriteString("Stacks in README but missing compose files or services:\n")
		for _, key := range mismatch.DocumentOnly {
			fmt.Fprintf(&b, "  - %s %s\n", key, dimText(fmt.Sprintf("(expected at: %s)", expectedPath(key))))
		}
	}

	if len(mismatch.DiskOnly) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Stacks with services but missing in README:\n")
		for _, key := range mismatch.DiskOnly {
			fmt.Fprintf(&b, "  - %s\n", key)
			fmt.Fprintf(&b, "    Add a section like '### %s' to the README\n", lineup.Capitalize(key))
		}
	}

	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

// updateResultJSON is the JSON output structure of the update command.
type updateResultJSON struct {
	Document string   `json:"document"`
	Services int      `json:"services"`
	Headers  []string `json:"headers"`
	Stacks   []string `json:"stacks"`
	Changed  bool     `json:"changed"`
	Written  bool     `json:"written"`
	Diff     string   `json:"diff,omitempty"`
}

// printUpdateResult outputs the result of an update in text or JSON format.
func printUpdateResult(result *lineup.Result, dryRun bool) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(updateResultJSON{
			Document: result.DocumentPath,
			Services: result.ServiceCount(),
			Headers:  headerNames(result.Headers),
			Stacks:   stackKeys(result.Stacks),
			Changed:  result.Changed,
			Written:  result.Written,
			Diff:     result.Diff,
		}, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Print(FormatUpdateSummary(result, dryRun))
	if dryRun && result.Diff != "" {
		fmt.Println()
		fmt.Print(result.Diff)
	}
}

// FormatUpdateSummary renders the text summary printed after an update.
//
// Example:
//
//	✓ Updated README.md with 12 services
//	  Stack headers from README: 🧩 Root, 🎬 Media
//	  Stacks with services: media, root
//	  Found 2 stacks:
//	    - media: 9 services
//	    - root: 3 services
func FormatUpdateSummary(result *lineup.Result, dryRun bool) string {
	var b strings.Builder
	name := displayPath(result.DocumentPath)
	count := result.ServiceCount()

	switch {
	case dryRun && result.Changed:
		fmt.Fprintf(&b, "%s %s would be updated with %d services (dry run)\n", warnText("~"), name, count)
	case !result.Changed:
		fmt.Fprintf(&b, "%s %s is up to date (%d services)\n", okMark("✓"), name, count)
	default:
		fmt.Fprintf(&b, "%s Updated %s with %d services\n", okMark("✓"), name, count)
	}

	fmt.Fprintf(&b, "  Stack headers from README: %s\n", strings.Join(headerNames(result.Headers), ", "))
	fmt.Fprintf(&b, "  Stacks with services: %s\n", strings.Join(stackKeys(result.Stacks), ", "))
	fmt.Fprintf(&b, "  Found %d stacks:\n", len(result.Stacks))
	for _, key := range stackKeys(result.Stacks) {
		fmt.Fprintf(&b, "    - %s: %d services\n", key, len(result.Stacks[key]))
	}
	return b.String()
}
