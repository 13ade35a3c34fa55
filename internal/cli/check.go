// check.go implements the "lineup check" command.
//
// The check command runs only the read side of the pipeline: it reads the
// README's stack headers, collects services from the compose tree and
// verifies that both declare the same stacks. It never writes, which makes
// it suitable for CI and pre-commit hooks.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/stack-lineup/internal/lineup"
)

// NewCheckCommand creates the "check" cobra command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that the README and the compose tree declare the same stacks",
		Long: `Verify that every "###" stack header in the README has services on disk,
and that every stack with services has a header. Nothing is written.

Exits 1 on any mismatch.

Examples:
  lineup check
  lineup check --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context())
		},
	}
}

// checkResultJSON is the JSON output structure of the check command.
type checkResultJSON struct {
	Consistent   bool     `json:"consistent"`
	Headers      []string `json:"headers"`
	Stacks       []string `json:"stacks"`
	DocumentOnly []string `json:"documentOnly"`
	DiskOnly     []string `json:"diskOnly"`
}

// runCheck is the main logic function for the check command.
func runCheck(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Resolve the repository and wire the pipeline.
	env, err := newEnvironment(ctx, true)
	if err != nil {
		return err
	}

	// Step 2: Read both sides and compare them.
	result, err := env.updater.Check(ctx)

	var mismatch *lineup.MismatchError
	if err != nil && !errors.As(err, &mismatch) {
		return pipelineError(env.updater, err)
	}

	// Step 3: Output results. A mismatch is reported before the error.
	if IsJSONOutput() {
		out := checkResultJSON{
			Consistent:   mismatch == nil,
			Headers:      headerNames(result.Headers),
			Stacks:       stackKeys(result.Stacks),
			DocumentOnly: []string{},
			DiskOnly:     []string{},
		}
		if mismatch != nil {
			out.DocumentOnly = append(out.DocumentOnly, mismatch.DocumentOnly...)
			out.DiskOnly = append(out.DiskOnly, mismatch.DiskOnly...)
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
	}

	if mismatch != nil {
		return pipelineError(env.updater, err)
	}

	if !IsJSONOutput() {
		fmt.Printf("%s %d stacks and %d services are consistent with %s\n",
			okMark("✓"), len(result.Headers), result.ServiceCount(), displayPath(result.DocumentPath))
	}
	return nil
}
