// preview.go implements the "lineup preview" command.
//
// The preview command renders the section that "update" would write and
// shows it in the terminal as formatted Markdown via glamour. The README is
// not modified.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

// previewFlags holds the flag values for the preview command.
type previewFlags struct {
	// plain prints the raw Markdown instead of the styled rendering.
	plain bool

	// width is the word-wrap width of the styled rendering.
	width int
}

// NewPreviewCommand creates the "preview" cobra command.
func NewPreviewCommand() *cobra.Command {
	flags := &previewFlags{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the regenerated lineup section without writing it",
		Long: `Render the lineup section exactly as "update" would write it, including
preserved links, and display it as formatted Markdown.

The same checks as "update" apply: a stack mismatch is reported and
nothing is shown.

Examples:
  lineup preview
  lineup preview --plain > section.md`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.plain, "plain", false, "Print raw Markdown (implied when stdout is not a terminal)")
	cmd.Flags().IntVar(&flags.width, "width", 100, "Word-wrap width of the formatted output")

	return cmd
}

// runPreview is the main logic function for the preview command.
func runPreview(ctx context.Context, flags *previewFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Resolve the repository and wire the pipeline.
	env, err := newEnvironment(ctx, true)
	if err != nil {
		return err
	}

	// Step 2: Render the section in memory.
	section, err := env.updater.Preview(ctx)
	if err != nil {
		return pipelineError(env.updater, err)
	}

	// Step 3: Output the section.
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]string{"section": section}, "", "  ")
		fmt.Println(string(data))
		return nil
	}
	// Styled output only makes sense on a terminal; pipes get Markdown.
	if flags.plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Print(section)
		return nil
	}

	out, err := RenderMarkdown(section, flags.width)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to render preview", err)
	}
	fmt.Print(out)
	return nil
}

// RenderMarkdown formats Markdown for the terminal. The style follows the
// terminal background; a non-positive width disables wrapping.
func RenderMarkdown(markdown string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
