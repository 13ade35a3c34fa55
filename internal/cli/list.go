// list.go implements the "lineup list" command.
//
// The list command shows the services discovered in the compose tree,
// grouped by stack key, as a text table or JSON array depending on the
// --json flag. It does not need the README; use it to see what "update"
// would render.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/stack-lineup/internal/compose"
	"github.com/mmr-tortoise/stack-lineup/internal/lineup"
	"github.com/mmr-tortoise/stack-lineup/internal/model"
)

// NewListCommand creates the "list" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered stacks and services",
		Long: `List the stacks and services found in the compose tree.

Each service is shown with its stack, description and routed URL.

Examples:
  lineup list
  lineup list --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context())
		},
	}
}

// runList is the main logic function for the list command.
func runList(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Resolve the repository and load the configuration.
	env, err := newEnvironment(ctx, true)
	if err != nil {
		return err
	}

	// Step 2: Discover services with the configured layout and keyer.
	stacks, err := compose.Discover(env.root, env.cfg.Layout(), env.parser, env.keys, logger)
	if err != nil {
		return pipelineError(env.updater, err)
	}
	VerboseLog("Found %d stacks with %d services", len(stacks), compose.CountServices(stacks))

	// Step 3: Output results in the appropriate format.
	printListResult(BuildStacks(stacks))
	return nil
}

// BuildStacks converts a discovery result into model.Stack values sorted
// by key. The display name is the capitalized key.
func BuildStacks(stacks map[string][]model.Service) []model.Stack {
	out := make([]model.Stack, 0, len(stacks))
	for _, key := range compose.SortedKeys(stacks) {
		out = append(out, model.Stack{
			Key:         key,
			DisplayName: lineup.Capitalize(key),
			Services:    stacks[key],
		})
	}
	return out
}

// printListResult outputs the list of stacks in text or JSON format,
// depending on the global --json flag.
func printListResult(stacks []model.Stack) {
	if IsJSONOutput() {
		type resultJSON struct {
			Stacks []model.Stack `json:"stacks"`
		}
		// Use an empty slice instead of nil so the output shows [] instead
		// of null when nothing was found.
		result := resultJSON{Stacks: stacks}
		if result.Stacks == nil {
			result.Stacks = []model.Stack{}
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Print(FormatStackTable(stacks))
}

// FormatStackTable renders stacks as a text table with aligned columns.
//
// The table format is:
//
//	STACK      SERVICE         URL                     DESCRIPTION
//	media      plex            https://plex.DOMAIN     Stream your library
//	root       whoami          -                       Identity service
func FormatStackTable(stacks []model.Stack) string {
	total := 0
	for _, st := range stacks {
		total += len(st.Services)
	}
	if total == 0 {
		return "No services found.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %-15s %-30s %s\n", "STACK", "SERVICE", "URL", "DESCRIPTION")
	for _, st := range stacks {
		for _, svc := range st.Services {
			fmt.Fprintf(&b, "%-10s %-15s %-30s %s\n",
				st.Key, svc.Name, orDash(svc.URL), orDash(svc.Description))
		}
	}
	return b.String()
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// headerNames returns the display names of the README's stack headers.
func headerNames(headers []model.HeaderEntry) []string {
	names := make([]string, 0, len(headers))
	for _, h := range headers {
		names = append(names, h.DisplayName)
	}
	return names
}

// stackKeys returns the sorted keys of stacks that have services.
func stackKeys(stacks map[string][]model.Service) []string {
	return compose.SortedKeys(stacks)
}

// displayPath shortens path relative to the working directory when it is
// inside it.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
