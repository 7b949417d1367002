package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/smartmark/internal/model"
	"github.com/nikbrunner/smartmark/internal/picker"
	"github.com/nikbrunner/smartmark/internal/search"
	"github.com/nikbrunner/smartmark/internal/tui"
)

// openURL and pick are seams for tests.
var (
	openURL = tui.OpenURL
	pick    = runPicker
)

// NewOpenCommand creates the open command.
func NewOpenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <query>",
		Short: "Fuzzy find a bookmark and open it",
		Long: `Open fuzzy matches query against bookmark titles. A single match opens
directly; several show a picker.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(cmd, rootOpts, strings.Join(args, " "))
		},
	}
}

func runOpen(cmd *cobra.Command, rootOpts *RootOptions, query string) error {
	b, err := openBackend(cmd.Context(), rootOpts, false)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := b.requestContext(cmd.Context())
	defer cancel()
	items, err := b.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list bookmarks: %w", err)
	}

	out := cmd.OutOrStdout()
	results := search.Fuzzy(items, query)
	if len(results) == 0 {
		fmt.Fprintf(out, "No bookmarks found for '%s'\n", query)
		return nil
	}

	selected := results[0].Bookmark
	if len(results) > 1 {
		var ok bool
		if selected, ok, err = pick(results, query); err != nil || !ok {
			return err
		}
	}

	fmt.Fprintf(out, "Opening: %s\n", selected.Title)
	return openURL(selected.URL)
}

func runPicker(results []search.Result, query string) (model.Bookmark, bool, error) {
	final, err := tea.NewProgram(picker.New(results, query)).Run()
	if err != nil {
		return model.Bookmark{}, false, fmt.Errorf("picker: %w", err)
	}
	p := final.(picker.Picker)
	if p.Cancelled() {
		return model.Bookmark{}, false, nil
	}
	b, ok := p.Selected()
	return b, ok, nil
}
