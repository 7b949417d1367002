package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/smartmark/internal/search"
)

type listOptions struct {
	json bool
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:           "list [query]",
		Aliases:       []string{"ls"},
		Short:         "List bookmarks, newest first",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, rootOpts, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "output as JSON")
	return cmd
}

func runList(cmd *cobra.Command, rootOpts *RootOptions, opts *listOptions, query string) error {
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

	p := search.Project(items, query)
	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p.Items)
	}
	printProjection(out, p)
	return nil
}

func printProjection(w io.Writer, p search.Projection) {
	switch p.EmptyState() {
	case search.NoBookmarks:
		fmt.Fprintln(w, "No bookmarks yet.")
		return
	case search.NoMatches:
		fmt.Fprintln(w, "No bookmarks match your search.")
		return
	}
	for _, bm := range p.Items {
		fmt.Fprintf(w, "%s  %s\n    %s · %s\n", bm.ID, bm.Title, bm.DisplayURL(), bm.AddedLabel())
	}
}
