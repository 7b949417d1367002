package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/smartmark/internal/model"
)

type addOptions struct {
	title string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a bookmark",
		Long: `Add saves a bookmark. Without --title the page title is fetched.

Example:
  smartmark add go.dev
  smartmark add https://go.dev/doc --title "Go documentation"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "bookmark title (default: fetched from the page)")
	return cmd
}

func runAdd(cmd *cobra.Command, rootOpts *RootOptions, opts *addOptions, rawURL string) error {
	ctx := cmd.Context()
	b, err := openBackend(ctx, rootOpts, false)
	if err != nil {
		return err
	}
	defer b.Close()

	url := model.NormalizeURL(rawURL)
	title := opts.title
	if title == "" && url != "" {
		if fetched, ok := b.fetcher().FetchTitle(ctx, url); ok {
			title = fetched
		}
	}

	in, err := model.ValidateInput(title, url)
	if errors.Is(err, model.ErrEmptyTitle) {
		return fmt.Errorf("%w: no page title found, pass --title", err)
	}
	if err != nil {
		return err
	}

	reqCtx, cancel := b.requestContext(ctx)
	defer cancel()
	bm, err := b.store.Insert(reqCtx, in.Title, in.URL)
	if err != nil {
		return fmt.Errorf("add bookmark: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n  %s\n  id: %s\n", bm.Title, bm.URL, bm.ID)
	return nil
}
