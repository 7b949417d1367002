package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/smartmark/internal/culler"
	"github.com/nikbrunner/smartmark/internal/logger"
)

type checkOptions struct {
	prune       bool
	concurrency int
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:           "check",
		Short:         "Find bookmarks whose links are dead",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.prune, "prune", false, "delete bookmarks that are dead")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", 0, "parallel requests (default from config)")
	return cmd
}

func runCheck(cmd *cobra.Command, rootOpts *RootOptions, opts *checkOptions) error {
	b, err := openBackend(cmd.Context(), rootOpts, false)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := b.requestContext(cmd.Context())
	items, err := b.store.ListAll(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("list bookmarks: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No bookmarks yet.")
		return nil
	}

	concurrency := opts.concurrency
	if concurrency <= 0 {
		concurrency = b.cfg.Check.Concurrency
	}
	results := culler.Check(cmd.Context(), items, culler.Options{
		Concurrency: concurrency,
		Timeout:     b.cfg.Check.Timeout,
		Private:     b.cfg.Check.PrivateDomains,
	})

	healthy := printCheck(out, results)
	dead := culler.DeadBookmarks(results)
	fmt.Fprintf(out, "%d healthy, %d dead, %d unreachable\n", healthy, len(dead), len(results)-healthy-len(dead))

	if !opts.prune {
		return nil
	}
	for _, bm := range dead {
		ctx, cancel := b.requestContext(cmd.Context())
		err := b.store.Delete(ctx, bm.ID)
		cancel()
		if err != nil {
			return fmt.Errorf("delete %s: %w", bm.ID, err)
		}
		b.log.Info("pruned dead bookmark", logger.String("id", bm.ID), logger.String("url", bm.URL))
	}
	if len(dead) > 0 {
		fmt.Fprintf(out, "Deleted %d dead bookmarks\n", len(dead))
	}
	return nil
}

// printCheck lists the problem links and returns the healthy count.
func printCheck(w io.Writer, results []culler.Result) int {
	healthy := 0
	for _, r := range results {
		switch r.Status {
		case culler.Healthy:
			healthy++
		case culler.Dead:
			fmt.Fprintf(w, "dead         %s  %s (%d)\n", r.Bookmark.ID, r.Bookmark.DisplayURL(), r.StatusCode)
		default:
			fmt.Fprintf(w, "unreachable  %s  %s (%s)\n", r.Bookmark.ID, r.Bookmark.DisplayURL(), r.Reason)
		}
	}
	return healthy
}
