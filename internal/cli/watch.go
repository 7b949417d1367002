package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/smartmark/internal/dashboard"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the bookmark list every time it changes",
		Long: `Watch mounts a headless dashboard and prints the list whenever a local
or remote change arrives. Stop it with Ctrl+C.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, rootOpts, query)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "only show bookmarks matching query")
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, rootOpts *RootOptions, query string) error {
	b, err := openBackend(ctx, rootOpts, false)
	if err != nil {
		return err
	}
	defer b.Close()

	v, err := dashboard.Mount(ctx, dashboard.Params{
		Store:   b.store,
		Feed:    b.feed,
		Owner:   b.owner,
		Log:     b.log,
		Timeout: b.cfg.Storage.Timeout,
	})
	if err != nil {
		return err
	}
	defer v.Unmount()
	if query != "" {
		v.SetQuery(query)
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	for {
		select {
		case p := <-v.Changes():
			if p.Query != query {
				continue
			}
			fmt.Fprintf(out, "--- %d of %d ---\n", len(p.Items), p.Total)
			printProjection(out, p)
		case err := <-v.Warnings():
			fmt.Fprintf(errOut, "warning: %v\n", err)
		case <-ctx.Done():
			return nil
		}
	}
}
