package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rm <id>...",
		Aliases:       []string{"delete"},
		Short:         "Delete bookmarks by id",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cmd.Context(), rootOpts, false)
			if err != nil {
				return err
			}
			defer b.Close()

			for _, id := range args {
				ctx, cancel := b.requestContext(cmd.Context())
				err := b.store.Delete(ctx, id)
				cancel()
				if err != nil {
					return fmt.Errorf("delete %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			return nil
		},
	}
}
