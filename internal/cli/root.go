// Package cli is the smartmark command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigDir string
	LogLevel  string
}

// NewRootCommand creates the root command. Without a subcommand it runs the
// interactive dashboard.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "smartmark",
		Short: "smartmark - bookmarks that stay in sync",
		Long: `smartmark keeps a bookmark collection in sync across terminals and devices.

Run without arguments to open the dashboard.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", "", "configuration directory (default: $SMARTMARK_CONFIG_DIR or ~/.config/smartmark)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")

	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewOpenCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
