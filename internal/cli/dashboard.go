package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/smartmark/internal/tui"
)

// runDashboard runs the interactive TUI. The renderer owns the terminal, so
// logs go to the log file.
func runDashboard(cmd *cobra.Command, opts *RootOptions) error {
	b, err := openBackend(cmd.Context(), opts, true)
	if err != nil {
		return err
	}
	defer b.Close()

	app := tui.NewApp(tui.AppParams{
		Store:   b.store,
		Feed:    b.feed,
		Owner:   b.owner,
		Fetcher: b.fetcher(),
		Log:     b.log,
		Timeout: b.cfg.Storage.Timeout,
	})
	// Every copy of the model shares one feed link.
	defer app.Unmount()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
