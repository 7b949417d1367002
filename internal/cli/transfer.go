package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/smartmark/internal/exporter"
	"github.com/nikbrunner/smartmark/internal/importer"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "import <file.html>",
		Short:         "Import bookmarks from a browser HTML export",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer file.Close()

			entries, err := importer.ParseHTMLBookmarks(file)
			if err != nil {
				return fmt.Errorf("parse HTML: %w", err)
			}

			b, err := openBackend(cmd.Context(), rootOpts, false)
			if err != nil {
				return err
			}
			defer b.Close()

			ctx, cancel := b.requestContext(cmd.Context())
			existing, err := b.store.ListAll(ctx)
			cancel()
			if err != nil {
				return fmt.Errorf("list bookmarks: %w", err)
			}
			res, err := importer.Import(cmd.Context(), b.store, entries, existing)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d bookmarks", res.Added)
			if res.Skipped > 0 {
				fmt.Fprintf(out, " (%d skipped)", res.Skipped)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "export [path]",
		Short:         "Export bookmarks as browser-importable HTML",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				var err error
				if path, err = exporter.DefaultExportPath(time.Now()); err != nil {
					return fmt.Errorf("default export path: %w", err)
				}
			}

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

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create export dir: %w", err)
			}
			if err := os.WriteFile(path, []byte(exporter.ExportHTML(items)), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks to %s\n", len(items), path)
			return nil
		},
	}
}
