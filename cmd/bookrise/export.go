package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/bookrise/internal/bookrise"
	"github.com/at-ishikawa/bookrise/internal/notesync"
	"github.com/at-ishikawa/bookrise/internal/pdf"
	"github.com/at-ishikawa/bookrise/internal/vault"
)

func newExportCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "export",
		Short: "Export synced notes",
	}
	command.AddCommand(&cobra.Command{
		Use:   "pdf <book title>",
		Short: "Render the synced note of a book as a PDF next to it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig()
			if err != nil {
				return err
			}

			book := bookrise.Book{Title: strings.Join(args, " ")}
			notePath := notesync.BookNotePath(cfg.Settings.SyncFolder, book)
			pdfPath, err := pdf.ExportNote(vault.NewOsStore(cfg.Vault.Directory), notePath)
			if err != nil {
				return fmt.Errorf("pdf.ExportNote(%s) > %w", notePath, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "PDF written to %s\n", pdfPath)
			return nil
		},
	})
	return command
}
