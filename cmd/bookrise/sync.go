package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/bookrise/internal/notesync"
)

func newSyncCommand() *cobra.Command {
	var (
		perHighlight bool
		folder       string
	)
	command := &cobra.Command{
		Use:   "sync",
		Short: "Write every BookRise book and its highlights into the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, closeSession, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer closeSession()

			settings := s.SyncSettings()
			if cmd.Flags().Changed("per-highlight") {
				settings.Mode = notesync.ModeAggregate
				if perHighlight {
					settings.Mode = notesync.ModePerHighlight
				}
			}
			if cmd.Flags().Changed("folder") {
				settings.Folder = folder
			}

			report, err := s.Sync(ctx, settings)
			if err != nil {
				return fmt.Errorf("session.Sync() > %w", err)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	command.Flags().BoolVar(&perHighlight, "per-highlight", false, "Create one note per highlight instead of one note per book")
	command.Flags().StringVar(&folder, "folder", "", "Vault folder to sync into. Defaults to settings.sync_folder")
	return command
}

func printReport(w io.Writer, report notesync.Report) {
	if report.Total == 0 {
		_, _ = fmt.Fprintln(w, "No books to sync.")
		return
	}
	_, _ = color.New(color.FgGreen).Fprintf(w, "Synced %d of %d books\n", report.Succeeded, report.Total)
	if report.Failed == 0 {
		return
	}
	red := color.New(color.FgRed)
	_, _ = red.Fprintf(w, "%d books failed\n", report.Failed)
	for _, failure := range report.Failures {
		_, _ = red.Fprintf(w, "  %s (%s): %v\n", failure.Title, failure.BookID, failure.Err)
	}
}
