package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

func newRootCommand() *cobra.Command {
	var debugMode bool
	rootCommand := &cobra.Command{
		Use:           "bookrise",
		Short:         "Sync BookRise highlights into a notes vault and chat with your books",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(cmd.ErrOrStderr(), debugMode)
			return nil
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	rootCommand.AddCommand(
		newSyncCommand(),
		newBooksCommand(),
		newHighlightsCommand(),
		newChatCommand(),
		newExportCommand(),
		newSettingsCommand(),
	)
	return rootCommand
}

// setupLogger configures the default logger based on debug mode.
// Logs go to w so that answers and JSON output on stdout stay clean.
func setupLogger(w io.Writer, debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}
