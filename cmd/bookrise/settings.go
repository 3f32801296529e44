package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/bookrise/internal/config"
)

func newSettingsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the sync settings",
	}
	command.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the settings in effect",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, cfg, err := loadConfig()
				if err != nil {
					return err
				}
				printSettings(cmd.OutOrStdout(), cfg.Settings)
				return nil
			},
		},
		&cobra.Command{
			Use:       "set <key> <value>",
			Short:     fmt.Sprintf("Change a setting. Keys: %s", strings.Join(config.SettingKeys(), ", ")),
			Args:      cobra.ExactArgs(2),
			ValidArgs: config.SettingKeys(),
			RunE: func(cmd *cobra.Command, args []string) error {
				loader, err := config.NewConfigLoader(configFile)
				if err != nil {
					return fmt.Errorf("failed to create config loader: %w", err)
				}
				if _, err := loader.Load(); err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				cfg, err := loader.SetSetting(args[0], args[1])
				if err != nil {
					return fmt.Errorf("loader.SetSetting(%s) > %w", args[0], err)
				}
				_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
				printSettings(cmd.OutOrStdout(), cfg.Settings)
				return nil
			},
		},
	)
	return command
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func printSettings(out io.Writer, settings config.SettingsConfig) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "api_key\t%s\n", maskAPIKey(settings.APIKey))
	_, _ = fmt.Fprintf(w, "sync_folder\t%s\n", settings.SyncFolder)
	_, _ = fmt.Fprintf(w, "create_note_per_highlight\t%s\n", strconv.FormatBool(settings.CreateNotePerHighlight))
	_ = w.Flush()
}
