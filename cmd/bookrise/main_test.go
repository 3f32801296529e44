package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/bookrise/internal/testutil"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// execute runs the root command with args and returns what it printed to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	command := newRootCommand()
	command.SetOut(&out)
	command.SetErr(&errOut)
	command.SetArgs(args)
	err := command.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		wantLevel slog.Level
	}{
		{
			name:      "debug mode enabled",
			debugMode: true,
			wantLevel: slog.LevelDebug,
		},
		{
			name:      "debug mode disabled",
			debugMode: false,
			wantLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			setupLogger(&buf, tt.debugMode)
			logger := slog.Default()
			assert.NotNil(t, logger)
			assert.Equal(t, tt.wantLevel <= slog.LevelDebug, logger.Enabled(context.Background(), slog.LevelDebug))

			logger.Warn("cache refresh failed")
			assert.Contains(t, buf.String(), "level=WARN")
			assert.Contains(t, buf.String(), "cache refresh failed")
		})
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "bookrise", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("debug"))

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"sync", "books", "highlights", "chat", "export", "settings"}, names)
}

func TestRootCommand_LogsStayOffStdout(t *testing.T) {
	t.Setenv("BOOKRISE_API_KEY", "")
	t.Setenv("BOOKRISE_BASE_URL", "")
	cfgPath := testutil.SetupTestConfigWithAPIKey(t, t.TempDir(), testutil.NewFakeRemote(t).URL)

	var out, errOut bytes.Buffer
	command := newRootCommand()
	command.SetOut(&out)
	command.SetErr(&errOut)
	command.SetArgs([]string{"sync", "--debug", "--config", cfgPath})
	require.NoError(t, command.ExecuteContext(context.Background()))

	assert.Equal(t, "Synced 1 of 1 books\n", out.String())
	assert.Contains(t, errOut.String(), "Sync finished")
}
