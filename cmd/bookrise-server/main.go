package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/bookrise/internal/bootstrap"
	"github.com/at-ishikawa/bookrise/internal/config"
	"github.com/at-ishikawa/bookrise/internal/library"
	"github.com/at-ishikawa/bookrise/internal/server"
	"github.com/at-ishikawa/bookrise/internal/session"
	"github.com/at-ishikawa/bookrise/internal/vault"
)

var configFile string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var debugMode bool
	rootCmd := &cobra.Command{
		Use:           "bookrise-server",
		Short:         "Local HTTP server for BookRise sync and chat",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debugMode)
			return run(cmd.Context(), nil)
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")
	return rootCmd
}

func setupLogger(debugMode bool) {
	logLevel := slog.LevelInfo
	if debugMode {
		logLevel = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
}

// run serves until ctx is done. ready, when set, receives the address being listened on.
func run(ctx context.Context, ready func(addr net.Addr)) error {
	app := bootstrap.New()

	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("loader.Load() > %w", err)
	}

	cache, closeCache, err := library.Open(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("library.Open() > %w", err)
	}
	app.AddShutdownHook(func(context.Context) error {
		return closeCache()
	})

	s, err := session.New(cfg, vault.NewOsStore(cfg.Vault.Directory),
		session.WithBookCache(cache),
		session.WithValidator(loader.Validate),
	)
	if err != nil {
		_ = closeCache()
		return fmt.Errorf("session.New() > %w", err)
	}
	app.AddShutdownHook(func(context.Context) error {
		return s.Close()
	})

	if file := loader.ConfigFile(); file != "" {
		loader.Watch(func(cfg *config.Config) {
			if err := s.Apply(cfg); err != nil {
				slog.Default().Error("Failed to apply the reloaded configuration", "error", err)
				return
			}
			slog.Default().Info("Configuration reloaded", "file", file)
		}, func(err error) {
			slog.Default().Error("Ignored an invalid configuration", "error", err)
		})
	}

	srv := server.NewServer(cfg.Server, s)
	app.AddShutdownHook(srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		listener, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			return fmt.Errorf("net.Listen(%s) > %w", srv.Addr, err)
		}
		slog.Default().Info("Starting server", "addr", listener.Addr().String())
		if ready != nil {
			ready(listener.Addr())
		}
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}
