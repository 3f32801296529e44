package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/bookrise/internal/config"
	"github.com/at-ishikawa/bookrise/internal/library"
	"github.com/at-ishikawa/bookrise/internal/session"
	"github.com/at-ishikawa/bookrise/internal/vault"
)

func loadConfig() (*config.ConfigLoader, *config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return loader, cfg, nil
}

// openSession builds a session from the configuration file. The returned
// function releases the session and its book cache.
func openSession(ctx context.Context) (*session.Session, func(), error) {
	loader, cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	cache, closeCache, err := library.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("library.Open() > %w", err)
	}
	s, err := session.New(cfg, vault.NewOsStore(cfg.Vault.Directory),
		session.WithBookCache(cache),
		session.WithValidator(loader.Validate),
	)
	if err != nil {
		_ = closeCache()
		return nil, nil, fmt.Errorf("session.New() > %w", err)
	}

	return s, func() {
		if err := s.Close(); err != nil {
			slog.Default().Warn("Failed to close the session", "error", err)
		}
		if err := closeCache(); err != nil {
			slog.Default().Warn("Failed to close the book cache", "error", err)
		}
	}, nil
}
