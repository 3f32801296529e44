// Package session owns the configuration dependent objects: the transport chain,
// the BookRise client and the note synchronizer.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/at-ishikawa/bookrise/internal/bookrise"
	"github.com/at-ishikawa/bookrise/internal/config"
	"github.com/at-ishikawa/bookrise/internal/library"
	"github.com/at-ishikawa/bookrise/internal/notesync"
	"github.com/at-ishikawa/bookrise/internal/transport"
	"github.com/at-ishikawa/bookrise/internal/vault"
)

var ErrMissingAPIKey = errors.New("the BookRise API key is not configured")

const retryDelay = 500 * time.Millisecond

type Option func(*Session)

// WithExecutor replaces the HTTP executor at the bottom of the transport chain.
func WithExecutor(executor transport.Executor) Option {
	return func(s *Session) {
		s.base = executor
	}
}

func WithBookCache(cache library.BookRepository) Option {
	return func(s *Session) {
		s.cache = cache
	}
}

func WithValidator(validate func(*config.Config) error) Option {
	return func(s *Session) {
		s.validate = validate
	}
}

// state is replaced as a whole by Apply.
type state struct {
	cfg    config.Config
	client *bookrise.Client
}

type Session struct {
	mu       sync.RWMutex
	current  state
	base     transport.Executor
	resty    *transport.RestyExecutor
	store    vault.FileStore
	cache    library.BookRepository
	validate func(*config.Config) error
}

func New(cfg *config.Config, store vault.FileStore, options ...Option) (*Session, error) {
	s := &Session{store: store}
	for _, option := range options {
		option(s)
	}
	if s.base == nil {
		s.resty = transport.NewRestyExecutor(timeout(cfg))
		s.base = s.resty
	}
	if err := s.Apply(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func timeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.API.TimeoutSeconds) * time.Second
}

// Apply validates cfg and rebuilds the client from it.
// Operations that already started keep the client they started with.
func (s *Session) Apply(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("nil configuration")
	}
	if s.validate != nil {
		if err := s.validate(cfg); err != nil {
			return err
		}
	}

	var executor transport.Executor = s.base
	if cfg.API.RequestsPerSecond > 0 {
		executor = transport.NewRateLimitedExecutor(executor, cfg.API.RequestsPerSecond)
	}
	if cfg.API.RetryAttempts > 0 {
		executor = transport.NewRetryingExecutor(executor, cfg.API.RetryAttempts, retryDelay)
	}
	client := bookrise.NewClient(executor, bookrise.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		ChatURL: cfg.API.ChatURL,
		APIKey:  cfg.Settings.APIKey,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resty != nil {
		s.resty.SetTimeout(timeout(cfg))
	}
	s.current = state{cfg: *cfg, client: client}
	slog.Default().Debug("Applied configuration",
		"baseURL", cfg.API.BaseURL,
		"syncFolder", cfg.Settings.SyncFolder,
		"perHighlight", cfg.Settings.CreateNotePerHighlight)
	return nil
}

func (s *Session) snapshot() state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Config returns a copy of the configuration in effect.
func (s *Session) Config() config.Config {
	return s.snapshot().cfg
}

func (s *Session) remote() (state, error) {
	current := s.snapshot()
	if current.cfg.Settings.APIKey == "" {
		return current, ErrMissingAPIKey
	}
	return current, nil
}

func (s *Session) ListBooks(ctx context.Context) ([]bookrise.Book, error) {
	current, err := s.remote()
	if err != nil {
		return nil, err
	}
	books, err := current.client.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.ReplaceAll(ctx, books); err != nil {
			slog.Default().Warn("Failed to refresh the book cache", "error", err)
		}
	}
	return books, nil
}

// CachedBooks returns the book list of the last successful fetch without a network call.
func (s *Session) CachedBooks(ctx context.Context) ([]bookrise.Book, error) {
	if s.cache == nil {
		return []bookrise.Book{}, nil
	}
	books, err := s.cache.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache.FindAll() > %w", err)
	}
	return books, nil
}

func (s *Session) ListHighlights(ctx context.Context, bookID string) ([]bookrise.Highlight, error) {
	current, err := s.remote()
	if err != nil {
		return nil, err
	}
	return current.client.ListHighlights(ctx, bookID)
}

func (s *Session) Chat(ctx context.Context, request bookrise.ChatRequest, onChunk bookrise.ChunkHandler) (*bookrise.ChatResponse, error) {
	current, err := s.remote()
	if err != nil {
		return nil, err
	}
	return current.client.Chat(ctx, request, onChunk)
}

// SyncSettings derives the synchronizer settings from the configuration in effect.
func (s *Session) SyncSettings() notesync.Settings {
	cfg := s.snapshot().cfg
	mode := notesync.ModeAggregate
	if cfg.Settings.CreateNotePerHighlight {
		mode = notesync.ModePerHighlight
	}
	return notesync.Settings{
		Folder: cfg.Settings.SyncFolder,
		Mode:   mode,
	}
}

// Sync runs one synchronization with the given settings.
func (s *Session) Sync(ctx context.Context, settings notesync.Settings) (notesync.Report, error) {
	current, err := s.remote()
	if err != nil {
		return notesync.Report{}, err
	}
	var options []notesync.Option
	if s.cache != nil {
		options = append(options, notesync.WithBookCache(s.cache))
	}
	return notesync.NewSynchronizer(current.client, s.store, options...).Run(ctx, settings)
}

func (s *Session) Close() error {
	if s.resty == nil {
		return nil
	}
	return s.resty.Close()
}
