// Package bootstrap runs a long lived process until it is interrupted.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

// App runs a function and calls shutdown hooks when the process is asked to stop.
type App struct {
	mu              sync.Mutex
	hooks           []func(ctx context.Context) error
	shutdownTimeout time.Duration
	signals         []os.Signal
}

type Option func(*App)

// WithShutdownTimeout bounds the time all hooks together may take.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(a *App) {
		a.shutdownTimeout = timeout
	}
}

func New(options ...Option) *App {
	a := &App{
		shutdownTimeout: defaultShutdownTimeout,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// AddShutdownHook registers a function to call during shutdown.
// Hooks run in reverse order of registration. Safe for concurrent use.
func (a *App) AddShutdownHook(fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, fn)
}

// Run executes run until it returns or ctx is done, whichever comes first.
// When ctx is done or a stop signal arrives, the shutdown hooks are called.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, a.signals...)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Default().Info("Shutting down")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancelShutdown()
		return a.shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (a *App) shutdown(ctx context.Context) error {
	a.mu.Lock()
	hooks := make([]func(ctx context.Context) error, len(a.hooks))
	copy(hooks, a.hooks)
	a.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			slog.Default().Error("Shutdown hook failed", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
