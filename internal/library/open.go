package library

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/bookrise/internal/config"
	"github.com/at-ishikawa/bookrise/internal/database"
)

// Open returns the book cache selected by the configuration and a function releasing it.
func Open(ctx context.Context, cfg config.CacheConfig) (BookRepository, func() error, error) {
	if !cfg.Database.Enabled {
		return NewYAMLBookRepository(cfg.File), func() error { return nil }, nil
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open() > %w", err)
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("database.EnsureSchema() > %w", err)
	}
	return NewDBBookRepository(db), db.Close, nil
}
