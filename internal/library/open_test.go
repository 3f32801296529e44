package library

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/bookrise/internal/config"
)

func TestOpen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "books.yml")
	repository, closeFn, err := Open(context.Background(), config.CacheConfig{File: file})
	require.NoError(t, err)
	assert.Equal(t, NewYAMLBookRepository(file), repository)
	assert.NoError(t, closeFn())
}

func TestOpen_DatabaseUnavailable(t *testing.T) {
	_, _, err := Open(context.Background(), config.CacheConfig{
		File: "books.yml",
		Database: config.DatabaseConfig{
			Enabled:  true,
			Host:     "127.0.0.1",
			Port:     1,
			Database: "bookrise",
			Username: "user",
		},
	})
	assert.ErrorContains(t, err, "database.EnsureSchema()")
}
