// Package library caches the last fetched list of books.
package library

import (
	"context"

	"github.com/at-ishikawa/bookrise/internal/bookrise"
)

//go:generate mockgen -source=repository.go -destination=../mocks/library/mock_repository.go -package=mock_library

// BookRepository stores a snapshot of the remote book list.
type BookRepository interface {
	FindAll(ctx context.Context) ([]bookrise.Book, error)
	// ReplaceAll discards the previous snapshot.
	ReplaceAll(ctx context.Context, books []bookrise.Book) error
}
