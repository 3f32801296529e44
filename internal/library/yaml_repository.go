package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/bookrise/internal/bookrise"
)

// YAMLBookRepository keeps the book list in a single YAML file.
type YAMLBookRepository struct {
	path string
}

func NewYAMLBookRepository(path string) *YAMLBookRepository {
	return &YAMLBookRepository{path: path}
}

// FindAll returns an empty list when nothing has been cached yet.
func (r *YAMLBookRepository) FindAll(_ context.Context) ([]bookrise.Book, error) {
	content, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []bookrise.Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", r.path, err)
	}

	books := []bookrise.Book{}
	if err := yaml.Unmarshal(content, &books); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", r.path, err)
	}
	return books, nil
}

// ReplaceAll writes to a temporary file first so a failed write keeps the previous snapshot.
func (r *YAMLBookRepository) ReplaceAll(_ context.Context, books []bookrise.Book) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
	}

	file, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("os.CreateTemp(%s) > %w", dir, err)
	}
	defer func() {
		_ = os.Remove(file.Name())
	}()

	if books == nil {
		books = []bookrise.Book{}
	}
	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(books); err != nil {
		_ = file.Close()
		return fmt.Errorf("yaml.Encode > %w", err)
	}
	if err := encoder.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("yaml.Close > %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("file.Close > %w", err)
	}
	if err := os.Rename(file.Name(), r.path); err != nil {
		return fmt.Errorf("os.Rename(%s) > %w", r.path, err)
	}
	return nil
}
