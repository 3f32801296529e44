// Package vault provides the file-store that generated notes are written to.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

var ErrAlreadyExists = errors.New("already exists")

// Entry is an existing file or folder.
type Entry struct {
	Path     string
	IsFolder bool
}

// FileStore is the minimal set of vault operations the synchronizer needs.
// Create-or-update is the caller's responsibility: check Exists, then branch.
type FileStore interface {
	// Exists returns nil when nothing exists at path.
	Exists(ctx context.Context, path string) (*Entry, error)
	CreateFolder(ctx context.Context, path string) error
	CreateFile(ctx context.Context, path string, content string) error
	ModifyFile(ctx context.Context, entry *Entry, content string) error
}

// AferoStore implements FileStore on top of an afero file system.
// Paths are vault relative and slash separated.
type AferoStore struct {
	fs afero.Fs
}

func NewAferoStore(fs afero.Fs) *AferoStore {
	return &AferoStore{fs: fs}
}

// NewOsStore roots a store at a directory on disk.
func NewOsStore(directory string) *AferoStore {
	return NewAferoStore(afero.NewBasePathFs(afero.NewOsFs(), directory))
}

func (store *AferoStore) Fs() afero.Fs {
	return store.fs
}

func clean(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

func (store *AferoStore) Exists(_ context.Context, p string) (*Entry, error) {
	p = clean(p)
	info, err := store.fs.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fs.Stat(%s) > %w", p, err)
	}
	return &Entry{Path: p, IsFolder: info.IsDir()}, nil
}

func (store *AferoStore) CreateFolder(_ context.Context, p string) error {
	p = clean(p)
	if err := store.fs.MkdirAll(p, 0o755); err != nil {
		return fmt.Errorf("fs.MkdirAll(%s) > %w", p, err)
	}
	return nil
}

func (store *AferoStore) CreateFile(ctx context.Context, p string, content string) error {
	p = clean(p)
	entry, err := store.Exists(ctx, p)
	if err != nil {
		return err
	}
	if entry != nil {
		return fmt.Errorf("create %s: %w", p, ErrAlreadyExists)
	}
	if err := afero.WriteFile(store.fs, p, []byte(content), 0o644); err != nil {
		return fmt.Errorf("afero.WriteFile(%s) > %w", p, err)
	}
	return nil
}

func (store *AferoStore) ModifyFile(_ context.Context, entry *Entry, content string) error {
	if entry == nil {
		return errors.New("modify: nil entry")
	}
	if entry.IsFolder {
		return fmt.Errorf("modify %s: is a folder", entry.Path)
	}
	p := clean(entry.Path)
	if err := afero.WriteFile(store.fs, p, []byte(content), 0o644); err != nil {
		return fmt.Errorf("afero.WriteFile(%s) > %w", p, err)
	}
	return nil
}

// ReadFile is used by exporters that render generated notes.
func (store *AferoStore) ReadFile(p string) ([]byte, error) {
	p = clean(p)
	content, err := afero.ReadFile(store.fs, p)
	if err != nil {
		return nil, fmt.Errorf("afero.ReadFile(%s) > %w", p, err)
	}
	return content, nil
}
