// Package notesync materializes remote books and highlights as notes in a vault.
package notesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/at-ishikawa/bookrise/internal/bookrise"
	"github.com/at-ishikawa/bookrise/internal/vault"
)

//go:generate mockgen -source=synchronizer.go -destination=../mocks/notesync/mock_synchronizer.go -package=mock_notesync

// ErrPathCollision is returned when a file occupies a path where a folder is expected, or the reverse.
var ErrPathCollision = errors.New("path collision")

type Mode int

const (
	// ModeAggregate stores all highlights of a book as list items of one note.
	ModeAggregate Mode = iota
	// ModePerHighlight stores every highlight as its own note plus an index in the book note.
	ModePerHighlight
)

func (m Mode) String() string {
	if m == ModePerHighlight {
		return "per-highlight"
	}
	return "aggregate"
}

// Source is the remote side of a sync.
type Source interface {
	ListBooks(ctx context.Context) ([]bookrise.Book, error)
	ListHighlights(ctx context.Context, bookID string) ([]bookrise.Highlight, error)
}

// BookCache keeps the last fetched book list.
type BookCache interface {
	ReplaceAll(ctx context.Context, books []bookrise.Book) error
}

const DefaultFolder = "BookRise"

type Settings struct {
	Folder string
	Mode   Mode
}

type BookFailure struct {
	BookID string
	Title  string
	Err    error
}

type Report struct {
	Total     int
	Succeeded int
	Failed    int
	Failures  []BookFailure
}

type Option func(*Synchronizer)

func WithBookCache(cache BookCache) Option {
	return func(s *Synchronizer) {
		s.cache = cache
	}
}

// WithRandomID replaces the generator used for block references of highlights without an id.
func WithRandomID(fn func() string) Option {
	return func(s *Synchronizer) {
		s.newRandomID = fn
	}
}

type Synchronizer struct {
	source      Source
	store       vault.FileStore
	cache       BookCache
	newRandomID func() string
}

func NewSynchronizer(source Source, store vault.FileStore, options ...Option) *Synchronizer {
	s := &Synchronizer{
		source:      source,
		store:       store,
		newRandomID: randomShortID,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Run syncs every remote book into settings.Folder.
// A failing book is recorded in the report and does not stop the others.
func (s *Synchronizer) Run(ctx context.Context, settings Settings) (Report, error) {
	books, err := s.source.ListBooks(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("source.ListBooks() > %w", err)
	}
	if s.cache != nil {
		if err := s.cache.ReplaceAll(ctx, books); err != nil {
			slog.Default().Warn("Failed to refresh the book cache", "error", err)
		}
	}
	if len(books) == 0 {
		slog.Default().Info("No books to sync")
		return Report{}, nil
	}

	root := cleanFolder(settings.Folder)
	if root == "" {
		root = DefaultFolder
	}
	if err := s.ensureFolder(ctx, root); err != nil {
		return Report{}, fmt.Errorf("ensureFolder(%s) > %w", root, err)
	}

	report := Report{Total: len(books)}
	for _, book := range books {
		if err := s.syncBook(ctx, root, book, settings.Mode); err != nil {
			slog.Default().Error("Failed to sync a book",
				"bookID", book.ID,
				"title", book.Title,
				"error", err)
			report.Failed++
			report.Failures = append(report.Failures, BookFailure{
				BookID: book.ID,
				Title:  book.Title,
				Err:    err,
			})
			continue
		}
		report.Succeeded++
	}

	slog.Default().Info("Sync finished",
		"mode", settings.Mode.String(),
		"books", report.Total,
		"succeeded", report.Succeeded,
		"failed", report.Failed)
	return report, nil
}

func cleanFolder(folder string) string {
	folder = strings.Trim(path.Clean("/"+strings.ReplaceAll(folder, "\\", "/")), "/")
	return folder
}

// BookFolder returns the vault path of a book's folder.
func BookFolder(root string, book bookrise.Book) string {
	return path.Join(cleanFolder(root), SanitizeName(book.Title))
}

// BookNotePath returns the vault path of a book's main note.
func BookNotePath(root string, book bookrise.Book) string {
	name := SanitizeName(book.Title)
	return path.Join(cleanFolder(root), name, name+".md")
}

func displayTitle(book bookrise.Book) string {
	if title := strings.TrimSpace(book.Title); title != "" {
		return title
	}
	return untitled
}

func (s *Synchronizer) syncBook(ctx context.Context, root string, book bookrise.Book, mode Mode) error {
	folder := BookFolder(root, book)
	if err := s.ensureFolder(ctx, folder); err != nil {
		return fmt.Errorf("ensureFolder(%s) > %w", folder, err)
	}

	highlights, err := s.source.ListHighlights(ctx, book.ID)
	if err != nil {
		return fmt.Errorf("source.ListHighlights(%s) > %w", book.ID, err)
	}

	frontmatter, err := bookFrontmatterOf(book)
	if err != nil {
		return fmt.Errorf("bookFrontmatterOf(%s) > %w", book.ID, err)
	}

	var sb strings.Builder
	sb.WriteString(frontmatter)
	sb.WriteString("\n")
	sb.WriteString(bookHeader(book))
	sb.WriteString("## Highlights\n\n")

	switch {
	case len(highlights) == 0 && mode == ModePerHighlight:
		sb.WriteString("_No highlights found for this book. Notes for individual highlights will be created in " + highlightsFolder + " once there are some._\n")
	case len(highlights) == 0:
		sb.WriteString("_No highlights found for this book._\n")
	case mode == ModePerHighlight:
		index, err := s.writeHighlightNotes(ctx, folder, book, highlights)
		if err != nil {
			return err
		}
		sb.WriteString(index)
	default:
		for _, highlight := range highlights {
			sb.WriteString(formatListItem(highlight, s.newRandomID))
		}
	}

	notePath := BookNotePath(root, book)
	if err := s.writeNote(ctx, notePath, sb.String()); err != nil {
		return fmt.Errorf("writeNote(%s) > %w", notePath, err)
	}
	slog.Default().Debug("Synced a book",
		"bookID", book.ID,
		"path", notePath,
		"highlights", len(highlights))
	return nil
}

// writeHighlightNotes writes one note per highlight and returns the index section of the book note.
func (s *Synchronizer) writeHighlightNotes(ctx context.Context, folder string, book bookrise.Book, highlights []bookrise.Highlight) (string, error) {
	highlightsDir := path.Join(folder, highlightsFolder)
	if err := s.ensureFolder(ctx, highlightsDir); err != nil {
		return "", fmt.Errorf("ensureFolder(%s) > %w", highlightsDir, err)
	}

	bookNoteLink := path.Join(folder, path.Base(folder))
	used := make(map[string]struct{}, len(highlights))
	var index strings.Builder
	for _, highlight := range highlights {
		title := SanitizeName(ShortTitle(highlight.TextContent, highlight.Note))
		name := s.highlightNoteName(title, highlight.ID, used)

		content, err := formatHighlightNote(highlight, book, bookNoteLink, title)
		if err != nil {
			return "", fmt.Errorf("formatHighlightNote(%s) > %w", highlight.ID, err)
		}
		notePath := path.Join(highlightsDir, name+".md")
		if err := s.writeNote(ctx, notePath, content); err != nil {
			return "", fmt.Errorf("writeNote(%s) > %w", notePath, err)
		}
		index.WriteString("- [[" + path.Join(highlightsDir, name) + "|" + title + "]]\n")
	}
	return index.String(), nil
}

// highlightNoteName returns "<title> <first 8 id characters>" unless another highlight of
// the same book already took that name in this run. Then the full id is used, and a
// counter when even that is taken. Names are compared case-insensitively.
func (s *Synchronizer) highlightNoteName(title, highlightID string, used map[string]struct{}) string {
	var candidates []string
	if highlightID == "" {
		candidates = append(candidates, title+" "+s.newRandomID())
	} else {
		candidates = append(candidates,
			title+" "+SanitizeName(shortID(highlightID)),
			title+" "+SanitizeName(highlightID))
	}

	take := func(name string) bool {
		key := strings.ToLower(name)
		if _, ok := used[key]; ok {
			return false
		}
		used[key] = struct{}{}
		return true
	}
	for _, name := range candidates {
		if take(name) {
			return name
		}
	}
	last := candidates[len(candidates)-1]
	for n := 2; ; n++ {
		if name := last + " " + strconv.Itoa(n); take(name) {
			return name
		}
	}
}

func (s *Synchronizer) ensureFolder(ctx context.Context, folder string) error {
	entry, err := s.store.Exists(ctx, folder)
	if err != nil {
		return fmt.Errorf("store.Exists(%s) > %w", folder, err)
	}
	if entry == nil {
		if err := s.store.CreateFolder(ctx, folder); err != nil {
			return fmt.Errorf("store.CreateFolder(%s) > %w", folder, err)
		}
		return nil
	}
	if !entry.IsFolder {
		return fmt.Errorf("a file exists at %s: %w", folder, ErrPathCollision)
	}
	return nil
}

// writeNote creates the note or overwrites it entirely.
func (s *Synchronizer) writeNote(ctx context.Context, notePath, content string) error {
	entry, err := s.store.Exists(ctx, notePath)
	if err != nil {
		return fmt.Errorf("store.Exists(%s) > %w", notePath, err)
	}
	if entry == nil {
		return s.store.CreateFile(ctx, notePath, content)
	}
	if entry.IsFolder {
		return fmt.Errorf("a folder exists at %s: %w", notePath, ErrPathCollision)
	}
	return s.store.ModifyFile(ctx, entry, content)
}
