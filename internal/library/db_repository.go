package library

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/bookrise/internal/bookrise"
)

type bookRecord struct {
	ID          string          `db:"id"`
	Title       string          `db:"title"`
	Author      string          `db:"author"`
	ISBN        string          `db:"isbn"`
	Tags        []byte          `db:"tags"`
	PercentRead sql.NullFloat64 `db:"percent_read"`
	AssistantID string          `db:"assistant_id"`
}

func newBookRecord(book bookrise.Book) (bookRecord, error) {
	tags := book.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return bookRecord{}, fmt.Errorf("json.Marshal(tags) > %w", err)
	}
	record := bookRecord{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		ISBN:        book.ISBN,
		Tags:        encoded,
		AssistantID: book.AssistantID,
	}
	if book.PercentRead != nil {
		record.PercentRead = sql.NullFloat64{Float64: *book.PercentRead, Valid: true}
	}
	return record, nil
}

func (record bookRecord) toBook() (bookrise.Book, error) {
	book := bookrise.Book{
		ID:          record.ID,
		Title:       record.Title,
		Author:      record.Author,
		ISBN:        record.ISBN,
		AssistantID: record.AssistantID,
	}
	if len(record.Tags) > 0 {
		if err := json.Unmarshal(record.Tags, &book.Tags); err != nil {
			return bookrise.Book{}, fmt.Errorf("json.Unmarshal(tags of %s) > %w", record.ID, err)
		}
		if len(book.Tags) == 0 {
			book.Tags = nil
		}
	}
	if record.PercentRead.Valid {
		percentRead := record.PercentRead.Float64
		book.PercentRead = &percentRead
	}
	return book, nil
}

// DBBookRepository implements BookRepository using MySQL.
type DBBookRepository struct {
	db *sqlx.DB
}

func NewDBBookRepository(db *sqlx.DB) *DBBookRepository {
	return &DBBookRepository{db: db}
}

func (r *DBBookRepository) FindAll(ctx context.Context) ([]bookrise.Book, error) {
	var records []bookRecord
	if err := r.db.SelectContext(ctx, &records,
		"SELECT id, title, author, isbn, tags, percent_read, assistant_id FROM books ORDER BY title, id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(books) > %w", err)
	}

	books := make([]bookrise.Book, 0, len(records))
	for _, record := range records {
		book, err := record.toBook()
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// ReplaceAll deletes every cached book and inserts the new list in one transaction.
func (r *DBBookRepository) ReplaceAll(ctx context.Context, books []bookrise.Book) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM books"); err != nil {
		return fmt.Errorf("tx.ExecContext(delete books) > %w", err)
	}
	for _, book := range books {
		record, err := newBookRecord(book)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO books (id, title, author, isbn, tags, percent_read, assistant_id)
			VALUES (:id, :title, :author, :isbn, :tags, :percent_read, :assistant_id)`,
			record); err != nil {
			return fmt.Errorf("tx.NamedExecContext(insert book %s) > %w", book.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}
