package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_book_store.go -package=mocks zenreader/internal/storage BookStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"zenreader/internal/book"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrRemoteBook is returned when a caller tries to persist a remote book.
	ErrRemoteBook = errors.New("remote books are not persisted")
)

// BookStore defines keyed persistence for local books.
type BookStore interface {
	// Save inserts or replaces the full record of a book (last write wins).
	Save(ctx context.Context, b book.Book) error
	// Get returns a single book. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (book.Book, error)
	// GetAll returns every stored book.
	GetAll(ctx context.Context) ([]book.Book, error)
	// Delete removes a book. Deleting an absent id is not an error.
	Delete(ctx context.Context, id string) error
	// UpdateProgress moves a book's reading position, clamped to its chapters,
	// and recomputes its progress. Unknown ids are ignored.
	UpdateProgress(ctx context.Context, id string, chapterIndex int) error
}

// BookRepo provides methods for book operations.
// It implements the BookStore interface.
type BookRepo struct {
	db    *sql.DB
	locks *keyedMutex
}

// NewBookRepo creates a new BookRepo.
func NewBookRepo(db *sql.DB) *BookRepo {
	return &BookRepo{db: db, locks: newKeyedMutex()}
}

// Save upserts the book and replaces its chapters in one transaction.
func (r *BookRepo) Save(ctx context.Context, b book.Book) error {
	if b.IsRemote {
		return ErrRemoteBook
	}
	if b.ID == "" {
		return fmt.Errorf("failed to save book: empty id")
	}

	unlock := r.locks.Lock(b.ID)
	defer unlock()

	rec := newBookRecord(b)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO books (id, title, file_name, content, last_read_chapter_index, progress)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		 title = excluded.title, file_name = excluded.file_name, content = excluded.content,
		 last_read_chapter_index = excluded.last_read_chapter_index, progress = excluded.progress,
		 updated_at = CURRENT_TIMESTAMP`,
		rec.ID, rec.Title, rec.FileName, rec.Content, rec.LastReadChapterIndex, rec.Progress,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert book: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chapters WHERE book_id = ?", rec.ID); err != nil {
		return fmt.Errorf("failed to delete chapters: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chapters (book_id, chapter_index, title, content) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare chapter insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, ch := range b.Chapters {
		if _, err := stmt.ExecContext(ctx, rec.ID, ch.Index, ch.Title, ch.Content); err != nil {
			return fmt.Errorf("failed to insert chapter %d: %w", ch.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit book: %w", err)
	}
	return nil
}

// Get returns a single book with its chapters. Returns ErrNotFound if absent.
func (r *BookRepo) Get(ctx context.Context, id string) (book.Book, error) {
	rec, err := scanBook(r.db.QueryRowContext(ctx,
		`SELECT id, title, file_name, content, last_read_chapter_index, progress, created_at, updated_at
		 FROM books WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return book.Book{}, ErrNotFound
	}
	if err != nil {
		return book.Book{}, fmt.Errorf("failed to query book: %w", err)
	}

	chapters, err := r.chapters(ctx, "SELECT book_id, chapter_index, title, content FROM chapters WHERE book_id = ? ORDER BY chapter_index", id)
	if err != nil {
		return book.Book{}, err
	}

	return rec.toBook(chapters[id]), nil
}

// GetAll returns every stored book with its chapters, in insertion order.
func (r *BookRepo) GetAll(ctx context.Context) ([]book.Book, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, file_name, content, last_read_chapter_index, progress, created_at, updated_at
		 FROM books ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}

	var records []BookRecord
	for rows.Next() {
		rec, err := scanBook(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	_ = rows.Close()

	chapters, err := r.chapters(ctx, "SELECT book_id, chapter_index, title, content FROM chapters ORDER BY book_id, chapter_index")
	if err != nil {
		return nil, err
	}

	books := make([]book.Book, 0, len(records))
	for _, rec := range records {
		books = append(books, rec.toBook(chapters[rec.ID]))
	}
	return books, nil
}

// Delete removes a book and its chapters. Absent ids are a no-op.
func (r *BookRepo) Delete(ctx context.Context, id string) error {
	unlock := r.locks.Lock(id)
	defer unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chapters WHERE book_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete chapters: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// UpdateProgress reads the book's chapter count, clamps chapterIndex to it and
// writes the position and progress back. Unknown ids are a no-op.
func (r *BookRepo) UpdateProgress(ctx context.Context, id string, chapterIndex int) error {
	unlock := r.locks.Lock(id)
	defer unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var total int
	err = tx.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM chapters WHERE book_id = b.id) FROM books b WHERE b.id = ?",
		id,
	).Scan(&total)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read book for progress: %w", err)
	}

	index := book.ClampIndex(chapterIndex, total)
	progress := book.ProgressFor(index, total)

	_, err = tx.ExecContext(ctx,
		`UPDATE books SET last_read_chapter_index = ?, progress = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		index, progress, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit progress: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(s rowScanner) (BookRecord, error) {
	var rec BookRecord
	var createdAtStr, updatedAtStr string

	if err := s.Scan(&rec.ID, &rec.Title, &rec.FileName, &rec.Content,
		&rec.LastReadChapterIndex, &rec.Progress, &createdAtStr, &updatedAtStr); err != nil {
		return BookRecord{}, err
	}

	var err error
	if rec.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return BookRecord{}, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	if rec.UpdatedAt, err = parseTimestamp(updatedAtStr); err != nil {
		return BookRecord{}, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}
	return rec, nil
}

// chapters runs a chapter query and groups the rows by book id.
func (r *BookRepo) chapters(ctx context.Context, query string, args ...any) (map[string][]ChapterRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapters: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	byBook := make(map[string][]ChapterRecord)
	for rows.Next() {
		var c ChapterRecord
		if err := rows.Scan(&c.BookID, &c.ChapterIndex, &c.Title, &c.Content); err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		byBook[c.BookID] = append(byBook[c.BookID], c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return byBook, nil
}
