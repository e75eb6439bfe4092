package importer

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"regexp"

	"github.com/google/uuid"

	"zenreader/internal/book"
	"zenreader/internal/contextutil"
	"zenreader/internal/segmenter"
	"zenreader/internal/storage"
)

// ErrUnsupportedType is reported for files that are neither plain text nor Markdown.
var ErrUnsupportedType = errors.New("unsupported file type")

var textExtension = regexp.MustCompile(`(?i)\.(txt|md|markdown)$`)

// File is one file handed over for import.
type File struct {
	Name     string
	Path     string // Slash-separated path within an imported folder; orders the batch when set
	MimeType string // Declared content type, may be empty
	Text     string // Decoded text
}

// orderKey is the name a file sorts by within a batch.
func (f File) orderKey() string {
	if f.Path != "" {
		return f.Path
	}
	return f.Name
}

// Skipped records a file that did not become a book.
type Skipped struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result is the outcome of a batch import.
type Result struct {
	Books   []book.Book // Persisted books, in natural file-name order
	Skipped []Skipped
}

// Importer builds local books from files and persists them.
type Importer struct {
	store     storage.BookStore
	segmenter *segmenter.Segmenter
	newID     func() string
}

// New creates an Importer that persists into store.
func New(store storage.BookStore) *Importer {
	return &Importer{
		store:     store,
		segmenter: segmenter.Default(),
		newID:     func() string { return uuid.New().String() },
	}
}

// Supported reports whether a file name or declared type marks plain text or Markdown.
func Supported(name, mimeType string) bool {
	if textExtension.MatchString(name) {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	return err == nil && mediaType == "text/plain"
}

// TitleFromFileName strips the text-file extension from name.
func TitleFromFileName(name string) string {
	return textExtension.ReplaceAllString(name, "")
}

// Build creates a fresh local book from a file. It does not persist it.
func (im *Importer) Build(name, text string) book.Book {
	return book.Book{
		ID:                   im.newID(),
		Title:                TitleFromFileName(name),
		FileName:             name,
		Content:              text,
		Chapters:             im.segmenter.Segment(text),
		LastReadChapterIndex: 0,
		Progress:             0,
		IsRemote:             false,
	}
}

// Import sorts files by natural order of their path (or name), builds a
// book from each supported file and saves it before returning it. Unsupported files are
// skipped. A failed save skips that file and is reported in the returned
// error while the rest of the batch continues.
func (im *Importer) Import(ctx context.Context, files []File) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	ordered := make([]File, len(files))
	copy(ordered, files)
	SortByName(ordered, File.orderKey)

	result := Result{Books: []book.Book{}, Skipped: []Skipped{}}
	var errs []error

	for _, f := range ordered {
		if !Supported(f.Name, f.MimeType) {
			logger.InfoContext(ctx, "skipping unsupported file", "file", f.Name, "mime_type", f.MimeType)
			result.Skipped = append(result.Skipped, Skipped{Name: f.Name, Reason: ErrUnsupportedType.Error()})
			continue
		}

		b := im.Build(f.Name, f.Text)
		if err := im.store.Save(ctx, b); err != nil {
			logger.ErrorContext(ctx, "failed to save imported book", "file", f.Name, "book_id", b.ID, "error", err)
			result.Skipped = append(result.Skipped, Skipped{Name: f.Name, Reason: "save failed"})
			errs = append(errs, fmt.Errorf("save %s: %w", f.Name, err))
			continue
		}

		logger.InfoContext(ctx, "imported book", "file", f.Name, "book_id", b.ID, "chapters", len(b.Chapters))
		result.Books = append(result.Books, b)
	}

	return result, errors.Join(errs...)
}
