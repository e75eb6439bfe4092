package remote

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"zenreader/internal/book"
	"zenreader/internal/contextutil"
	"zenreader/internal/segmenter"
)

// IDPrefix marks ids derived from a manifest file reference. Local ids are
// UUIDs, so the two schemes never collide.
const IDPrefix = "static-"

const defaultConcurrency = 8

// ID returns the stable id of the remote book published as file.
func ID(file string) string {
	return IDPrefix + file
}

// Loader turns a manifest into transient remote books.
type Loader struct {
	source      Source
	segmenter   *segmenter.Segmenter
	concurrency int
}

// NewLoader creates a Loader that fetches at most concurrency bodies at once.
// A non-positive concurrency uses the default.
func NewLoader(source Source, concurrency int) *Loader {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Loader{
		source:      source,
		segmenter:   segmenter.Default(),
		concurrency: concurrency,
	}
}

// Load fetches the manifest and every listed body. It never fails: an
// unreachable or malformed manifest yields no books, and an entry whose body
// cannot be fetched is logged and dropped. Books keep manifest order.
// A Loader without a source has no remote library and yields no books.
func (l *Loader) Load(ctx context.Context) []book.Book {
	logger := contextutil.LoggerFromContext(ctx)

	if l.source == nil {
		return []book.Book{}
	}

	entries, err := l.source.FetchManifest(ctx)
	if err != nil {
		logger.WarnContext(ctx, "could not load remote manifest", "error", err)
		return []book.Book{}
	}

	results := make([]*book.Book, len(entries))

	var g errgroup.Group
	g.SetLimit(l.concurrency)

	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		if seen[entry.File] {
			logger.WarnContext(ctx, "duplicate remote manifest entry", "title", entry.Title, "file", entry.File)
			continue
		}
		seen[entry.File] = true

		g.Go(func() error {
			b, err := l.loadEntry(ctx, entry)
			if err != nil {
				logger.ErrorContext(ctx, "failed to load remote book", "title", entry.Title, "file", entry.File, "error", err)
				return nil // never fail the group - entries are isolated
			}
			results[i] = &b
			return nil
		})
	}

	_ = g.Wait()

	books := make([]book.Book, 0, len(entries))
	for _, b := range results {
		if b != nil {
			books = append(books, *b)
		}
	}

	logger.InfoContext(ctx, "remote catalog loaded", "entries", len(entries), "books", len(books))
	return books
}

func (l *Loader) loadEntry(ctx context.Context, entry ManifestEntry) (book.Book, error) {
	text, err := l.source.FetchText(ctx, entry.File)
	if err != nil {
		return book.Book{}, err
	}

	chapters := l.segmenter.Segment(text)
	if n := visibleLimit(entry.VisibleChapters); n > 0 && n < len(chapters) {
		chapters = chapters[:n]
	}

	title := entry.Title
	if title == "" {
		title = entry.File
	}

	return book.Book{
		ID:       ID(entry.File),
		Title:    title,
		FileName: entry.File,
		Content:  text,
		Chapters: chapters,
		IsRemote: true,
	}, nil
}

// visibleLimit converts the manifest cap to a chapter count. Anything below
// one chapter means no cap.
func visibleLimit(v *float64) int {
	if v == nil || math.IsNaN(*v) || *v < 1 {
		return 0
	}
	if *v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(*v)
}
