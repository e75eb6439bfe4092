package catalog

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_remote_loader.go -package=mocks zenreader/internal/catalog RemoteLoader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"zenreader/internal/book"
	"zenreader/internal/contextutil"
	"zenreader/internal/storage"
)

var (
	// ErrUnknownBook is returned when no visible book has the given id.
	ErrUnknownBook = errors.New("unknown book")
	// ErrRemoteBook is returned when deleting a remote book.
	ErrRemoteBook = errors.New("remote books cannot be deleted")
	// ErrNotRemote is returned when hiding a local book.
	ErrNotRemote = errors.New("only remote books can be hidden")
	// ErrChapterOutOfRange is returned when a chapter index does not exist.
	ErrChapterOutOfRange = errors.New("chapter index out of range")
)

// RemoteLoader produces the transient remote books. It never fails.
type RemoteLoader interface {
	Load(ctx context.Context) []book.Book
}

// State is a snapshot of the catalog.
type State struct {
	Books           []book.Book
	SelectedID      string // Empty when nothing is selected
	SelectedChapter int
}

// Catalog owns the merged list of remote and local books and the current
// selection. All reads return copies; the list changes only through its
// methods.
type Catalog struct {
	store  storage.BookStore
	remote RemoteLoader

	mu              sync.RWMutex
	books           []book.Book
	hidden          map[string]struct{}
	selectedID      string
	selectedChapter int
}

// New creates an empty catalog. Call Load to populate it.
func New(store storage.BookStore, remote RemoteLoader) *Catalog {
	return &Catalog{
		store:  store,
		remote: remote,
		books:  []book.Book{},
		hidden: make(map[string]struct{}),
	}
}

// Load fetches remote and local books concurrently and replaces the catalog
// with remote books in manifest order followed by local books in store
// order. Remote positions start over on every load. When the store cannot be
// read, the remote books are still published and the error is returned.
func (c *Catalog) Load(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	var (
		remoteBooks []book.Book
		localBooks  []book.Book
	)

	var g errgroup.Group
	g.Go(func() error {
		remoteBooks = c.remote.Load(ctx)
		return nil
	})
	g.Go(func() error {
		books, err := c.store.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to load local books: %w", err)
		}
		localBooks = books
		return nil
	})
	localErr := g.Wait()
	if localErr != nil {
		logger.ErrorContext(ctx, "local books unavailable, publishing remote books only", "error", localErr)
	}

	merged := make([]book.Book, 0, len(remoteBooks)+len(localBooks))
	c.mu.Lock()
	for _, b := range remoteBooks {
		if _, ok := c.hidden[b.ID]; ok {
			continue
		}
		merged = append(merged, b)
	}
	merged = append(merged, localBooks...)
	c.books = merged
	if _, ok := c.find(c.selectedID); !ok {
		c.selectedID = ""
		c.selectedChapter = 0
	}
	c.mu.Unlock()

	logger.InfoContext(ctx, "catalog loaded", "remote", len(remoteBooks), "local", len(localBooks), "visible", len(merged))
	return localErr
}

// Books returns the visible books in catalog order.
func (c *Catalog) Books() []book.Book {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]book.Book, len(c.books))
	for i, b := range c.books {
		out[i] = b.Clone()
	}
	return out
}

// Book returns the visible book with the given id.
func (c *Catalog) Book(id string) (book.Book, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.find(id)
	if !ok {
		return book.Book{}, ErrUnknownBook
	}
	return c.books[i].Clone(), nil
}

// Snapshot returns the books together with the selection.
func (c *Catalog) Snapshot() State {
	books := c.Books()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{Books: books, SelectedID: c.selectedID, SelectedChapter: c.selectedChapter}
}

// Add appends freshly imported books after the existing ones. When nothing
// is selected the first added book becomes the selection.
func (c *Catalog) Add(books ...book.Book) {
	if len(books) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, b := range books {
		c.books = append(c.books, b.Clone())
	}
	if c.selectedID == "" {
		c.selectedID = books[0].ID
		c.selectedChapter = books[0].LastReadChapterIndex
	}
}

// Select makes id the current book, positioned at its last-read chapter.
func (c *Catalog) Select(id string) (book.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.find(id)
	if !ok {
		return book.Book{}, ErrUnknownBook
	}
	c.selectedID = id
	c.selectedChapter = c.books[i].LastReadChapterIndex
	return c.books[i].Clone(), nil
}

// Current returns the selected book and chapter index.
func (c *Catalog) Current() (book.Book, int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.find(c.selectedID)
	if !ok {
		return book.Book{}, 0, false
	}
	return c.books[i].Clone(), c.selectedChapter, true
}

// Delete removes a local book from the store and the catalog. Remote books
// are refused with ErrRemoteBook. Deleting an unknown id is a no-op.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	c.mu.RLock()
	i, ok := c.find(id)
	remote := ok && c.books[i].IsRemote
	c.mu.RUnlock()

	if remote {
		return ErrRemoteBook
	}

	if err := c.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete book %s: %w", id, err)
	}

	c.remove(id)
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "book deleted", "book_id", id)
	return nil
}

// Hide removes a remote book from the catalog until the process restarts.
func (c *Catalog) Hide(id string) error {
	c.mu.Lock()
	i, ok := c.find(id)
	if !ok {
		c.mu.Unlock()
		return ErrUnknownBook
	}
	if !c.books[i].IsRemote {
		c.mu.Unlock()
		return ErrNotRemote
	}
	c.hidden[id] = struct{}{}
	c.mu.Unlock()

	c.remove(id)
	return nil
}

func (c *Catalog) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.find(id)
	if !ok {
		return
	}
	c.books = append(c.books[:i], c.books[i+1:]...)
	if c.selectedID == id {
		c.selectedID = ""
		c.selectedChapter = 0
	}
}

// find must be called with mu held.
func (c *Catalog) find(id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	for i := range c.books {
		if c.books[i].ID == id {
			return i, true
		}
	}
	return 0, false
}
