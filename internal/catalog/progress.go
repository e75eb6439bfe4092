package catalog

import (
	"context"
	"fmt"

	"zenreader/internal/book"
	"zenreader/internal/contextutil"
)

// Advance moves the reading position of book id to index. Unknown ids and
// out-of-range indices are no-ops and report applied == false. The in-memory
// copy changes first; local books are then persisted. A persistence failure
// is returned but the in-memory change is kept.
func (c *Catalog) Advance(ctx context.Context, id string, index int) (book.Book, bool, error) {
	return c.advance(ctx, id, func(int) int { return index })
}

// advance resolves the target chapter from the current one and applies it
// under a single write lock.
func (c *Catalog) advance(ctx context.Context, id string, target func(current int) int) (book.Book, bool, error) {
	c.mu.Lock()
	i, ok := c.find(id)
	if !ok {
		c.mu.Unlock()
		return book.Book{}, false, nil
	}
	b := &c.books[i]
	index := target(b.LastReadChapterIndex)
	if !b.SetPosition(index) {
		snapshot := b.Clone()
		c.mu.Unlock()
		return snapshot, false, nil
	}
	if c.selectedID == id {
		c.selectedChapter = index
	}
	snapshot := b.Clone()
	c.mu.Unlock()

	if snapshot.IsRemote {
		return snapshot, true, nil
	}

	if err := c.store.UpdateProgress(ctx, id, index); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to persist progress",
			"book_id", id, "chapter_index", index, "error", err)
		return snapshot, true, fmt.Errorf("failed to persist progress: %w", err)
	}
	return snapshot, true, nil
}

// SelectChapter selects book id and moves its position to index. An
// out-of-range index leaves the selection untouched.
func (c *Catalog) SelectChapter(ctx context.Context, id string, index int) (book.Book, error) {
	b, err := c.Book(id)
	if err != nil {
		return book.Book{}, err
	}
	if !b.InRange(index) {
		return b, ErrChapterOutOfRange
	}
	if _, err := c.Select(id); err != nil {
		return book.Book{}, err
	}
	b, _, err = c.Advance(ctx, id, index)
	return b, err
}

// Next advances book id by one chapter. It is a no-op on the last chapter.
func (c *Catalog) Next(ctx context.Context, id string) (book.Book, bool, error) {
	return c.advance(ctx, id, func(current int) int { return current + 1 })
}

// Previous moves book id back one chapter. It is a no-op on the first chapter.
func (c *Catalog) Previous(ctx context.Context, id string) (book.Book, bool, error) {
	return c.advance(ctx, id, func(current int) int { return current - 1 })
}
