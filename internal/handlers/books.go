package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"zenreader/internal/book"
	"zenreader/internal/catalog"
	"zenreader/internal/contextutil"
)

// BooksHandler serves the catalog and reading-position endpoints.
type BooksHandler struct {
	catalog  *catalog.Catalog
	renderer *ChapterRenderer
}

// NewBooksHandler creates a new BooksHandler.
func NewBooksHandler(c *catalog.Catalog, renderer *ChapterRenderer) *BooksHandler {
	return &BooksHandler{catalog: c, renderer: renderer}
}

// BookSummary is a catalog entry without text.
type BookSummary struct {
	ID                   string `json:"id"`
	Title                string `json:"title"`
	FileName             string `json:"fileName"`
	IsRemote             bool   `json:"isRemote"`
	ChapterCount         int    `json:"chapterCount"`
	LastReadChapterIndex int    `json:"lastReadChapterIndex"`
	Progress             int    `json:"progress"`
}

// ChapterHeading is a table-of-contents entry.
type ChapterHeading struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

// BookDetail is a catalog entry with its table of contents.
type BookDetail struct {
	BookSummary
	Chapters []ChapterHeading `json:"chapters"`
}

// CatalogResponse lists the catalog with the current selection.
type CatalogResponse struct {
	Books           []BookSummary `json:"books"`
	SelectedID      string        `json:"selectedId,omitempty"`
	SelectedChapter int           `json:"selectedChapter"`
}

// ChapterResponse carries one chapter's text.
type ChapterResponse struct {
	BookID string `json:"bookId"`
	Index  int    `json:"index"`
	Title  string `json:"title"`
	// Content is plain text, or rendered HTML when format=html.
	Content string `json:"content"`
	Format  string `json:"format"`
}

// PositionRequest moves the reading position.
type PositionRequest struct {
	ChapterIndex *int `json:"chapterIndex"`
}

// PositionResponse reports the position after a move.
type PositionResponse struct {
	BookSummary
	Moved bool `json:"moved"`
}

func summarize(b book.Book) BookSummary {
	return BookSummary{
		ID:                   b.ID,
		Title:                b.Title,
		FileName:             b.FileName,
		IsRemote:             b.IsRemote,
		ChapterCount:         len(b.Chapters),
		LastReadChapterIndex: b.LastReadChapterIndex,
		Progress:             b.Progress,
	}
}

func detail(b book.Book) BookDetail {
	headings := make([]ChapterHeading, len(b.Chapters))
	for i, ch := range b.Chapters {
		headings[i] = ChapterHeading{Index: ch.Index, Title: ch.Title}
	}
	return BookDetail{BookSummary: summarize(b), Chapters: headings}
}

// List returns the merged catalog.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	state := h.catalog.Snapshot()

	resp := CatalogResponse{
		Books:           make([]BookSummary, len(state.Books)),
		SelectedID:      state.SelectedID,
		SelectedChapter: state.SelectedChapter,
	}
	for i, b := range state.Books {
		resp.Books[i] = summarize(b)
	}
	writeJSON(w, r.Context(), http.StatusOK, resp)
}

// Get returns one book with its table of contents.
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.catalog.Book(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r.Context(), err, "Failed to get book")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, detail(b))
}

// Current returns the selected book and chapter.
func (h *BooksHandler) Current(w http.ResponseWriter, r *http.Request) {
	b, index, ok := h.catalog.Current()
	if !ok {
		writeError(w, http.StatusNotFound, "No book selected")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, struct {
		BookDetail
		SelectedChapter int `json:"selectedChapter"`
	}{detail(b), index})
}

// Chapter returns one chapter as text or rendered HTML.
func (h *BooksHandler) Chapter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	b, err := h.catalog.Book(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, ctx, err, "Failed to get chapter")
		return
	}
	index, ok := chapterIndexParam(w, r)
	if !ok {
		return
	}
	ch, found := b.Chapter(index)
	if !found {
		handleError(w, ctx, catalog.ErrChapterOutOfRange, "Failed to get chapter")
		return
	}

	resp := ChapterResponse{BookID: b.ID, Index: ch.Index, Title: ch.Title, Content: ch.Content, Format: "text"}
	if r.URL.Query().Get("format") == "html" {
		html, err := h.renderer.Render(b.FileName, ch.Content)
		if err != nil {
			handleError(w, ctx, err, "Failed to render chapter")
			return
		}
		resp.Content = string(html)
		resp.Format = "html"
	}
	writeJSON(w, ctx, http.StatusOK, resp)
}

// SetPosition selects a chapter of a book and records it as read.
func (h *BooksHandler) SetPosition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChapterIndex == nil {
		logger.WarnContext(ctx, "invalid position body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	b, err := h.catalog.SelectChapter(ctx, chi.URLParam(r, "id"), *req.ChapterIndex)
	if err != nil {
		handleError(w, ctx, err, "Failed to save reading position")
		return
	}
	writeJSON(w, ctx, http.StatusOK, PositionResponse{BookSummary: summarize(b), Moved: true})
}

// Next moves to the following chapter.
func (h *BooksHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.catalog.Next)
}

// Previous moves to the preceding chapter.
func (h *BooksHandler) Previous(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.catalog.Previous)
}

type stepFunc func(ctx context.Context, id string) (book.Book, bool, error)

func (h *BooksHandler) step(w http.ResponseWriter, r *http.Request, move stepFunc) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if _, err := h.catalog.Book(id); err != nil {
		handleError(w, ctx, err, "Failed to move")
		return
	}
	b, moved, err := move(ctx, id)
	if err != nil {
		handleError(w, ctx, err, "Failed to save reading position")
		return
	}
	writeJSON(w, ctx, http.StatusOK, PositionResponse{BookSummary: summarize(b), Moved: moved})
}

// Select makes a book current.
func (h *BooksHandler) Select(w http.ResponseWriter, r *http.Request) {
	b, err := h.catalog.Select(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r.Context(), err, "Failed to select book")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, detail(b))
}

// Hide removes a remote book from this session's catalog.
func (h *BooksHandler) Hide(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Hide(chi.URLParam(r, "id")); err != nil {
		handleError(w, r.Context(), err, "Failed to hide book")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a local book. Remote books are refused with 403.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r.Context(), err, "Failed to delete book")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reload re-reads the manifest and the local store.
func (h *BooksHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Load(r.Context()); err != nil {
		handleError(w, r.Context(), err, "Local books are unavailable")
		return
	}
	h.List(w, r)
}

func chapterIndexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid chapter index")
		return 0, false
	}
	return index, true
}
