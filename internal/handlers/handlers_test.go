package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"zenreader/internal/book"
	"zenreader/internal/catalog"
	catalogmocks "zenreader/internal/catalog/mocks"
	"zenreader/internal/importer"
	"zenreader/internal/segmenter"
	"zenreader/internal/service"
	"zenreader/internal/storage/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func remoteBook() book.Book {
	return book.Book{
		ID:       "static-demo.txt",
		Title:    "Demo",
		FileName: "demo.txt",
		Chapters: segmenter.Segment("第1章 一\n甲\n第2章 二\n乙"),
		Progress: 50,
		IsRemote: true,
	}
}

func localBook() book.Book {
	return book.Book{
		ID:       "local-1",
		Title:    "笔记",
		FileName: "笔记.md",
		Chapters: segmenter.Segment("# 开篇\n**粗体**\n# 结尾\n完"),
		Progress: 50,
	}
}

type fixture struct {
	store   *mocks.MockBookStore
	catalog *catalog.Catalog
	router  chi.Router
}

func newFixture(t *testing.T, ctrl *gomock.Controller, assistant service.AssistantService) *fixture {
	t.Helper()

	store := mocks.NewMockBookStore(ctrl)
	loader := catalogmocks.NewMockRemoteLoader(ctrl)
	loader.EXPECT().Load(gomock.Any()).DoAndReturn(func(context.Context) []book.Book {
		return []book.Book{remoteBook()}
	}).AnyTimes()
	store.EXPECT().GetAll(gomock.Any()).DoAndReturn(func(context.Context) ([]book.Book, error) {
		return []book.Book{localBook()}, nil
	}).Times(1)

	c := catalog.New(store, loader)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	renderer := NewChapterRenderer()
	books := NewBooksHandler(c, renderer)
	imports := NewImportHandler(importer.New(store), c)

	r := chi.NewRouter()
	r.Get("/api/books", books.List)
	r.Get("/api/books/current", books.Current)
	r.Get("/api/books/{id}", books.Get)
	r.Delete("/api/books/{id}", books.Delete)
	r.Get("/api/books/{id}/chapters/{index}", books.Chapter)
	r.Put("/api/books/{id}/position", books.SetPosition)
	r.Post("/api/books/{id}/next", books.Next)
	r.Post("/api/books/{id}/previous", books.Previous)
	r.Post("/api/books/{id}/select", books.Select)
	r.Post("/api/books/{id}/hide", books.Hide)
	r.Post("/api/catalog/reload", books.Reload)
	r.Method("POST", "/api/import", imports)
	r.Method("GET", "/books/{id}/chapters/{index}", NewChapterPageHandler(c, renderer))
	if assistant != nil {
		ah := NewAssistantHandler(assistant)
		r.Post("/api/books/{id}/chapters/{index}/summary", ah.Summarize)
		r.Post("/api/books/{id}/chapters/{index}/ask", ah.Ask)
		r.Post("/api/books/{id}/chapters/{index}/character", ah.Character)
	}

	return &fixture{store: store, catalog: c, router: r}
}
