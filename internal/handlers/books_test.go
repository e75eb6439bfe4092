package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"zenreader/internal/book"
)

func serve(f *fixture, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestBooksHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl, nil)

	w := serve(f, http.MethodGet, "/api/books", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp CatalogResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Books) != 2 || resp.Books[0].ID != "static-demo.txt" || resp.Books[1].ID != "local-1" {
		t.Errorf("List() books = %+v, want remote then local", resp.Books)
	}
	if !resp.Books[0].IsRemote || resp.Books[0].ChapterCount != 2 {
		t.Errorf("List() remote summary = %+v", resp.Books[0])
	}
	if strings.Contains(w.Body.String(), "甲") {
		t.Error("List() leaked chapter text")
	}
}

func TestBooksHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl, nil)

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{name: "known book", target: "/api/books/local-1", wantStatus: http.StatusOK},
		{name: "remote id with dot", target: "/api/books/static-demo.txt", wantStatus: http.StatusOK},
		{name: "unknown book", target: "/api/books/ghost", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(f, http.MethodGet, tt.target, "")
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	w := serve(f, http.MethodGet, "/api/books/local-1", "")
	var resp BookDetail
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Chapters) != 2 || resp.Chapters[1].Title != "结尾" {
		t.Errorf("Get() chapters = %+v", resp.Chapters)
	}
}

func TestBooksHandler_Chapter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl, nil)

	tests := []struct {
		name        string
		target      string
		wantStatus  int
		wantContent string
	}{
		{name: "text", target: "/api/books/static-demo.txt/chapters/1", wantStatus: http.StatusOK, wantContent: "乙"},
		{name: "markdown as html", target: "/api/books/local-1/chapters/0?format=html", wantStatus: http.StatusOK, wantContent: "<strong>粗体</strong>"},
		{name: "out of range", target: "/api/books/local-1/chapters/2", wantStatus: http.StatusBadRequest},
		{name: "negative", target: "/api/books/local-1/chapters/-1", wantStatus: http.StatusBadRequest},
		{name: "not a number", target: "/api/books/local-1/chapters/first", wantStatus: http.StatusBadRequest},
		{name: "unknown book", target: "/api/books/ghost/chapters/0", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(f, http.MethodGet, tt.target, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantContent == "" {
				return
			}
			var resp ChapterResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(resp.Content, tt.wantContent) {
				t.Errorf("content = %q, want it to contain %q", resp.Content, tt.wantContent)
			}
		})
	}
}

func TestBooksHandler_SetPosition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name         string
		target       string
		body         string
		mockSetup    func(*fixture)
		wantStatus   int
		wantProgress int
	}{
		{
			name:   "local book persists",
			target: "/api/books/local-1/position",
			body:   `{"chapterIndex":1}`,
			mockSetup: func(f *fixture) {
				f.store.EXPECT().UpdateProgress(gomock.Any(), "local-1", 1).Return(nil)
			},
			wantStatus:   http.StatusOK,
			wantProgress: 100,
		},
		{
			name:         "remote book stays in memory",
			target:       "/api/books/static-demo.txt/position",
			body:         `{"chapterIndex":1}`,
			mockSetup:    func(*fixture) {},
			wantStatus:   http.StatusOK,
			wantProgress: 100,
		},
		{
			name:       "out of range",
			target:     "/api/books/local-1/position",
			body:       `{"chapterIndex":7}`,
			mockSetup:  func(*fixture) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing index",
			target:     "/api/books/local-1/position",
			body:       `{}`,
			mockSetup:  func(*fixture) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown book",
			target:     "/api/books/ghost/position",
			body:       `{"chapterIndex":0}`,
			mockSetup:  func(*fixture) {},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "store failure",
			target: "/api/books/local-1/position",
			body:   `{"chapterIndex":1}`,
			mockSetup: func(f *fixture) {
				f.store.EXPECT().UpdateProgress(gomock.Any(), "local-1", 1).Return(errors.New("disk full"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, ctrl, nil)
			tt.mockSetup(f)

			w := serve(f, http.MethodPut, tt.target, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp PositionResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Progress != tt.wantProgress || !resp.Moved {
				t.Errorf("position = %+v", resp)
			}
		})
	}
}

func TestBooksHandler_NextPrevious(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl, nil)

	f.store.EXPECT().UpdateProgress(gomock.Any(), "local-1", 1).Return(nil)

	steps := []struct {
		target    string
		wantMoved bool
		wantIndex int
	}{
		{target: "/api/books/local-1/previous", wantMoved: false, wantIndex: 0},
		{target: "/api/books/local-1/next", wantMoved: true, wantIndex: 1},
		{target: "/api/books/local-1/next", wantMoved: false, wantIndex: 1},
	}
	for _, s := range steps {
		w := serve(f, http.MethodPost, s.target, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d", s.target, w.Code)
		}
		var resp PositionResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Moved != s.wantMoved || resp.LastReadChapterIndex != s.wantIndex {
			t.Errorf("%s = moved %v index %d, want %v %d", s.target, resp.Moved, resp.LastReadChapterIndex, s.wantMoved, s.wantIndex)
		}
	}

	if w := serve(f, http.MethodPost, "/api/books/ghost/next", ""); w.Code != http.StatusNotFound {
		t.Errorf("next on unknown book status = %d, want 404", w.Code)
	}
}

func TestBooksHandler_SelectAndCurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl, nil)

	if w := serve(f, http.MethodGet, "/api/books/current", ""); w.Code != http.StatusNotFound {
		t.Errorf("current before select status = %d, want 404", w.Code)
	}
	if w := serve(f, http.MethodPost, "/api/books/static-demo.txt/select", ""); w.Code != http.StatusOK {
		t.Fatalf("select status = %d", w.Code)
	}
	w := serve(f, http.MethodGet, "/api/books/current", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"id":"static-demo.txt"`) {
		t.Errorf("current = %d %s", w.Code, w.Body.String())
	}
}

func TestBooksHandler_DeleteAndHide(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name       string
		method     string
		target     string
		mockSetup  func(*fixture)
		wantStatus int
		wantBooks  int
	}{
		{
			name:   "delete local",
			method: http.MethodDelete,
			target: "/api/books/local-1",
			mockSetup: func(f *fixture) {
				f.store.EXPECT().Delete(gomock.Any(), "local-1").Return(nil)
			},
			wantStatus: http.StatusNoContent,
			wantBooks:  1,
		},
		{
			name:       "delete remote is forbidden",
			method:     http.MethodDelete,
			target:     "/api/books/static-demo.txt",
			mockSetup:  func(*fixture) {},
			wantStatus: http.StatusForbidden,
			wantBooks:  2,
		},
		{
			name:   "delete unknown is a no-op",
			method: http.MethodDelete,
			target: "/api/books/ghost",
			mockSetup: func(f *fixture) {
				f.store.EXPECT().Delete(gomock.Any(), "ghost").Return(nil)
			},
			wantStatus: http.StatusNoContent,
			wantBooks:  2,
		},
		{
			name:       "hide remote",
			method:     http.MethodPost,
			target:     "/api/books/static-demo.txt/hide",
			mockSetup:  func(*fixture) {},
			wantStatus: http.StatusNoContent,
			wantBooks:  1,
		},
		{
			name:       "hide local conflicts",
			method:     http.MethodPost,
			target:     "/api/books/local-1/hide",
			mockSetup:  func(*fixture) {},
			wantStatus: http.StatusConflict,
			wantBooks:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, ctrl, nil)
			tt.mockSetup(f)

			w := serve(f, tt.method, tt.target, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if got := len(f.catalog.Books()); got != tt.wantBooks {
				t.Errorf("catalog has %d books, want %d", got, tt.wantBooks)
			}
		})
	}
}

func TestBooksHandler_Reload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl, nil)

	f.store.EXPECT().GetAll(gomock.Any()).Return(nil, errors.New("database is locked"))
	if w := serve(f, http.MethodPost, "/api/catalog/reload", ""); w.Code != http.StatusInternalServerError {
		t.Errorf("reload with failing store status = %d, want 500", w.Code)
	}
	if got := len(f.catalog.Books()); got != 1 {
		t.Errorf("catalog after failed reload has %d books, want the remote one", got)
	}
}

func multipartBody(t *testing.T, files map[string]string, order []string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range order {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write([]byte(files[name]))
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func TestImportHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl, nil)

	files := map[string]string{
		"002.txt":   "第1章 二\n乙",
		"001.txt":   "第1章 一\n甲",
		"cover.png": "png",
	}
	body, contentType := multipartBody(t, files, []string{"002.txt", "001.txt", "cover.png"})

	var saved []string
	f.store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b book.Book) error {
		saved = append(saved, b.FileName)
		return nil
	}).Times(2)

	req := httptest.NewRequest(http.MethodPost, "/api/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var resp ImportResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Imported) != 2 || resp.Imported[0].Title != "001" || resp.Imported[1].Title != "002" {
		t.Errorf("imported = %+v, want 001 then 002", resp.Imported)
	}
	if len(resp.Skipped) != 1 || resp.Skipped[0].Name != "cover.png" {
		t.Errorf("skipped = %+v", resp.Skipped)
	}
	if strings.Join(saved, ",") != "001.txt,002.txt" {
		t.Errorf("save order = %v", saved)
	}

	books := f.catalog.Books()
	if len(books) != 4 || books[2].FileName != "001.txt" || books[3].FileName != "002.txt" {
		t.Errorf("catalog after import = %d books", len(books))
	}
	if cur, _, ok := f.catalog.Current(); !ok || cur.FileName != "001.txt" {
		t.Errorf("Current() after import = %+v, %v; want 001.txt selected", cur.FileName, ok)
	}
}

func TestImportHandler_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("not multipart", func(t *testing.T) {
		f := newFixture(t, ctrl, nil)
		w := serve(f, http.MethodPost, "/api/import", `{"files":[]}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("no files", func(t *testing.T) {
		f := newFixture(t, ctrl, nil)
		body, contentType := multipartBody(t, nil, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("every save fails", func(t *testing.T) {
		f := newFixture(t, ctrl, nil)
		f.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
		body, contentType := multipartBody(t, map[string]string{"a.txt": "x"}, []string{"a.txt"})
		req := httptest.NewRequest(http.MethodPost, "/api/import", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", w.Code)
		}
		if len(f.catalog.Books()) != 2 {
			t.Error("failed import reached the catalog")
		}
	})
}
