package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"zenreader/internal/catalog"
	"zenreader/internal/handlers"
	"zenreader/internal/importer"
	"zenreader/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Catalog      *catalog.Catalog
	Importer     *importer.Importer
	Assistant    service.AssistantService
	HealthChecks []handlers.Check
	IndexHTML    string // Reader page served at /
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	renderer := handlers.NewChapterRenderer()
	books := handlers.NewBooksHandler(deps.Catalog, renderer)
	assistant := handlers.NewAssistantHandler(deps.Assistant)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.HealthChecks...))

		r.Get("/books", books.List)
		r.Get("/books/current", books.Current)
		r.Route("/books/{id}", func(r chi.Router) {
			r.Get("/", books.Get)
			r.Delete("/", books.Delete)
			r.Put("/position", books.SetPosition)
			r.Post("/next", books.Next)
			r.Post("/previous", books.Previous)
			r.Post("/select", books.Select)
			r.Post("/hide", books.Hide)

			r.Route("/chapters/{index}", func(r chi.Router) {
				r.Get("/", books.Chapter)
				r.Post("/summary", assistant.Summarize)
				r.Post("/ask", assistant.Ask)
				r.Post("/character", assistant.Character)
			})
		})

		r.Method(http.MethodPost, "/import", handlers.NewImportHandler(deps.Importer, deps.Catalog))
		r.Post("/catalog/reload", books.Reload)
	})

	r.Method(http.MethodGet, "/books/{id}/chapters/{index}", handlers.NewChapterPageHandler(deps.Catalog, renderer))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(deps.IndexHTML))
	})

	return r
}
