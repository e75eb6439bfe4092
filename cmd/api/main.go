package main

import (
	"context"
	_ "embed"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zenreader/internal/catalog"
	"zenreader/internal/config"
	"zenreader/internal/handlers"
	"zenreader/internal/http"
	"zenreader/internal/importer"
	"zenreader/internal/llm"
	"zenreader/internal/remote"
	"zenreader/internal/service"
	"zenreader/internal/storage"
)

//go:embed web/index.html
var indexHTML string

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "driver", cfg.DBDriver, "path", cfg.DBPath)

	bookRepo := storage.NewBookRepo(db)

	// Remote library is optional
	var source remote.Source
	if cfg.NovelsRoot != "" {
		httpSource, err := remote.NewHTTPSource(cfg.NovelsRoot, cfg.ManifestName)
		if err != nil {
			log.Fatalf("Failed to configure remote library: %v", err)
		}
		source = httpSource
		slog.Info("Remote library configured", "root", cfg.NovelsRoot, "manifest", cfg.ManifestName)
	} else {
		slog.Info("No remote library configured")
	}
	loader := remote.NewLoader(source, cfg.RemoteFetchConcurrency)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	books := catalog.New(bookRepo, loader)
	if err := books.Load(ctx); err != nil {
		slog.Error("Catalog loaded with errors", "error", err)
	}

	healthChecks := []handlers.Check{handlers.DatabaseCheck(db)}

	// A nil client disables the reading assistant
	var llmClient service.LLMClient
	if cfg.AssistantEnabled() {
		client := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName, cfg.LLMRequestsPerMinute)
		llmClient = client
		healthChecks = append(healthChecks, handlers.Check{Name: "llm", Ping: client.Ping, Optional: true})
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName, "requests_per_minute", cfg.LLMRequestsPerMinute)
	} else {
		slog.Info("Reading assistant disabled, LLM_BASE_URL is not set")
	}

	deps := &http.Deps{
		Catalog:      books,
		Importer:     importer.New(bookRepo),
		Assistant:    service.NewAssistantService(llmClient, books),
		HealthChecks: healthChecks,
		IndexHTML:    indexHTML,
	}

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           http.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed: %v", err)
	}
	slog.Info("API server stopped")
}
