package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"zenreader/internal/config"
	"zenreader/internal/importer"
	"zenreader/internal/storage"
)

// import walks a directory of .txt and .md files and adds each one to the
// local library as a new book.
func main() {
	dir := flag.String("dir", "", "directory to import (required)")
	dryRun := flag.Bool("dry-run", false, "list the files that would be imported and exit")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	scanned, err := importer.ScanDir(ctx, *dir)
	if err != nil {
		log.Fatalf("Failed to scan %s: %v", *dir, err)
	}
	importer.SortByName(scanned, func(f importer.ScannedFile) string { return f.RelPath })

	if *dryRun {
		for _, f := range scanned {
			fmt.Println(f.RelPath)
		}
		return
	}

	files, err := importer.ReadFiles(scanned)
	if err != nil {
		log.Fatalf("Failed to read files: %v", err)
	}

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

	result, err := importer.New(storage.NewBookRepo(db)).Import(ctx, files)
	for _, b := range result.Books {
		fmt.Printf("imported %s (%d chapters)\n", b.FileName, len(b.Chapters))
	}
	for _, s := range result.Skipped {
		fmt.Printf("skipped %s: %s\n", s.Name, s.Reason)
	}
	if err != nil {
		slog.Error("Import completed with errors", "error", err)
		os.Exit(1)
	}
}
