package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScannedFile is a text file found while walking an import folder.
type ScannedFile struct {
	RelPath string // Relative path from the folder root, slash separated
	AbsPath string
}

// ScanDir walks root and returns every supported text file below it.
// Hidden directories are skipped.
func ScanDir(ctx context.Context, root string) ([]ScannedFile, error) {
	var scanned []ScannedFile

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !Supported(d.Name(), "") {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		scanned = append(scanned, ScannedFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
		})
		return nil
	})
	if err != nil {
		return scanned, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return scanned, nil
}

// ReadFiles reads and decodes scanned files into import input. The book
// file name is the base name of each file; the relative path is kept so the
// batch imports in folder order.
func ReadFiles(scanned []ScannedFile) ([]File, error) {
	files := make([]File, 0, len(scanned))
	for _, s := range scanned {
		data, err := os.ReadFile(s.AbsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", s.RelPath, err)
		}
		text, err := DecodeText(data, "")
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", s.RelPath, err)
		}
		files = append(files, File{Name: filepath.Base(s.AbsPath), Path: s.RelPath, Text: text})
	}
	return files, nil
}
