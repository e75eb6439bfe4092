package remote

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_source.go -package=mocks zenreader/internal/remote Source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"zenreader/internal/contextutil"
)

// ManifestEntry describes one published book.
type ManifestEntry struct {
	Title string `json:"title"`
	File  string `json:"file"` // Path relative to the publishing root
	// VisibleChapters caps the chapter list when positive. A value that is
	// not a JSON number decodes as nil (no cap).
	VisibleChapters *float64 `json:"visibleChapters,omitempty"`
}

// UnmarshalJSON decodes an entry, ignoring a visibleChapters value that is
// not a number.
func (e *ManifestEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title           string          `json:"title"`
		File            string          `json:"file"`
		VisibleChapters json.RawMessage `json:"visibleChapters"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*e = ManifestEntry{Title: raw.Title, File: raw.File}
	var n float64
	if len(raw.VisibleChapters) > 0 && json.Unmarshal(raw.VisibleChapters, &n) == nil {
		e.VisibleChapters = &n
	}
	return nil
}

// Source fetches the manifest and book bodies from a publishing root.
type Source interface {
	// FetchManifest returns the manifest entries in published order.
	FetchManifest(ctx context.Context) ([]ManifestEntry, error)
	// FetchText returns the UTF-8 body of the named file.
	FetchText(ctx context.Context, file string) (string, error)
}

// HTTPSource reads the publishing root over HTTP, or from a local directory
// through a file transport.
type HTTPSource struct {
	BaseURL      *url.URL
	ManifestName string
	client       *http.Client
}

// NewHTTPSource creates a Source for root. An http(s) URL is fetched over the
// network; anything else is treated as a local directory.
func NewHTTPSource(root, manifestName string) (*HTTPSource, error) {
	if root == "" {
		return nil, fmt.Errorf("empty publishing root")
	}
	if manifestName == "" {
		manifestName = "manifest.json"
	}

	if strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://") {
		base, err := url.Parse(root)
		if err != nil {
			return nil, fmt.Errorf("invalid publishing root: %w", err)
		}
		return &HTTPSource{BaseURL: base, ManifestName: manifestName, client: &http.Client{}}, nil
	}

	return &HTTPSource{
		BaseURL:      &url.URL{Scheme: "file", Path: "/"},
		ManifestName: manifestName,
		client:       &http.Client{Transport: http.NewFileTransport(http.Dir(root))},
	}, nil
}

// FetchManifest fetches and decodes the manifest. The manifest must be a
// JSON array; an element that does not decode, or names no file, is logged
// and skipped without affecting the others.
func (s *HTTPSource) FetchManifest(ctx context.Context) ([]ManifestEntry, error) {
	logger := contextutil.LoggerFromContext(ctx)

	body, err := s.get(ctx, s.ManifestName)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	entries := make([]ManifestEntry, 0, len(items))
	for i, item := range items {
		var entry ManifestEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			logger.WarnContext(ctx, "skipping malformed manifest entry", "position", i, "error", err)
			continue
		}
		if entry.File == "" {
			logger.WarnContext(ctx, "skipping manifest entry without file", "position", i, "title", entry.Title)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// FetchText fetches a book body.
func (s *HTTPSource) FetchText(ctx context.Context, file string) (string, error) {
	body, err := s.get(ctx, file)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(body), "\ufeff"), nil
}

func (s *HTTPSource) get(ctx context.Context, name string) ([]byte, error) {
	u, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status %d for %s", resp.StatusCode, name)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return body, nil
}

// resolve joins name onto the base path, refusing names that climb out of it.
func (s *HTTPSource) resolve(name string) (*url.URL, error) {
	if name == "" {
		return nil, fmt.Errorf("empty file reference")
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return nil, fmt.Errorf("invalid file reference %q", name)
		}
	}

	u := *s.BaseURL
	u.Path = path.Join("/", s.BaseURL.Path, name)
	u.RawPath = ""
	return &u, nil
}
