package handlers

import (
	"io"
	"net/http"

	"zenreader/internal/catalog"
	"zenreader/internal/contextutil"
	"zenreader/internal/importer"
)

const maxImportBytes = 64 << 20

// ImportHandler accepts uploaded novel files.
type ImportHandler struct {
	importer *importer.Importer
	catalog  *catalog.Catalog
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(im *importer.Importer, c *catalog.Catalog) *ImportHandler {
	return &ImportHandler{importer: im, catalog: c}
}

// ImportResponse reports the outcome of an upload.
type ImportResponse struct {
	Imported []BookSummary      `json:"imported"`
	Skipped  []importer.Skipped `json:"skipped"`
	Error    string             `json:"error,omitempty"`
}

// ServeHTTP imports every part named "files" of a multipart upload. Files
// are persisted before they appear in the catalog.
func (h *ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		logger.WarnContext(ctx, "invalid upload", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart upload")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	files := make([]importer.File, 0, len(headers))
	unreadable := []importer.Skipped{}
	for _, fh := range headers {
		mimeType := fh.Header.Get("Content-Type")

		f, err := fh.Open()
		if err != nil {
			unreadable = append(unreadable, importer.Skipped{Name: fh.Filename, Reason: "unreadable"})
			continue
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			unreadable = append(unreadable, importer.Skipped{Name: fh.Filename, Reason: "unreadable"})
			continue
		}

		text, err := importer.DecodeText(data, mimeType)
		if err != nil {
			logger.WarnContext(ctx, "could not decode upload", "file", fh.Filename, "error", err)
			unreadable = append(unreadable, importer.Skipped{Name: fh.Filename, Reason: "undecodable"})
			continue
		}
		files = append(files, importer.File{Name: fh.Filename, MimeType: mimeType, Text: text})
	}

	result, err := h.importer.Import(ctx, files)
	h.catalog.Add(result.Books...)

	resp := ImportResponse{
		Imported: make([]BookSummary, len(result.Books)),
		Skipped:  append(unreadable, result.Skipped...),
	}
	for i, b := range result.Books {
		resp.Imported[i] = summarize(b)
	}

	status := http.StatusOK
	if len(result.Books) > 0 {
		status = http.StatusCreated
	}
	if err != nil {
		resp.Error = "Some files could not be saved"
		if len(result.Books) == 0 {
			status = http.StatusInternalServerError
		}
	}
	writeJSON(w, ctx, status, resp)
}
