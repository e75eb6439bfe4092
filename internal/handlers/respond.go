package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"zenreader/internal/catalog"
	"zenreader/internal/contextutil"
	"zenreader/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, ctx context.Context, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// handleError maps catalog and service errors to HTTP status codes.
func handleError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		logger.WarnContext(ctx, "validation error", "error", err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
	case errors.Is(err, catalog.ErrUnknownBook), errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Book not found")
	case errors.Is(err, catalog.ErrChapterOutOfRange):
		writeError(w, http.StatusBadRequest, "Chapter index out of range")
	case errors.Is(err, catalog.ErrRemoteBook):
		writeError(w, http.StatusForbidden, "Remote books cannot be deleted")
	case errors.Is(err, catalog.ErrNotRemote):
		writeError(w, http.StatusConflict, "Only remote books can be hidden")
	case errors.Is(err, service.ErrAssistantDisabled):
		writeError(w, http.StatusServiceUnavailable, "Assistant is not configured")
	case errors.Is(err, service.ErrExternalService):
		logger.ErrorContext(ctx, "external service error", "error", err)
		writeError(w, http.StatusBadGateway, "External service error")
	default:
		logger.ErrorContext(ctx, "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}
