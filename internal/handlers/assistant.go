package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"zenreader/internal/contextutil"
	"zenreader/internal/service"
)

// AssistantHandler exposes the reading assistant for a chapter.
type AssistantHandler struct {
	assistant service.AssistantService
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(assistant service.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// AskRequest represents the HTTP request payload for a question.
type AskRequest struct {
	Question string        `json:"question"`
	History  []HistoryTurn `json:"history,omitempty"`
}

// HistoryTurn is one earlier message of the conversation.
type HistoryTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// CharacterRequest names the character to analyze.
type CharacterRequest struct {
	Name string `json:"name"`
}

// AssistantResponse represents the HTTP response payload of the assistant.
type AssistantResponse struct {
	Reply string `json:"reply"`
}

// Summarize summarizes a chapter.
func (h *AssistantHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	ref, ok := chapterRef(w, r)
	if !ok {
		return
	}
	resp, err := h.assistant.Summarize(r.Context(), ref)
	if err != nil {
		handleError(w, r.Context(), err, "Failed to summarize chapter")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, AssistantResponse{Reply: resp.Reply})
}

// Ask answers a question about a chapter. With ?stream=true the reply is
// sent as Server-Sent Events.
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	ref, ok := chapterRef(w, r)
	if !ok {
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcReq := service.AskRequest{ChapterRef: ref, Question: req.Question}
	for _, turn := range req.History {
		svcReq.History = append(svcReq.History, service.Turn{Role: turn.Role, Text: turn.Text})
	}

	if r.URL.Query().Get("stream") == "true" {
		h.streamAsk(w, r, svcReq)
		return
	}

	resp, err := h.assistant.Ask(ctx, svcReq)
	if err != nil {
		handleError(w, ctx, err, "Failed to answer question")
		return
	}
	writeJSON(w, ctx, http.StatusOK, AssistantResponse{Reply: resp.Reply})
}

func (h *AssistantHandler) streamAsk(w http.ResponseWriter, r *http.Request, req service.AskRequest) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	started := false
	err := h.assistant.StreamAsk(ctx, req, func(chunk string) error {
		if !started {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			started = true
		}
		// Multi-line chunks become one SSE event with several data lines.
		for _, line := range strings.Split(chunk, "\n") {
			if _, err := fmt.Fprintf(w, "data: %s\n", line); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, "\n"); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	if err != nil {
		if !started {
			handleError(w, ctx, err, "Failed to answer question")
			return
		}
		logger.ErrorContext(ctx, "error streaming answer", "error", err)
		payload, _ := json.Marshal(ErrorResponse{Error: "stream interrupted"})
		_, _ = fmt.Fprintf(w, "event: error\ndata: %s\n\n", payload)
		flusher.Flush()
		return
	}

	if !started {
		w.Header().Set("Content-Type", "text/event-stream")
	}
	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// Character analyzes a named character using the chapter as context.
func (h *AssistantHandler) Character(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ref, ok := chapterRef(w, r)
	if !ok {
		return
	}
	var req CharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.assistant.AnalyzeCharacter(ctx, service.CharacterRequest{ChapterRef: ref, Name: req.Name})
	if err != nil {
		handleError(w, ctx, err, "Failed to analyze character")
		return
	}
	writeJSON(w, ctx, http.StatusOK, AssistantResponse{Reply: resp.Reply})
}

func chapterRef(w http.ResponseWriter, r *http.Request) (service.ChapterRef, bool) {
	index, ok := chapterIndexParam(w, r)
	if !ok {
		return service.ChapterRef{}, false
	}
	return service.ChapterRef{BookID: chi.URLParam(r, "id"), ChapterIndex: index}, true
}
