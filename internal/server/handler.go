// Package server exposes books, highlights, sync and chat over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/at-ishikawa/bookrise/internal/bookrise"
	"github.com/at-ishikawa/bookrise/internal/notesync"
	"github.com/at-ishikawa/bookrise/internal/session"
)

//go:generate mockgen -source=handler.go -destination=../mocks/server/mock_handler.go -package=mock_server

// Service is the subset of session.Session the handlers use.
type Service interface {
	ListBooks(ctx context.Context) ([]bookrise.Book, error)
	ListHighlights(ctx context.Context, bookID string) ([]bookrise.Highlight, error)
	Chat(ctx context.Context, request bookrise.ChatRequest, onChunk bookrise.ChunkHandler) (*bookrise.ChatResponse, error)
	SyncSettings() notesync.Settings
	Sync(ctx context.Context, settings notesync.Settings) (notesync.Report, error)
}

type Handler struct {
	service Service
	mux     *http.ServeMux
}

func NewHandler(service Service) *Handler {
	h := &Handler{
		service: service,
		mux:     http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /api/books", h.listBooks)
	h.mux.HandleFunc("GET /api/books/{id}/highlights", h.listHighlights)
	h.mux.HandleFunc("POST /api/sync", h.sync)
	h.mux.HandleFunc("POST /api/chat", h.chat)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type syncRequest struct {
	Folder       string `json:"folder"`
	PerHighlight *bool  `json:"per_highlight"`
}

type bookFailure struct {
	BookID string `json:"book_id"`
	Title  string `json:"title"`
	Error  string `json:"error"`
}

type syncResponse struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Failures  []bookFailure `json:"failures"`
}

type chatRequest struct {
	BookID     string   `json:"book_id"`
	Message    string   `json:"message"`
	ContextIDs []string `json:"context_ids"`
	Stream     bool     `json:"stream"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Default().Error("Failed to encode a response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Default().Debug("Failed to write a response", "error", err)
	}
}

func statusOf(err error) int {
	var apiError *bookrise.APIError
	switch {
	case errors.Is(err, bookrise.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, bookrise.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.As(err, &apiError),
		errors.Is(err, bookrise.ErrMalformedResponse),
		errors.Is(err, bookrise.ErrEmptyResponse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	slog.Default().Error("Request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err)
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Join(bookrise.ErrInvalidArgument, err)
	}
	return nil
}

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *Handler) listHighlights(w http.ResponseWriter, r *http.Request) {
	highlights, err := h.service.ListHighlights(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, highlights)
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	var request syncRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, r, err)
		return
	}

	settings := h.service.SyncSettings()
	if folder := strings.TrimSpace(request.Folder); folder != "" {
		settings.Folder = folder
	}
	if request.PerHighlight != nil {
		settings.Mode = notesync.ModeAggregate
		if *request.PerHighlight {
			settings.Mode = notesync.ModePerHighlight
		}
	}

	report, err := h.service.Sync(r.Context(), settings)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response := syncResponse{
		Total:     report.Total,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Failures:  make([]bookFailure, 0, len(report.Failures)),
	}
	for _, failure := range report.Failures {
		response.Failures = append(response.Failures, bookFailure{
			BookID: failure.BookID,
			Title:  failure.Title,
			Error:  failure.Err.Error(),
		})
	}
	writeJSON(w, http.StatusOK, response)
}
