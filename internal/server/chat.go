package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/at-ishikawa/bookrise/internal/bookrise"
	"github.com/at-ishikawa/bookrise/internal/eventstream"
)

const streamWriteTimeout = 60 * time.Second

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var request chatRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, r, err)
		return
	}
	chatRequest := bookrise.ChatRequest{
		BookID:     request.BookID,
		Prompt:     request.Message,
		ContextIDs: request.ContextIDs,
	}

	if !request.Stream {
		response, err := h.service.Chat(r.Context(), chatRequest, nil)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, response)
		return
	}
	h.relay(w, r, chatRequest)
}

// relay forwards the answer as an event stream. Headers are only sent with the first
// chunk, so failures before any text arrives still get a regular error status.
func (h *Handler) relay(w http.ResponseWriter, r *http.Request, request bookrise.ChatRequest) {
	rc := http.NewResponseController(w)
	encoder := eventstream.NewEncoder(w)
	started := false
	writeFailed := false

	start := func() {
		if started {
			return
		}
		started = true
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
	}
	flush := func() {
		if err := rc.Flush(); err != nil {
			slog.Default().Debug("Failed to flush the event stream", "error", err)
		}
		if err := rc.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
			slog.Default().Debug("Failed to set a write deadline", "error", err)
		}
	}

	response, err := h.service.Chat(r.Context(), request, func(chunk string) {
		start()
		if writeFailed {
			return
		}
		if err := encoder.WriteChunk(chunk); err != nil {
			writeFailed = true
			slog.Default().Info("Client disconnected during a chat stream", "error", err)
			return
		}
		flush()
	})
	if err != nil && !started {
		writeError(w, r, err)
		return
	}
	start()
	if writeFailed {
		return
	}

	if err != nil {
		slog.Default().Error("Chat stream failed", "bookID", request.BookID, "error", err)
		if err := encoder.WriteError(err.Error()); err != nil {
			return
		}
	} else if err := encoder.WriteCitations(response.CitedChapters, response.CitedParagraphIDs); err != nil {
		return
	}
	if err := encoder.WriteDone(); err != nil {
		return
	}
	flush()
}
