package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/internal/utils"
	"github.com/avoronov/go-chat-keeper/models"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type sendMessageRequest struct {
	Content string `json:"content"`
}

// streamEvent is one NDJSON line of a streaming chat response. Fragment
// lines carry a chunk of the reply; the final line sets done and the stored
// assistant message.
type streamEvent struct {
	Chunk   string           `json:"chunk,omitempty"`
	Done    bool             `json:"done,omitempty"`
	Message *messageResponse `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type messageResponse struct {
	ID        int64     `json:"id"`
	Provider  string    `json:"provider"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func toMessageResponse(msg models.ChatMessage) *messageResponse {
	return &messageResponse{
		ID:        msg.ID,
		Provider:  msg.Provider,
		Role:      msg.Role.String(),
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}
}

// sendMessage handles POST /api/chat/message. The reply is streamed back as
// NDJSON: one {"chunk": ...} line per provider fragment, then a final
// {"done": true, "message": {...}} line with the stored assistant message.
//
// Because fragments are flushed as they arrive, a provider failure mid-way
// is reported as a terminal {"error": ...} line rather than an HTTP status.
func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")

	encoder := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	streamed := false

	assistantMsg, err := h.services.Chat.Send(ctx, userID, req.Content, func(chunk string) error {
		streamed = true
		if encodeErr := encoder.Encode(streamEvent{Chunk: chunk}); encodeErr != nil {
			return encodeErr
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("chat turn failed")
		if streamed {
			// headers are gone, report the failure in-band
			_ = encoder.Encode(streamEvent{Error: http.StatusText(statusFromError(err))})
			return
		}
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	_ = encoder.Encode(streamEvent{Done: true, Message: toMessageResponse(assistantMsg)})
}

// getHistory handles GET /api/chat/history?limit=&offset=. Messages come
// back most recent first.
func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	limit, err := queryInt(r, "limit", defaultHistoryLimit)
	if err != nil || limit <= 0 || limit > maxHistoryLimit {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		http.Error(w, "invalid offset", http.StatusBadRequest)
		return
	}

	messages, err := h.services.History.Messages(ctx, userID, limit, offset)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("history read failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	responses := make([]*messageResponse, 0, len(messages))
	for _, msg := range messages {
		responses = append(responses, toMessageResponse(msg))
	}

	_, _ = utils.WriteJSON(w, responses, http.StatusOK)
}

type clearHistoryResponse struct {
	Removed int64 `json:"removed"`
}

// clearHistory handles DELETE /api/chat/history.
func (h *Handler) clearHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	removed, err := h.services.History.Clear(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("history clear failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	_, _ = utils.WriteJSON(w, clearHistoryResponse{Removed: removed}, http.StatusOK)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
