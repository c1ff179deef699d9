package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/internal/utils"
)

type openSessionRequest struct {
	Username string `json:"username"`
}

type openSessionResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// openSession handles POST /api/session. The user is created on first
// contact; the issued token travels both in the Authorization header and
// the JSON body.
func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	user, token, err := h.services.Session.Open(ctx, req.Username)
	if err != nil {
		log.Err(err).Str("username", req.Username).Msg("session open failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	w.Header().Set("Authorization", fmt.Sprintf("Bearer %s", token.SignedString))
	_, _ = utils.WriteJSON(w, openSessionResponse{
		ID:       user.ID,
		Username: user.Username,
		Token:    token.SignedString,
	}, http.StatusOK)
}
