package http

import (
	"net/http"

	"github.com/avoronov/go-chat-keeper/internal/utils"
)

type versionResponse struct {
	Version  string `json:"version"`
	Provider string `json:"provider"`
}

// getVersion handles GET /api/version.
func (h *Handler) getVersion(w http.ResponseWriter, r *http.Request) {
	_, _ = utils.WriteJSON(w, versionResponse{
		Version:  h.version,
		Provider: h.services.Chat.ProviderName(),
	}, http.StatusOK)
}
