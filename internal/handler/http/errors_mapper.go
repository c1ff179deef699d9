package http

import (
	"errors"
	"net/http"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
)

// statusFromError maps the error taxonomy onto HTTP status codes. Kinds are
// checked from most to least specific; anything outside the taxonomy is a
// plain 500.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrRepository):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrProvider):
		return http.StatusBadGateway
	case errors.Is(err, apperrors.ErrStorage):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
