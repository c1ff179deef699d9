package service

import (
	"fmt"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
)

var (
	ErrEmptyUsername = fmt.Errorf("%w: empty username", apperrors.ErrValidation)
	ErrEmptyMessage  = fmt.Errorf("%w: empty message", apperrors.ErrValidation)

	ErrInvalidToken = fmt.Errorf("%w: invalid session token", apperrors.ErrAuthentication)
)
