package config

import (
	"fmt"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
)

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid. All wrap
// [apperrors.ErrConfiguration] so top-level handlers can catch the whole
// class at once.
var (
	// ErrInvalidStorageConfigs indicates invalid storage settings
	// (for example, unknown driver name or empty postgres DSN).
	ErrInvalidStorageConfigs = fmt.Errorf("%w: invalid storage configuration", apperrors.ErrConfiguration)

	// ErrInvalidProviderConfigs indicates invalid provider settings
	// (for example, unknown provider name or missing API key).
	ErrInvalidProviderConfigs = fmt.Errorf("%w: invalid provider configuration", apperrors.ErrConfiguration)

	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, missing token sign key when auth is required).
	ErrInvalidAppConfigs = fmt.Errorf("%w: invalid app configuration", apperrors.ErrConfiguration)
)
