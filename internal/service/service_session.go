package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/internal/store"
	"github.com/avoronov/go-chat-keeper/internal/utils"
	"github.com/avoronov/go-chat-keeper/models"
)

// sessionService is the concrete implementation of SessionService. Sessions
// are username-only: the first Open for a name creates the account, later
// Opens resolve to the same record.
type sessionService struct {
	userRepository store.UserRepository

	tokenSignKey  string
	tokenIssuer   string
	tokenDuration time.Duration

	logger *logger.Logger
}

// NewSessionService constructs a SessionService wired to the given
// UserRepository and populated with token parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewSessionService(userRepository store.UserRepository, cfg config.App, log *logger.Logger) SessionService {
	return &sessionService{
		userRepository: userRepository,
		tokenSignKey:   cfg.TokenSignKey,
		tokenIssuer:    cfg.TokenIssuer,
		tokenDuration:  cfg.TokenDuration,
		logger:         log,
	}
}

// Open resolves the username to a user record, creating one on first
// contact, and issues a session token for it.
//
// Returns ErrEmptyUsername when the name is blank after trimming.
func (s *sessionService) Open(ctx context.Context, username string) (models.User, models.Token, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(username) == "" {
		log.Error().Msg("empty username provided")
		return models.User{}, models.Token{}, ErrEmptyUsername
	}

	user, err := s.userRepository.GetOrCreate(ctx, username)
	if err != nil {
		log.Err(err).Str("username", username).Msg("user resolution failed")
		return models.User{}, models.Token{}, fmt.Errorf("user resolution failed: %w", err)
	}

	token, err := utils.GenerateJWTToken(s.tokenIssuer, user.ID, s.tokenDuration, s.tokenSignKey)
	if err != nil {
		log.Err(err).Int64("user_id", user.ID).Msg("token generation failed")
		return models.User{}, models.Token{}, fmt.Errorf("token generation failed: %w", err)
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("session opened")
	return user, token, nil
}

// Validate checks the compact token string against the configured sign key
// and issuer. Every failure mode (bad signature, wrong issuer, expiry,
// malformed subject) collapses into ErrInvalidToken so callers cannot
// distinguish why a token was rejected.
func (s *sessionService) Validate(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, s.tokenSignKey, s.tokenIssuer)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("session token rejected")
		return models.Token{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return token, nil
}
