package service

import (
	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
)

// promptService resolves system prompts from configuration.
type promptService struct {
	prompts config.Prompts
	logger  *logger.Logger
}

// NewPromptService constructs a PromptService over the configured prompts.
func NewPromptService(prompts config.Prompts, log *logger.Logger) PromptService {
	return &promptService{
		prompts: prompts,
		logger:  log,
	}
}

// SystemPrompt returns the prompt for the named variant. An empty or
// unknown variant resolves to the default system prompt.
func (s *promptService) SystemPrompt(variant string) string {
	if variant != "" {
		if _, ok := s.prompts.Variants[variant]; !ok {
			s.logger.Debug().Str("variant", variant).Msg("unknown prompt variant, using default")
		}
	}
	return s.prompts.Resolve(variant)
}
