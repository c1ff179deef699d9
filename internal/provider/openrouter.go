package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/models"
)

const (
	// NameOpenRouter identifies the OpenRouter backend in config and stored
	// messages.
	NameOpenRouter = "openrouter"

	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "openai/gpt-4o-mini"
)

type openRouterProvider struct {
	client *openai.Client
	model  string
	logger *logger.Logger
}

// NewOpenRouterProvider constructs a [Provider] over OpenRouter's
// OpenAI-compatible API. cfg.BaseURL may point at any compatible endpoint;
// empty means the public OpenRouter one.
func NewOpenRouterProvider(cfg config.OpenRouter, log *logger.Logger) Provider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenRouterModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = baseURL

	log.Debug().Str("base_url", baseURL).Str("model", model).Msg("creating openrouter provider")
	return &openRouterProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: log,
	}
}

func (p *openRouterProvider) Name() string  { return NameOpenRouter }
func (p *openRouterProvider) Model() string { return p.model }

// Stream opens a chat-completion stream and hands every delta to fn.
func (p *openRouterProvider) Stream(ctx context.Context, messages []models.ProviderMessage, fn StreamFunc) (string, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: toOpenAIMessages(messages),
		Stream:   true,
	})
	if err != nil {
		return "", apperrors.NewProviderError(NameOpenRouter, fmt.Errorf("open stream: %w", err))
	}
	defer stream.Close()

	var reply strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", apperrors.NewProviderError(NameOpenRouter, fmt.Errorf("read stream: %w", err))
		}
		if len(resp.Choices) == 0 {
			continue
		}

		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		reply.WriteString(delta)
		if fn != nil {
			if err = fn(delta); err != nil {
				return "", apperrors.NewProviderError(NameOpenRouter, fmt.Errorf("stream consumer: %w", err))
			}
		}
	}

	return reply.String(), nil
}

// Complete requests the whole reply in one round trip.
func (p *openRouterProvider) Complete(ctx context.Context, messages []models.ProviderMessage) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: toOpenAIMessages(messages),
	})
	if err != nil {
		return "", apperrors.NewProviderError(NameOpenRouter, fmt.Errorf("chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewProviderError(NameOpenRouter, errors.New("chat completion: empty response"))
	}

	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []models.ProviderMessage) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		converted = append(converted, openai.ChatCompletionMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}
	return converted
}
