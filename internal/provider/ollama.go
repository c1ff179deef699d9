package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/models"
)

const (
	// NameOllama identifies the Ollama backend in config and stored messages.
	NameOllama = "ollama"

	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.2"
)

// ollamaChatRequest is the /api/chat request body.
type ollamaChatRequest struct {
	Model    string                   `json:"model"`
	Messages []models.ProviderMessage `json:"messages"`
	Stream   bool                     `json:"stream"`
}

// ollamaChatChunk is one NDJSON line of a /api/chat response. In streaming
// mode every line carries a message fragment until the final line sets done.
type ollamaChatChunk struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

type ollamaProvider struct {
	client *resty.Client
	model  string
	logger *logger.Logger
}

// NewOllamaProvider constructs a [Provider] over the Ollama HTTP API at
// cfg.BaseURL. Empty fields fall back to the local default server and model.
func NewOllamaProvider(cfg config.Ollama, log *logger.Logger) Provider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}

	client := resty.New().SetBaseURL(baseURL)

	log.Debug().Str("base_url", baseURL).Str("model", model).Msg("creating ollama provider")
	return &ollamaProvider{client: client, model: model, logger: log}
}

func (p *ollamaProvider) Name() string  { return NameOllama }
func (p *ollamaProvider) Model() string { return p.model }

// Stream posts the conversation with stream enabled and decodes the NDJSON
// reply line by line, handing each fragment to fn as it arrives.
func (p *ollamaProvider) Stream(ctx context.Context, messages []models.ProviderMessage, fn StreamFunc) (string, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(ollamaChatRequest{Model: p.model, Messages: messages, Stream: true}).
		SetDoNotParseResponse(true).
		Post("/api/chat")
	if err != nil {
		return "", apperrors.NewProviderError(NameOllama, fmt.Errorf("chat request: %w", err))
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 400 {
		return "", apperrors.NewProviderError(NameOllama, p.readAPIError(body, resp.StatusCode()))
	}

	var reply strings.Builder
	decoder := json.NewDecoder(body)
	for {
		var chunk ollamaChatChunk
		if err = decoder.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", apperrors.NewProviderError(NameOllama, fmt.Errorf("decode stream: %w", err))
		}
		if chunk.Error != "" {
			return "", apperrors.NewProviderError(NameOllama, errors.New(chunk.Error))
		}

		if chunk.Message.Content != "" {
			reply.WriteString(chunk.Message.Content)
			if fn != nil {
				if err = fn(chunk.Message.Content); err != nil {
					return "", apperrors.NewProviderError(NameOllama, fmt.Errorf("stream consumer: %w", err))
				}
			}
		}
		if chunk.Done {
			break
		}
	}

	return reply.String(), nil
}

// Complete posts the conversation with streaming disabled and returns the
// single reply body.
func (p *ollamaProvider) Complete(ctx context.Context, messages []models.ProviderMessage) (string, error) {
	var chunk ollamaChatChunk

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(ollamaChatRequest{Model: p.model, Messages: messages, Stream: false}).
		SetResult(&chunk).
		Post("/api/chat")
	if err != nil {
		return "", apperrors.NewProviderError(NameOllama, fmt.Errorf("chat request: %w", err))
	}
	if resp.IsError() {
		return "", apperrors.NewProviderError(NameOllama,
			fmt.Errorf("chat request: status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String())))
	}
	if chunk.Error != "" {
		return "", apperrors.NewProviderError(NameOllama, errors.New(chunk.Error))
	}

	return chunk.Message.Content, nil
}

// readAPIError extracts the error field of a non-2xx response body, falling
// back to the raw status when the body is not the documented JSON shape.
func (p *ollamaProvider) readAPIError(body io.Reader, status int) error {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err == nil {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			return fmt.Errorf("chat request: status %d: %s", status, payload.Error)
		}
	}
	return fmt.Errorf("chat request: status %d", status)
}
