package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/models"
)

func ollamaTestProvider(t *testing.T, handler http.HandlerFunc) Provider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOllamaProvider(config.Ollama{BaseURL: srv.URL, Model: "test-model"}, logger.Nop())
}

func TestOllamaProvider_Stream(t *testing.T) {
	ctx := context.Background()

	t.Run("assembles NDJSON fragments in order", func(t *testing.T) {
		p := ollamaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/chat", r.URL.Path)

			var req ollamaChatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-model", req.Model)
			assert.True(t, req.Stream)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, models.RoleSystem, req.Messages[0].Role)

			w.Header().Set("Content-Type", "application/x-ndjson")
			fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Hel"},"done":false}`)
			fmt.Fprintln(w, `{"message":{"role":"assistant","content":"lo!"},"done":false}`)
			fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
		})

		var chunks []string
		reply, err := p.Stream(ctx, []models.ProviderMessage{
			{Role: models.RoleSystem, Content: "Be brief."},
			{Role: models.RoleUser, Content: "hi"},
		}, func(chunk string) error {
			chunks = append(chunks, chunk)
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, "Hello!", reply)
		assert.Equal(t, []string{"Hel", "lo!"}, chunks)
	})

	t.Run("api error status maps to a provider error", func(t *testing.T) {
		p := ollamaTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintln(w, `{"error":"model 'test-model' not found"}`)
		})

		_, err := p.Stream(ctx, []models.ProviderMessage{{Role: models.RoleUser, Content: "hi"}}, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsProvider(err))
		assert.Contains(t, err.Error(), "model 'test-model' not found")
	})

	t.Run("in-stream error field aborts the stream", func(t *testing.T) {
		p := ollamaTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintln(w, `{"message":{"role":"assistant","content":"par"},"done":false}`)
			fmt.Fprintln(w, `{"error":"connection to model lost"}`)
		})

		_, err := p.Stream(ctx, []models.ProviderMessage{{Role: models.RoleUser, Content: "hi"}}, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsProvider(err))
	})

	t.Run("consumer error aborts the stream", func(t *testing.T) {
		p := ollamaTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintln(w, `{"message":{"role":"assistant","content":"x"},"done":false}`)
			fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
		})

		_, err := p.Stream(ctx, []models.ProviderMessage{{Role: models.RoleUser, Content: "hi"}},
			func(string) error { return fmt.Errorf("consumer gone") })
		require.Error(t, err)
		assert.True(t, apperrors.IsProvider(err))
		assert.Contains(t, err.Error(), "consumer gone")
	})
}

func TestOllamaProvider_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the single reply", func(t *testing.T) {
		p := ollamaTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			var req ollamaChatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.False(t, req.Stream)

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Hello!"},"done":true}`)
		})

		reply, err := p.Complete(ctx, []models.ProviderMessage{{Role: models.RoleUser, Content: "hi"}})
		require.NoError(t, err)
		assert.Equal(t, "Hello!", reply)
	})

	t.Run("server failure maps to a provider error", func(t *testing.T) {
		p := ollamaTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := p.Complete(ctx, []models.ProviderMessage{{Role: models.RoleUser, Content: "hi"}})
		require.Error(t, err)
		assert.True(t, apperrors.IsProvider(err))
	})
}

func TestOllamaProvider_Defaults(t *testing.T) {
	p := NewOllamaProvider(config.Ollama{}, logger.Nop())
	assert.Equal(t, NameOllama, p.Name())
	assert.Equal(t, defaultOllamaModel, p.Model())
}
