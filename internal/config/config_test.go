package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &StructuredConfig{}
	cfg.applyDefaults()

	assert.Equal(t, DriverSQLite, cfg.Storage.DB.Driver)
	assert.Equal(t, DefaultDatabasePath, cfg.Storage.DB.DSN)
	assert.Equal(t, DefaultMigrationsDir, cfg.Storage.Migrations.Dir)
	assert.Equal(t, DefaultHTTPAddress, cfg.Server.HTTPAddress)
	assert.Equal(t, ProviderOllama, cfg.Provider.Name)
	assert.Equal(t, 24*time.Hour, cfg.App.TokenDuration)
	assert.Equal(t, DefaultSystemPrompt, cfg.Prompts.System)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &StructuredConfig{
		Storage: Storage{DB: DB{Driver: DriverPostgres, DSN: "postgres://localhost/chat"}},
	}
	cfg.applyDefaults()

	assert.Equal(t, DriverPostgres, cfg.Storage.DB.Driver)
	assert.Equal(t, "postgres://localhost/chat", cfg.Storage.DB.DSN)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*StructuredConfig)
		wantErr error
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *StructuredConfig) {},
		},
		{
			name: "unknown driver",
			mutate: func(cfg *StructuredConfig) {
				cfg.Storage.DB.Driver = "oracle"
			},
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name: "postgres without dsn",
			mutate: func(cfg *StructuredConfig) {
				cfg.Storage.DB.Driver = DriverPostgres
				cfg.Storage.DB.DSN = ""
			},
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name: "unknown provider",
			mutate: func(cfg *StructuredConfig) {
				cfg.Provider.Name = "bard"
			},
			wantErr: ErrInvalidProviderConfigs,
		},
		{
			name: "openrouter without api key",
			mutate: func(cfg *StructuredConfig) {
				cfg.Provider.Name = ProviderOpenRouter
			},
			wantErr: ErrInvalidProviderConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &StructuredConfig{}
			cfg.applyDefaults()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperrors.ErrConfiguration)
		})
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("STORAGE_DB_DRIVER", "postgres")
	t.Setenv("STORAGE_DB_DATABASE_URI", "postgres://localhost/chat")
	t.Setenv("APP_TOKEN_DURATION", "1h")
	t.Setenv("PROVIDER_OLLAMA_MODEL", "mistral")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "postgres", cfg.Storage.DB.Driver)
	assert.Equal(t, "postgres://localhost/chat", cfg.Storage.DB.DSN)
	assert.Equal(t, time.Hour, cfg.App.TokenDuration)
	assert.Equal(t, "mistral", cfg.Provider.Ollama.Model)
}

func TestParseJSON(t *testing.T) {
	raw := map[string]any{
		"app": map[string]any{
			"token_sign_key": "secret",
			"token_duration": "45m",
		},
		"storage": map[string]any{
			"db":         map[string]any{"driver": "sqlite", "dsn": "/tmp/chat.db"},
			"migrations": map[string]any{"dir": "db/migrations"},
		},
		"prompts": map[string]any{
			"system":   "Be brief.",
			"variants": map[string]string{"pirate": "Answer like a pirate."},
		},
	}
	payload, err := json.Marshal(raw)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, payload, 0o600))

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.App.TokenSignKey)
	assert.Equal(t, 45*time.Minute, cfg.App.TokenDuration)
	assert.Equal(t, "/tmp/chat.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "db/migrations", cfg.Storage.Migrations.Dir)
	assert.Equal(t, "Be brief.", cfg.Prompts.System)
	assert.Equal(t, "Answer like a pirate.", cfg.Prompts.Variants["pirate"])
}

func TestParseJSONMissingFile(t *testing.T) {
	_, err := parseJSON("/nonexistent/config.json")
	assert.Error(t, err)
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"90s"`), &d))
	assert.Equal(t, 90*time.Second, time.Duration(d))

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, time.Duration(d))

	assert.Error(t, json.Unmarshal([]byte(`"not-a-duration"`), &d))
}

func TestNetAddressSet(t *testing.T) {
	var a NetAddress

	require.NoError(t, a.Set("localhost:9090"))
	assert.Equal(t, "localhost:9090", a.String())

	assert.Error(t, a.Set("no-port"))
	assert.Error(t, a.Set("localhost:0"))
	assert.Error(t, a.Set("not-an-ip:8080"))
}

func TestPromptsResolve(t *testing.T) {
	prompts := Prompts{
		System:   "default prompt",
		Variants: map[string]string{"formal": "formal prompt"},
	}

	assert.Equal(t, "default prompt", prompts.Resolve(""))
	assert.Equal(t, "formal prompt", prompts.Resolve("formal"))
	assert.Equal(t, "default prompt", prompts.Resolve("missing"))
}

func TestBuilderMergePriority(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{Storage: Storage{DB: DB{DSN: "first.db"}}},
		&StructuredConfig{Storage: Storage{DB: DB{DSN: "second.db"}, Migrations: Migrations{Dir: "custom"}}},
	)

	cfg, err := b.build()
	require.NoError(t, err)

	// earlier sources win for non-zero fields; later sources fill gaps
	assert.Equal(t, "first.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "custom", cfg.Storage.Migrations.Dir)
}

func TestBuilderPropagatesError(t *testing.T) {
	b := newConfigBuilder()
	b.err = errors.New("boom")

	_, err := b.build()
	assert.Error(t, err)
}
