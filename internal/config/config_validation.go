package config

import "time"

// Defaults applied after all sources are merged. The database location
// default matches the storage contract: empty means a local file next to
// the process.
const (
	DefaultDatabasePath  = "./chat_history.db"
	DefaultMigrationsDir = "migrations"
	DefaultHTTPAddress   = "localhost:8080"
	DefaultTokenIssuer   = "chat-keeper"
	DefaultSystemPrompt  = "You are a helpful assistant."

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	ProviderOllama     = "ollama"
	ProviderOpenRouter = "openrouter"
)

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Storage.DB.Driver == "" {
		cfg.Storage.DB.Driver = DriverSQLite
	}
	if cfg.Storage.DB.Driver == DriverSQLite && cfg.Storage.DB.DSN == "" {
		cfg.Storage.DB.DSN = DefaultDatabasePath
	}
	if cfg.Storage.Migrations.Dir == "" {
		cfg.Storage.Migrations.Dir = DefaultMigrationsDir
	}
	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = DefaultHTTPAddress
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.App.TokenIssuer == "" {
		cfg.App.TokenIssuer = DefaultTokenIssuer
	}
	if cfg.App.TokenDuration == 0 {
		cfg.App.TokenDuration = 24 * time.Hour
	}
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = ProviderOllama
	}
	if cfg.Provider.Ollama.BaseURL == "" {
		cfg.Provider.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Provider.Ollama.Model == "" {
		cfg.Provider.Ollama.Model = "llama3.1"
	}
	if cfg.Prompts.System == "" {
		cfg.Prompts.System = DefaultSystemPrompt
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	switch cfg.Storage.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return ErrInvalidStorageConfigs
	}

	if cfg.Storage.DB.Driver == DriverPostgres && cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	switch cfg.Provider.Name {
	case ProviderOllama, ProviderOpenRouter:
	default:
		return ErrInvalidProviderConfigs
	}

	if cfg.Provider.Name == ProviderOpenRouter && cfg.Provider.OpenRouter.APIKey == "" {
		return ErrInvalidProviderConfigs
	}

	return nil
}

// Resolve returns the system prompt for the given variant name, falling
// back to the default prompt when the variant is empty or unknown.
func (p Prompts) Resolve(variant string) string {
	if variant == "" {
		return p.System
	}
	if prompt, ok := p.Variants[variant]; ok {
		return prompt
	}
	return p.System
}
