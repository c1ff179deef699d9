// Package config loads and merges the application configuration from
// environment variables, command-line flags, and an optional JSON file.
package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for
// go-chat-keeper. It aggregates all sub-configurations and is populated by
// merging values from environment variables, command-line flags, and an
// optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings: session token parameters and
	// the application version.
	App App `envPrefix:"APP_"`

	// Storage holds the database backend and migration-source settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and timeout settings for the HTTP server.
	Server Server `envPrefix:"SERVER_"`

	// Provider holds language-model backend settings.
	Provider Provider `envPrefix:"PROVIDER_"`

	// Prompts holds the system prompt and its named variants.
	Prompts Prompts `envPrefix:"PROMPTS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values controlling session
// token lifecycle and versioning.
type App struct {
	// TokenSignKey is the secret key used to sign and verify session JWT
	// tokens. Must be kept confidential.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long a session token remains valid
	// (e.g. "24h", "30m").
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups persistence settings.
type Storage struct {
	// DB holds the relational database connection settings.
	DB DB `envPrefix:"DB_"`

	// Migrations holds the migration-source directory settings.
	Migrations Migrations `envPrefix:"MIGRATIONS_"`
}

// DB holds connection settings for the relational database backend.
type DB struct {
	// Driver selects the backend: "sqlite" (default) or "postgres".
	// Env: STORAGE_DB_DRIVER
	Driver string `env:"DRIVER"`

	// DSN is the database location. For sqlite this is the database file
	// path (empty means "./chat_history.db"); for postgres a full
	// connection string.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Migrations holds the location of SQL migration files.
type Migrations struct {
	// Dir is the directory holding ordered *.sql migration files.
	// A missing directory means zero pending migrations.
	// Env: STORAGE_MIGRATIONS_DIR
	Dir string `env:"DIR"`
}

// Server holds network and timeout settings for the inbound HTTP transport.
type Server struct {
	// HTTPAddress is the TCP address the HTTP server listens on,
	// in "host:port" format.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single inbound request (e.g. "30s").
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Provider selects and configures the language-model backend.
type Provider struct {
	// Name selects the provider implementation: "ollama" or "openrouter".
	// Env: PROVIDER_NAME
	Name string `env:"NAME"`

	// Ollama holds settings for the local Ollama HTTP API.
	Ollama Ollama `envPrefix:"OLLAMA_"`

	// OpenRouter holds settings for the OpenRouter hosted API.
	OpenRouter OpenRouter `envPrefix:"OPENROUTER_"`
}

// Ollama holds connection settings for the Ollama HTTP API.
type Ollama struct {
	// BaseURL is the Ollama server address (e.g. "http://localhost:11434").
	// Env: PROVIDER_OLLAMA_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// Model is the model identifier passed on every request.
	// Env: PROVIDER_OLLAMA_MODEL
	Model string `env:"MODEL"`
}

// OpenRouter holds settings for the OpenRouter hosted API.
type OpenRouter struct {
	// APIKey authenticates against OpenRouter. Must be kept confidential.
	// Env: PROVIDER_OPENROUTER_API_KEY
	APIKey string `env:"API_KEY"`

	// BaseURL overrides the API endpoint; empty means the public endpoint.
	// Env: PROVIDER_OPENROUTER_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// Model is the model identifier passed on every request.
	// Env: PROVIDER_OPENROUTER_MODEL
	Model string `env:"MODEL"`
}

// Prompts holds the system prompt configuration.
type Prompts struct {
	// System is the default system prompt injected into provider context.
	// Env: PROMPTS_SYSTEM
	System string `env:"SYSTEM"`

	// Variants maps variant names to alternative system prompts.
	// Populated from the JSON config file only.
	Variants map[string]string `env:"-"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (earlier sources win for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Defaults are applied after merging. Returns a fully populated
// *StructuredConfig or an error if any source fails to load or the final
// config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
