// Package config provides the configuration schema and loader for the
// Bayti mortgage advisory server.
package config

// LogLevel controls log verbosity for the Bayti server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// LeadStoreKind selects the backing store for captured leads.
type LeadStoreKind string

const (
	// LeadStoreFile appends leads to a local JSONL file.
	LeadStoreFile LeadStoreKind = "file"

	// LeadStorePostgres persists leads in a PostgreSQL table.
	LeadStorePostgres LeadStoreKind = "postgres"
)

// IsValid reports whether k is a recognised lead store kind.
func (k LeadStoreKind) IsValid() bool {
	return k == LeadStoreFile || k == LeadStorePostgres
}

// Config is the root configuration structure for Bayti.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Advisor  AdvisorConfig  `yaml:"advisor"`
	Leads    LeadsConfig    `yaml:"leads"`
}

// ServerConfig holds network and logging settings for the Bayti server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8000").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// AllowedOrigins lists the origins permitted to call the API from a
	// browser. Leave empty to allow the local development frontends.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ProviderConfig selects and configures the LLM provider used for
// conversation turns.
type ProviderConfig struct {
	// Name selects the provider implementation (e.g., "openai", "groq", "anthropic").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API.
	// When empty, the provider's conventional environment variable is used.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "llama-3.3-70b-versatile").
	Model string `yaml:"model"`

	// Temperature is the sampling temperature for completions.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens caps the length of a single completion.
	MaxTokens int `yaml:"max_tokens"`
}

// AdvisorConfig tunes the conversation loop.
type AdvisorConfig struct {
	// MaxRounds caps the number of provider round-trips per user turn.
	MaxRounds int `yaml:"max_rounds"`

	// ChunkSize is the number of runes emitted per content event when
	// streaming an assistant reply.
	ChunkSize int `yaml:"chunk_size"`
}

// LeadsConfig selects where captured leads are persisted.
type LeadsConfig struct {
	// Store selects the backing store: "file" or "postgres".
	Store LeadStoreKind `yaml:"store"`

	// Path is the JSONL file leads are appended to when Store is "file".
	Path string `yaml:"path"`

	// PostgresDSN is the connection string used when Store is "postgres".
	PostgresDSN string `yaml:"postgres_dsn"`
}
