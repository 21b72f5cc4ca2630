package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists LLM provider names the server knows how to build.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = []string{"openai", "groq", "anthropic", "gemini", "mistral", "ollama"}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider
	if cfg.Provider.Name == "" {
		errs = append(errs, errors.New("provider.name is required"))
	} else if !slices.Contains(ValidProviderNames, cfg.Provider.Name) {
		slog.Warn("unknown provider name — may be a typo or third-party provider",
			"name", cfg.Provider.Name,
			"known", ValidProviderNames,
		)
	}
	if cfg.Provider.Model == "" {
		errs = append(errs, errors.New("provider.model is required"))
	}
	if cfg.Provider.Temperature < 0 || cfg.Provider.Temperature > 2 {
		errs = append(errs, fmt.Errorf("provider.temperature %.2f is out of range [0, 2]", cfg.Provider.Temperature))
	}
	if cfg.Provider.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("provider.max_tokens %d must not be negative", cfg.Provider.MaxTokens))
	}

	// Advisor
	if cfg.Advisor.MaxRounds < 0 {
		errs = append(errs, fmt.Errorf("advisor.max_rounds %d must not be negative", cfg.Advisor.MaxRounds))
	}
	if cfg.Advisor.ChunkSize < 0 {
		errs = append(errs, fmt.Errorf("advisor.chunk_size %d must not be negative", cfg.Advisor.ChunkSize))
	}

	// Leads
	if cfg.Leads.Store != "" && !cfg.Leads.Store.IsValid() {
		errs = append(errs, fmt.Errorf("leads.store %q is invalid; valid values: file, postgres", cfg.Leads.Store))
	}
	if cfg.Leads.Store == LeadStorePostgres && cfg.Leads.PostgresDSN == "" {
		errs = append(errs, errors.New("leads.postgres_dsn is required when leads.store is postgres"))
	}

	return errors.Join(errs...)
}
