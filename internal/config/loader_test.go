package config_test

import (
	"strings"
	"testing"

	"github.com/bayti-ai/bayti/internal/config"
)

func TestLoadFromReader_FullConfig(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  listen_addr: ":8000"
  log_level: debug
  allowed_origins:
    - http://localhost:3000
provider:
  name: groq
  api_key: gsk-test
  model: llama-3.3-70b-versatile
  temperature: 0.7
  max_tokens: 2048
advisor:
  max_rounds: 5
  chunk_size: 10
leads:
  store: file
  path: leads.jsonl
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":8000" {
		t.Errorf("listen_addr = %q, want :8000", cfg.Server.ListenAddr)
	}
	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("log_level = %q, want debug", cfg.Server.LogLevel)
	}
	if cfg.Provider.Model != "llama-3.3-70b-versatile" {
		t.Errorf("model = %q", cfg.Provider.Model)
	}
	if cfg.Advisor.MaxRounds != 5 || cfg.Advisor.ChunkSize != 10 {
		t.Errorf("advisor = %+v", cfg.Advisor)
	}
	if cfg.Leads.Store != config.LeadStoreFile {
		t.Errorf("leads.store = %q, want file", cfg.Leads.Store)
	}
}

func TestLoadFromReader_UnknownFieldRejected(t *testing.T) {
	t.Parallel()
	yaml := `
provider:
  name: openai
  model: gpt-4o
  modle: typo
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
	if !strings.Contains(err.Error(), "decode yaml") {
		t.Errorf("error should come from the decoder, got: %v", err)
	}
}

func TestValidate_RequiredProviderFields(t *testing.T) {
	t.Parallel()
	yaml := `
server:
  listen_addr: ":8000"
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for missing provider fields, got nil")
	}
	if !strings.Contains(err.Error(), "provider.name is required") {
		t.Errorf("error should mention provider.name, got: %v", err)
	}
	if !strings.Contains(err.Error(), "provider.model is required") {
		t.Errorf("error should mention provider.model, got: %v", err)
	}
}

func TestValidate_PostgresStoreRequiresDSN(t *testing.T) {
	t.Parallel()
	yaml := `
provider:
  name: openai
  model: gpt-4o
leads:
  store: postgres
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for postgres store without DSN, got nil")
	}
	if !strings.Contains(err.Error(), "leads.postgres_dsn is required") {
		t.Errorf("error should mention leads.postgres_dsn, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Server: config.ServerConfig{LogLevel: "verbose"},
		Provider: config.ProviderConfig{
			Name:        "openai",
			Model:       "gpt-4o",
			Temperature: 3,
			MaxTokens:   -1,
		},
		Advisor: config.AdvisorConfig{MaxRounds: -2},
		Leads:   config.LeadsConfig{Store: "redis"},
	}
	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected errors, got nil")
	}
	errStr := err.Error()
	for _, want := range []string{
		"server.log_level",
		"provider.temperature",
		"provider.max_tokens",
		"advisor.max_rounds",
		"leads.store",
	} {
		if !strings.Contains(errStr, want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Provider: config.ProviderConfig{Name: "groq", Model: "llama-3.3-70b-versatile"},
		Leads:    config.LeadsConfig{Store: config.LeadStorePostgres, PostgresDSN: "postgres://localhost/bayti"},
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := config.Load("does-not-exist.yml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
