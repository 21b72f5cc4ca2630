// Command bayti is the main entry point for the Bayti mortgage advisory server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"golang.org/x/sync/errgroup"

	"github.com/bayti-ai/bayti/internal/advisor"
	"github.com/bayti-ai/bayti/internal/config"
	"github.com/bayti-ai/bayti/internal/health"
	"github.com/bayti-ai/bayti/internal/leads"
	"github.com/bayti-ai/bayti/internal/observe"
	"github.com/bayti-ai/bayti/internal/server"
	"github.com/bayti-ai/bayti/internal/session"
	"github.com/bayti-ai/bayti/internal/tools"
	"github.com/bayti-ai/bayti/pkg/provider/llm"
	"github.com/bayti-ai/bayti/pkg/provider/llm/anyllm"
	"github.com/bayti-ai/bayti/pkg/provider/llm/openai"
)

// version is stamped at build time via -ldflags.
var version = "dev"

const (
	defaultListenAddr = ":8000"
	defaultLeadsPath  = "leads.jsonl"
	shutdownTimeout   = 15 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "bayti: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "bayti: %v\n", err)
		}
		return 1
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = defaultListenAddr
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("bayti starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "bayti",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── LLM provider ──────────────────────────────────────────────────────────
	provider, err := buildProvider(cfg.Provider)
	if err != nil {
		slog.Error("failed to build LLM provider", "err", err)
		return 1
	}
	slog.Info("provider created", "name", cfg.Provider.Name, "model", cfg.Provider.Model)

	// ── Lead store ────────────────────────────────────────────────────────────
	leadStore, leadClose, ready, err := buildLeadStore(ctx, cfg.Leads)
	if err != nil {
		slog.Error("failed to build lead store", "err", err)
		return 1
	}
	defer leadClose()

	// ── Advisor + server ──────────────────────────────────────────────────────
	sessions := session.NewStore()
	adv := advisor.New(advisor.Config{
		Provider:     provider,
		Sessions:     sessions,
		Registry:     tools.NewRegistry(),
		ProviderName: cfg.Provider.Name,
		MaxRounds:    cfg.Advisor.MaxRounds,
		ChunkSize:    cfg.Advisor.ChunkSize,
		Temperature:  cfg.Provider.Temperature,
		MaxTokens:    cfg.Provider.MaxTokens,
	})
	srv := server.New(server.Config{
		Advisor:        adv,
		Sessions:       sessions,
		Leads:          leadStore,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Ready:          ready,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: srv.Handler(),
	}

	// ── Run until signalled ───────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", cfg.Server.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", cfg.Server.ListenAddr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, stopping…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// buildProvider constructs the configured LLM provider. "openai" uses the
// official SDK directly; everything else goes through any-llm, which speaks
// the OpenAI-compatible dialect of each vendor.
func buildProvider(entry config.ProviderConfig) (llm.Provider, error) {
	switch entry.Name {
	case "openai":
		var opts []openai.Option
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		return openai.New(entry.APIKey, entry.Model, opts...)
	default:
		var opts []anyllmlib.Option
		if entry.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New(entry.Name, entry.Model, opts...)
	}
}

// ── Lead store wiring ─────────────────────────────────────────────────────────

// buildLeadStore creates the configured lead store. The returned close
// function releases the store's resources (a no-op for the file store), and
// the returned checkers feed /readyz.
func buildLeadStore(ctx context.Context, cfg config.LeadsConfig) (leads.Store, func(), []health.Checker, error) {
	switch cfg.Store {
	case config.LeadStorePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		store := leads.NewPostgresStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("migrate leads schema: %w", err)
		}
		ready := []health.Checker{{Name: "leads", Check: pool.Ping}}
		return store, pool.Close, ready, nil
	default:
		path := cfg.Path
		if path == "" {
			path = defaultLeadsPath
		}
		return leads.NewFileStore(path), func() {}, nil, nil
	}
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
