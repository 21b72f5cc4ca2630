// Command bayti-mcp serves the Bayti mortgage calculators as an MCP server
// over stdio, for use from agent hosts such as Claude Desktop or any
// MCP-capable orchestrator.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bayti-ai/bayti/internal/mcpserver"
	"github.com/bayti-ai/bayti/internal/tools"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	lvl := slog.LevelInfo
	if *debug {
		lvl = slog.LevelDebug
	}
	// Stdout carries the MCP protocol; logs must go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := mcpserver.New(tools.NewRegistry(), version)
	slog.Info("bayti-mcp serving on stdio", "version", version)

	if err := mcpserver.Run(ctx, server); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	return 0
}
