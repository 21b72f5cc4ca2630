// Package mcpserver exposes the mortgage calculators as an MCP server so
// that external agent hosts can call them over stdio. The tools, their
// schemas, and their validation behaviour are exactly those the chat advisor
// uses; both paths go through the same [tools.Registry].
package mcpserver

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bayti-ai/bayti/internal/tools"
	"github.com/bayti-ai/bayti/pkg/provider/llm"
)

// New builds an MCP server offering every tool in reg. Each call is routed
// through [tools.Registry.Execute], so argument coercion, validation
// messages, and the failure envelope match the chat path byte for byte.
func New(reg *tools.Registry, version string) *mcpsdk.Server {
	server := mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: "bayti-calculators", Version: version},
		nil,
	)

	for _, def := range reg.Definitions() {
		server.AddTool(
			&mcpsdk.Tool{
				Name:        def.Name,
				Description: def.Description,
				InputSchema: def.Parameters,
			},
			toolHandler(reg, def.Name),
		)
	}
	return server
}

// Run serves the given server over stdio until ctx is cancelled or the
// client disconnects.
func Run(ctx context.Context, server *mcpsdk.Server) error {
	if err := server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
		return fmt.Errorf("mcpserver: run: %w", err)
	}
	return nil
}

// toolHandler adapts one registry tool to the MCP calling convention. The
// result payload is the registry's JSON envelope; validation and execution
// failures are reported as tool errors rather than protocol errors.
func toolHandler(reg *tools.Registry, name string) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		res := reg.Execute(ctx, llm.ToolCall{
			Name:      name,
			Arguments: string(req.Params.Arguments),
		})
		return &mcpsdk.CallToolResult{
			IsError: res.Failed(),
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: res.JSON()}},
		}, nil
	}
}
