package mcpserver

import (
	"context"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bayti-ai/bayti/internal/tools"
)

// connect wires a client to a fresh in-memory server and returns the open
// session. The server side is torn down via t.Cleanup.
func connect(t *testing.T) *mcpsdk.ClientSession {
	t.Helper()

	server := New(tools.NewRegistry(), "test")
	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Run(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		session.Close()
		cancel()
		<-serverDone
	})
	return session
}

func textContent(t *testing.T, res *mcpsdk.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("content has %d parts, want 1", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcpsdk.TextContent)
	if !ok {
		t.Fatalf("content part is %T, want *TextContent", res.Content[0])
	}
	return tc.Text
}

func TestListTools(t *testing.T) {
	session := connect(t)

	res, err := session.ListTools(context.Background(), &mcpsdk.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	if len(res.Tools) != 4 {
		t.Fatalf("listed %d tools, want 4", len(res.Tools))
	}

	names := make(map[string]bool, len(res.Tools))
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		tools.NameCalculateEMI,
		tools.NameCheckLTV,
		tools.NameUpfrontCosts,
		tools.NameBuyVsRent,
	} {
		if !names[want] {
			t.Errorf("tool %q not listed", want)
		}
	}
}

func TestCallTool_EMI(t *testing.T) {
	session := connect(t)

	res, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name: tools.NameCalculateEMI,
		Arguments: map[string]any{
			"loan_amount":  1000000,
			"tenure_years": 25,
		},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", textContent(t, res))
	}
	text := textContent(t, res)
	if !strings.Contains(text, `"emi":5558.32`) {
		t.Errorf("result = %s, want emi 5558.32", text)
	}
}

func TestCallTool_ValidationFailure(t *testing.T) {
	session := connect(t)

	res, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name: tools.NameCheckLTV,
		Arguments: map[string]any{
			"property_price": -1,
			"down_payment":   100,
		},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected IsError for invalid arguments")
	}
	text := textContent(t, res)
	if !strings.Contains(text, "must be positive") {
		t.Errorf("result = %s, want positivity message", text)
	}
	if !strings.Contains(text, `"skipped":true`) {
		t.Errorf("result = %s, want skipped marker", text)
	}
}
