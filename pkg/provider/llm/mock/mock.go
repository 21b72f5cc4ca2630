// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify that the advisor loop sends correct
// CompletionRequests and to feed controlled responses without a live LLM
// backend. All fields are safe to set before calling any method; mutating
// them during a concurrent call is the caller's responsibility.
//
// Example:
//
//	p := &mock.Provider{
//	    Responses: []*llm.CompletionResponse{{Content: "Hello!"}},
//	}
//	resp, err := p.Complete(ctx, req)
package mock

import (
	"context"
	"sync"

	"github.com/bayti-ai/bayti/pkg/provider/llm"
)

// CompleteCall records a single invocation of Complete.
type CompleteCall struct {
	// Ctx is the context passed to Complete.
	Ctx context.Context
	// Req is the CompletionRequest passed to Complete.
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider.
//
// Complete consumes Responses in order; once exhausted, the last response is
// repeated. Set Err to inject a failure, or ErrAfter to fail only from the
// n-th call (1-based) onward.
type Provider struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// Responses is the scripted sequence returned by successive Complete
	// calls. If empty and Err is nil, Complete returns an empty response.
	Responses []*llm.CompletionResponse

	// Err, if non-nil, is returned by every Complete call.
	Err error

	// ErrAfter, when > 0, makes Complete return Err starting with call number
	// ErrAfter (1-based). Calls before that return scripted responses.
	ErrAfter int

	// ModelCapabilities is returned by Capabilities.
	ModelCapabilities llm.ModelCapabilities

	// --- Call records (read after test) ---

	// CompleteCalls records every invocation of Complete in order.
	CompleteCalls []CompleteCall

	// CapabilitiesCallCount is the number of times Capabilities was called.
	CapabilitiesCallCount int
}

var _ llm.Provider = (*Provider)(nil)

// Complete records the call and returns the next scripted response.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.CompleteCalls = append(p.CompleteCalls, CompleteCall{Ctx: ctx, Req: req})
	n := len(p.CompleteCalls)

	if p.Err != nil && (p.ErrAfter <= 0 || n >= p.ErrAfter) {
		return nil, p.Err
	}

	if len(p.Responses) == 0 {
		return &llm.CompletionResponse{}, nil
	}
	idx := n - 1
	if idx >= len(p.Responses) {
		idx = len(p.Responses) - 1
	}
	return p.Responses[idx], nil
}

// Capabilities returns ModelCapabilities and increments the call counter.
func (p *Provider) Capabilities() llm.ModelCapabilities {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CapabilitiesCallCount++
	return p.ModelCapabilities
}

// CallCount returns the number of Complete invocations so far.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.CompleteCalls)
}
