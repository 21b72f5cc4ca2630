package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bayti-ai/bayti/internal/calc"
	"github.com/bayti-ai/bayti/pkg/provider/llm"
)

// Result is the outcome of a dispatched tool call. Exactly one of Payload
// and FailureReason is set.
type Result struct {
	// Tool is the requested tool name, even when unknown.
	Tool string

	// CallID echoes the provider's tool call ID so the result can be paired
	// with its invocation in the transcript.
	CallID string

	// Payload is the structured success output.
	Payload any

	// FailureReason explains why the call produced no payload.
	FailureReason string

	// Details carries extra fields merged into the failure envelope, such as
	// the LTV breakdown behind a rejected buy-vs-rent analysis.
	Details map[string]any

	// Skipped is true when validation rejected the call before execution.
	Skipped bool
}

// Failed reports whether the call produced a failure instead of a payload.
func (r *Result) Failed() bool {
	return r.FailureReason != ""
}

// JSON renders the result as the tool-role message content fed back to the
// model: the payload itself on success, or an {"error": ...} envelope on
// failure. Marshaling cannot fail for the payload types the handlers return.
func (r *Result) JSON() string {
	if !r.Failed() {
		b, err := json.Marshal(r.Payload)
		if err != nil {
			return fmt.Sprintf(`{"error": %q}`, "encoding tool result: "+err.Error())
		}
		return string(b)
	}
	envelope := map[string]any{"error": r.FailureReason}
	if r.Skipped {
		envelope["skipped"] = true
	}
	for k, v := range r.Details {
		envelope[k] = v
	}
	b, _ := json.Marshal(envelope)
	return string(b)
}

// Registry holds the tool catalog and dispatches calls against it.
type Registry struct {
	specs  []*Spec
	byName map[string]*Spec
}

// NewRegistry builds a registry with the full calculator catalog.
func NewRegistry() *Registry {
	specs := catalog()
	byName := make(map[string]*Spec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}
	return &Registry{specs: specs, byName: byName}
}

// Definitions returns the catalog in the shape the LLM provider expects,
// in declaration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, len(r.specs))
	for i, s := range r.specs {
		defs[i] = s.Definition()
	}
	return defs
}

// Lookup returns the spec for name, or nil when unknown.
func (r *Registry) Lookup(name string) *Spec {
	return r.byName[name]
}

// Execute runs one tool call end to end: argument coercion, validation,
// handler execution, and failure mapping. It never returns an error; every
// outcome, including a handler panic, is folded into the Result so the
// conversation can continue.
func (r *Registry) Execute(ctx context.Context, call llm.ToolCall) *Result {
	res := &Result{Tool: call.Name, CallID: call.ID}

	spec := r.byName[call.Name]
	if spec == nil {
		res.FailureReason = fmt.Sprintf("Unknown tool: %s", call.Name)
		return res
	}

	var args map[string]any
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			args = map[string]any{}
		}
	}
	args = CoerceNumbers(args)

	if verr := validate(spec, args); verr != nil {
		res.FailureReason = verr.Message
		res.Skipped = true
		return res
	}

	payload, err := runHandler(spec, args)
	if err != nil {
		var ltvErr *calc.LTVRuleError
		var inputErr *calc.InputError
		switch {
		case errors.As(err, &ltvErr):
			res.FailureReason = ltvErr.Error()
			res.Details = map[string]any{"ltv_details": ltvErr.Result}
		case errors.As(err, &inputErr):
			res.FailureReason = inputErr.Message
		default:
			res.FailureReason = fmt.Sprintf("Tool execution failed: %v", err)
		}
		return res
	}
	res.Payload = payload
	return res
}

// runHandler invokes the handler with panic recovery. A panicking calculator
// must degrade to a structured failure, not take the request down.
func runHandler(spec *Spec, args map[string]any) (payload any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			payload = nil
			err = fmt.Errorf("%v", rec)
		}
	}()
	return spec.Handler(args)
}
