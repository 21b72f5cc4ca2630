// Package advisor runs the conversation turn: it drives the LLM, executes
// the calculator tools it requests, and streams the final reply as events.
//
// A turn is a bounded loop. Each round sends the working transcript plus the
// tool catalog to the provider; when the model requests tools they are
// executed and their results appended, and the loop continues so the model
// can phrase the numbers conversationally. The loop never runs more than
// MaxRounds completions, so a model stuck requesting tools cannot spin
// forever. All intermediate turns live in a private working transcript;
// the session store sees only the user message at entry and the finalized
// assistant reply at the end.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bayti-ai/bayti/internal/observe"
	"github.com/bayti-ai/bayti/internal/session"
	"github.com/bayti-ai/bayti/internal/tools"
	"github.com/bayti-ai/bayti/pkg/provider/llm"
	"go.opentelemetry.io/otel/trace"
)

// Defaults for the turn loop.
const (
	// DefaultMaxRounds bounds completions per turn.
	DefaultMaxRounds = 5

	// DefaultChunkSize is the streaming chunk length in runes. The provider
	// call is non-streaming (tool calls must be inspected whole), so client
	// streaming is synthesized by chunking the final text.
	DefaultChunkSize = 10

	// DefaultTemperature and DefaultMaxTokens are the completion parameters.
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
)

// ErrUpstream wraps LLM provider failures. The provider is called exactly
// once per round with no retries; a flaky upstream surfaces immediately as an
// error event.
var ErrUpstream = errors.New("advisor: upstream completion failed")

// Config holds all dependencies for an [Advisor].
type Config struct {
	Provider llm.Provider
	Sessions *session.Store
	Registry *tools.Registry
	Metrics  *observe.Metrics

	// ProviderName labels provider metrics, e.g. "groq".
	ProviderName string

	// Persona overrides the default system prompt when non-empty.
	Persona string

	// MaxRounds, ChunkSize, Temperature, and MaxTokens override the loop
	// defaults when non-zero.
	MaxRounds   int
	ChunkSize   int
	Temperature float64
	MaxTokens   int
}

// Advisor advances conversations. All exported methods are safe for
// concurrent use; per-session transcript consistency is the store's job.
type Advisor struct {
	provider     llm.Provider
	sessions     *session.Store
	registry     *tools.Registry
	metrics      *observe.Metrics
	providerName string
	persona      string
	maxRounds    int
	chunkSize    int
	temperature  float64
	maxTokens    int
}

// New creates an Advisor with the given dependencies.
func New(cfg Config) *Advisor {
	a := &Advisor{
		provider:     cfg.Provider,
		sessions:     cfg.Sessions,
		registry:     cfg.Registry,
		metrics:      cfg.Metrics,
		providerName: cfg.ProviderName,
		persona:      cfg.Persona,
		maxRounds:    cfg.MaxRounds,
		chunkSize:    cfg.ChunkSize,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}
	if a.providerName == "" {
		a.providerName = "unknown"
	}
	if a.persona == "" {
		a.persona = SystemPrompt
	}
	if a.maxRounds <= 0 {
		a.maxRounds = DefaultMaxRounds
	}
	if a.chunkSize <= 0 {
		a.chunkSize = DefaultChunkSize
	}
	if a.temperature == 0 {
		a.temperature = DefaultTemperature
	}
	if a.maxTokens <= 0 {
		a.maxTokens = DefaultMaxTokens
	}
	return a
}

// Advance runs one conversation turn for the session: commit the user
// message, loop the model over the tool catalog, stream the reply through
// emit, and commit the final assistant turn.
//
// Every outcome is reported through emit before Advance returns: content
// chunks followed by a done event on success, or a single error event on
// failure. The returned error carries the same failure for the caller's log;
// [session.ErrNotFound] is returned without emitting since the transport
// rejects unknown sessions before streaming starts.
func (a *Advisor) Advance(ctx context.Context, sessionID, userMessage string, emit Emitter) error {
	if !a.sessions.Exists(sessionID) {
		return session.ErrNotFound
	}

	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "advisor.advance",
		trace.WithAttributes(observe.Attr("session_id", sessionID)))
	defer span.End()
	defer func() {
		a.metrics.AdvanceDuration.Record(ctx, time.Since(start).Seconds())
	}()
	log := observe.Logger(ctx).With("session_id", sessionID)

	if err := a.sessions.Append(sessionID, llm.Message{Role: "user", Content: userMessage}); err != nil {
		return err
	}

	transcript, err := a.sessions.Transcript(sessionID)
	if err != nil {
		return err
	}

	// Working copy. Tool rounds extend this privately; nothing below commits
	// to the store until the reply is final.
	working := transcript
	definitions := a.registry.Definitions()

	var full string
	var results []*tools.Result

	for round := 1; round <= a.maxRounds; round++ {
		resp, err := a.complete(ctx, working, definitions)
		if err != nil {
			if ctx.Err() != nil {
				// Cancelled, not an upstream fault: nothing is committed and
				// no event is sent.
				log.Warn("turn cancelled", "round", round, "err", ctx.Err())
				return ctx.Err()
			}
			log.Error("completion failed", "round", round, "err", err)
			emit(Event{Type: EventError, Content: "Error processing chat: " + err.Error()})
			return fmt.Errorf("%w: %v", ErrUpstream, err)
		}

		if len(resp.ToolCalls) == 0 {
			// Final text. Stream it in chunks and stop looping.
			full += a.emitChunked(emit, resp.Content)
			break
		}

		// The model narrated before calling tools; relay that text now.
		if resp.Content != "" {
			emit(Event{Type: EventContent, Content: resp.Content})
			full += resp.Content
		}

		roundResults := a.executeCalls(ctx, log, resp.ToolCalls)
		results = append(results, roundResults...)
		a.recordFacts(sessionID, roundResults, resp.ToolCalls)

		// Extend the working transcript: the assistant turn with its tool
		// calls, then one tool turn per result.
		working = append(working, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, res := range roundResults {
			working = append(working, llm.Message{
				Role:       "tool",
				Content:    res.JSON(),
				ToolCallID: res.CallID,
			})
		}

		if ctx.Err() != nil {
			break
		}
		if round == a.maxRounds {
			log.Warn("round limit reached with pending tool calls", "rounds", a.maxRounds)
		}
	}

	if err := ctx.Err(); err != nil {
		// Cancelled mid-turn: nothing is committed and no done is sent.
		log.Warn("turn cancelled", "err", err)
		return err
	}

	// The model executed tools but never phrased a reply. Build one from the
	// tool payloads so the user is not left hanging.
	if full == "" && len(results) > 0 {
		if formatted := formatResults(results); formatted != "" {
			full += a.emitChunked(emit, formatted)
		}
	}

	switch {
	case full != "":
		if err := a.sessions.Append(sessionID, llm.Message{Role: "assistant", Content: full}); err != nil {
			emit(Event{Type: EventError, Content: "Error processing chat: " + err.Error()})
			return err
		}
	case len(results) > 0:
		if err := a.sessions.Append(sessionID, llm.Message{Role: "assistant", Content: FallbackNotice}); err != nil {
			emit(Event{Type: EventError, Content: "Error processing chat: " + err.Error()})
			return err
		}
		emit(Event{Type: EventContent, Content: FallbackNotice})
	}

	emit(Event{Type: EventDone})
	return nil
}

// complete runs one instrumented provider call.
func (a *Advisor) complete(ctx context.Context, working []llm.Message, defs []llm.ToolDefinition) (*llm.CompletionResponse, error) {
	ctx, span := observe.StartSpan(ctx, "advisor.llm_call",
		trace.WithAttributes(observe.Attr("provider", a.providerName)))
	defer span.End()

	start := time.Now()
	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		Messages:     working,
		Tools:        defs,
		Temperature:  a.temperature,
		MaxTokens:    a.maxTokens,
		SystemPrompt: a.persona,
	})
	a.metrics.LLMDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		span.SetAttributes(observe.Attr("status", "error"))
		a.metrics.RecordProviderRequest(ctx, a.providerName, "error")
		a.metrics.RecordProviderError(ctx, a.providerName)
		return nil, err
	}
	span.SetAttributes(observe.Attr("status", "ok"))
	a.metrics.RecordProviderRequest(ctx, a.providerName, "ok")
	return resp, nil
}

// executeCalls dispatches every tool call of one round in order. It stops
// between invocations once ctx is cancelled; already-produced results are
// returned so the caller can see what ran.
func (a *Advisor) executeCalls(ctx context.Context, log *slog.Logger, calls []llm.ToolCall) []*tools.Result {
	results := make([]*tools.Result, 0, len(calls))
	for _, call := range calls {
		if ctx.Err() != nil {
			log.Warn("skipping remaining tool calls, context cancelled", "tool", call.Name)
			break
		}

		start := time.Now()
		callCtx, span := observe.StartSpan(ctx, "advisor.tool_execution",
			trace.WithAttributes(observe.Attr("tool", call.Name)))
		res := a.registry.Execute(callCtx, call)
		span.SetAttributes(observe.Attr("status", toolStatus(res)))
		span.End()
		a.metrics.ToolExecutionDuration.Record(ctx, time.Since(start).Seconds())

		switch {
		case res.Skipped:
			a.metrics.RecordToolCall(ctx, call.Name, "skipped")
			log.Warn("tool call skipped", "tool", call.Name, "reason", res.FailureReason)
		case res.Failed():
			a.metrics.RecordToolCall(ctx, call.Name, "error")
			log.Warn("tool call failed", "tool", call.Name, "reason", res.FailureReason)
		default:
			a.metrics.RecordToolCall(ctx, call.Name, "ok")
			log.Info("tool call executed", "tool", call.Name)
		}
		results = append(results, res)
	}
	return results
}

// toolStatus labels a dispatch outcome for telemetry.
func toolStatus(res *tools.Result) string {
	switch {
	case res.Skipped:
		return "skipped"
	case res.Failed():
		return "error"
	default:
		return "ok"
	}
}

// factKeys are tool arguments worth remembering across the session so lead
// capture can prefill them later.
var factKeys = []string{"income", "property_price", "down_payment", "monthly_rent", "loan_amount"}

// recordFacts persists numeric arguments from successfully executed tool
// calls as session facts. Best effort; a fact miss never fails the turn.
func (a *Advisor) recordFacts(sessionID string, results []*tools.Result, calls []llm.ToolCall) {
	facts := make(map[string]any)
	for i, res := range results {
		if res.Failed() || i >= len(calls) {
			continue
		}
		args := tools.CoerceNumbers(decodeArgs(calls[i].Arguments))
		for _, key := range factKeys {
			if v, ok := args[key]; ok {
				facts[key] = v
			}
		}
	}
	if len(facts) > 0 {
		_ = a.sessions.MergeFacts(sessionID, facts)
	}
}

func decodeArgs(raw string) map[string]any {
	var args map[string]any
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil
	}
	return args
}

// emitChunked streams text as fixed-size rune chunks and returns it.
func (a *Advisor) emitChunked(emit Emitter, text string) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	for i := 0; i < len(runes); i += a.chunkSize {
		end := i + a.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		emit(Event{Type: EventContent, Content: string(runes[i:end])})
	}
	return text
}
