// Package server exposes the conversational mortgage advisor over HTTP.
//
// The API surface mirrors what the web frontend consumes:
//
//   - POST /chat/new  — create a session, returns {"session_id": ...}
//   - POST /chat      — send a user message, reply streamed as SSE events
//   - GET  /ws/chat   — WebSocket variant of /chat carrying the same events
//   - POST /leads     — capture contact details for a session
//   - GET  /health    — liveness probe
//   - GET  /readyz    — readiness probe
//   - GET  /metrics   — Prometheus scrape endpoint
//
// Streamed events share one JSON shape across SSE and WebSocket transports:
// {"type":"content","content":...}, {"type":"done"} and
// {"type":"error","content":...}.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bayti-ai/bayti/internal/advisor"
	"github.com/bayti-ai/bayti/internal/health"
	"github.com/bayti-ai/bayti/internal/leads"
	"github.com/bayti-ai/bayti/internal/observe"
	"github.com/bayti-ai/bayti/internal/session"
)

// defaultAllowedOrigins are the local development frontends permitted when
// no explicit origin list is configured.
var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:3001",
}

// Advancer runs one conversation turn for a session, emitting stream events
// as they become available. It is the seam between the HTTP layer and the
// advisor loop.
type Advancer interface {
	Advance(ctx context.Context, sessionID, userMessage string, emit advisor.Emitter) error
}

// Config carries the dependencies the server needs. Advisor, Sessions and
// Leads are required; the rest default sensibly when zero.
type Config struct {
	Advisor  Advancer
	Sessions *session.Store
	Leads    leads.Store

	// Metrics defaults to [observe.DefaultMetrics] when nil.
	Metrics *observe.Metrics

	// AllowedOrigins for CORS. Defaults to the local dev frontends.
	AllowedOrigins []string

	// Service is the name reported by the health endpoint. Defaults to "bayti".
	Service string

	// Ready lists extra readiness checkers exposed on /readyz.
	Ready []health.Checker
}

// Server handles the HTTP API. Construct with [New] and mount via [Handler].
type Server struct {
	advisor  Advancer
	sessions *session.Store
	leads    leads.Store
	metrics  *observe.Metrics
	origins  []string
	service  string
	ready    []health.Checker
}

// New creates a Server from cfg, applying defaults for optional fields.
func New(cfg Config) *Server {
	s := &Server{
		advisor:  cfg.Advisor,
		sessions: cfg.Sessions,
		leads:    cfg.Leads,
		metrics:  cfg.Metrics,
		origins:  cfg.AllowedOrigins,
		service:  cfg.Service,
		ready:    cfg.Ready,
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	if len(s.origins) == 0 {
		s.origins = defaultAllowedOrigins
	}
	if s.service == "" {
		s.service = "bayti"
	}
	return s
}

// Handler returns the fully wired HTTP handler: routes, CORS, and the
// tracing/metrics middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /chat/new", s.handleNewSession)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /ws/chat", s.handleChatWS)
	mux.HandleFunc("POST /leads", s.handleLeads)
	mux.Handle("GET /metrics", promhttp.Handler())
	health.New(s.service, s.ready...).Register(mux)

	return s.cors(observe.Middleware(s.metrics)(mux))
}

// ─── Sessions ────────────────────────────────────────────────────────────────

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.Create()
	s.metrics.ActiveSessions.Add(r.Context(), 1)
	observe.Logger(r.Context()).Info("session created", "session_id", id)
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id})
}

// ─── Chat ────────────────────────────────────────────────────────────────────

// chatRequest is the body of POST /chat and of each WebSocket text message.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "session_id and message are required")
		return
	}
	if !s.sessions.Exists(req.SessionID) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	log := observe.Logger(r.Context())
	stream, err := newSSEStream(w)
	if err != nil {
		// Headers are already committed; nothing useful can be sent back.
		log.Error("sse stream setup failed", "session_id", req.SessionID, "error", err)
		return
	}

	if err := s.advisor.Advance(r.Context(), req.SessionID, req.Message, stream.Emit); err != nil {
		// The advisor has already emitted an error event where one applies;
		// headers are out the door, so all that is left is to log.
		if !errors.Is(err, context.Canceled) {
			log.Error("chat turn failed", "session_id", req.SessionID, "error", err)
		}
	}
}

// ─── Leads ───────────────────────────────────────────────────────────────────

// leadRequest is the body of POST /leads.
type leadRequest struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !s.sessions.Exists(req.SessionID) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	facts, err := s.sessions.Facts(req.SessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	lead := &leads.Lead{
		SessionID: req.SessionID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Facts:     facts,
	}
	if err := lead.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log := observe.Logger(r.Context())
	if err := s.leads.Save(r.Context(), lead); err != nil {
		log.Error("lead save failed", "session_id", req.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to capture lead")
		return
	}

	// Contact details become session facts so later turns can refer to them.
	_ = s.sessions.MergeFacts(req.SessionID, map[string]any{
		"name":  req.Name,
		"email": req.Email,
		"phone": req.Phone,
	})

	s.metrics.RecordLeadCaptured(r.Context(), storeKind(s.leads))
	log.Info("lead captured", "session_id", req.SessionID, "email", req.Email)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Lead captured successfully",
	})
}

// storeKind labels the lead store implementation for metrics.
func storeKind(s leads.Store) string {
	switch s.(type) {
	case *leads.FileStore:
		return "file"
	case *leads.PostgresStore:
		return "postgres"
	default:
		return "unknown"
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// cors restricts browser access to the configured origins and answers
// preflight requests.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range s.origins {
			if origin == allowed {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Correlation-ID")
				h.Set("Access-Control-Allow-Credentials", "true")
				break
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("server: encode response", "error", err)
	}
}

// writeError writes an error response in the {"detail": ...} shape the
// frontend expects.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
