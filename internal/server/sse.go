package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bayti-ai/bayti/internal/advisor"
)

// sseStream writes advisor events to an HTTP response as Server-Sent Events,
// one "data:" line per event, flushing after each so the client sees tokens
// as they arrive.
type sseStream struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// newSSEStream prepares w for SSE, writes the stream headers and flushes
// them so the client sees the stream open immediately. It fails when the
// underlying writer cannot flush.
func newSSEStream(w http.ResponseWriter) (*sseStream, error) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		return nil, errors.New("server: response writer does not support flushing")
	}
	return &sseStream{w: w, rc: rc}, nil
}

// Emit writes one event frame. Write failures are logged and otherwise
// swallowed: the client has gone away and the advisor loop will notice via
// its context.
func (s *sseStream) Emit(ev advisor.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("server: marshal sse event", "error", err)
		return
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		slog.Debug("server: sse write failed", "error", err)
		return
	}
	if err := s.rc.Flush(); err != nil {
		slog.Debug("server: sse flush failed", "error", err)
	}
}
