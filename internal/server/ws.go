package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"

	"github.com/bayti-ai/bayti/internal/advisor"
	"github.com/bayti-ai/bayti/internal/observe"
	"github.com/bayti-ai/bayti/internal/session"
)

// wsWriteTimeout bounds a single event write so one stuck client cannot pin
// the handler goroutine.
const wsWriteTimeout = 10 * time.Second

// handleChatWS serves the WebSocket variant of /chat. Each text message from
// the client is a [chatRequest]; the reply is streamed back as the same JSON
// events the SSE endpoint produces. The connection stays open across turns.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: wsOriginPatterns(s.origins),
	})
	if err != nil {
		observe.Logger(r.Context()).Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "handler exited")

	ctx := r.Context()
	log := observe.Logger(ctx)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if !errors.Is(err, context.Canceled) {
				log.Debug("websocket read failed", "error", err)
			}
			return
		}
		if typ != websocket.MessageText {
			conn.Close(websocket.StatusUnsupportedData, "text frames only")
			return
		}

		var req chatRequest
		if err := json.Unmarshal(data, &req); err != nil || req.SessionID == "" || req.Message == "" {
			writeWSEvent(ctx, conn, advisor.Event{
				Type:    advisor.EventError,
				Content: "Invalid request: session_id and message are required",
			})
			continue
		}

		emit := func(ev advisor.Event) { writeWSEvent(ctx, conn, ev) }
		if err := s.advisor.Advance(ctx, req.SessionID, req.Message, emit); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				writeWSEvent(ctx, conn, advisor.Event{
					Type:    advisor.EventError,
					Content: "Session not found",
				})
				continue
			}
			if !errors.Is(err, context.Canceled) {
				log.Error("chat turn failed", "session_id", req.SessionID, "error", err)
			}
		}
	}
}

// writeWSEvent sends one event frame, bounded by [wsWriteTimeout]. Failures
// are ignored; the next Read will surface the broken connection.
func writeWSEvent(ctx context.Context, conn *websocket.Conn, ev advisor.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, data)
}

// wsOriginPatterns converts configured origins (scheme://host:port) into the
// host patterns coder/websocket matches against.
func wsOriginPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}
