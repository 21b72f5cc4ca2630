package advisor

// EventType discriminates the events emitted while advancing a conversation.
type EventType string

const (
	// EventContent carries a chunk of assistant text.
	EventContent EventType = "content"

	// EventDone signals that the turn finished and the transcript was
	// committed. It is always the last event of a successful turn.
	EventDone EventType = "done"

	// EventError signals that the turn failed. No further events follow and
	// no assistant turn was committed.
	EventError EventType = "error"
)

// Event is one unit of streamed advisor output. The JSON shape is the wire
// format both the SSE and WebSocket transports relay verbatim.
type Event struct {
	Type    EventType `json:"type"`
	Content string    `json:"content,omitempty"`
}

// Emitter receives events in order as a turn progresses. Implementations
// must not block indefinitely; a slow client stalls the whole turn.
type Emitter func(Event)
