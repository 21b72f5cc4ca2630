// Package session holds the in-memory conversation state: one Session per
// chat, identified by a random UUID the client carries across requests.
//
// Sessions only ever receive committed turns. The advisor loop stages its
// intermediate tool-calling transcript privately and appends nothing here
// until a turn is final, so a cancelled or failed request leaves the
// transcript exactly as it was.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/bayti-ai/bayti/pkg/provider/llm"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a session ID does not exist. The HTTP layer
// maps it to a 404.
var ErrNotFound = errors.New("session: not found")

// Session is the state of one conversation.
type Session struct {
	// ID is the opaque identifier the client presents on every request.
	ID string

	// CreatedAt is when the session was opened.
	CreatedAt time.Time

	// UpdatedAt is when the last turn was committed.
	UpdatedAt time.Time

	turns []llm.Message
	facts map[string]any
}

// Store manages sessions in memory. All exported methods are safe for
// concurrent use; appends to a single session are serialized by the store
// lock, so interleaved requests can never produce a torn transcript.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create opens a new session and returns its ID.
func (s *Store) Create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := s.now().UTC()
	s.sessions[id] = &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		facts:     make(map[string]any),
	}
	return id
}

// Exists reports whether the session ID is known.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

// Append commits turns to the session transcript.
func (s *Store) Append(id string, turns ...llm.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	sess.turns = append(sess.turns, turns...)
	sess.UpdatedAt = s.now().UTC()
	return nil
}

// Transcript returns a copy of the committed transcript in order.
func (s *Store) Transcript(id string) ([]llm.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]llm.Message, len(sess.turns))
	copy(out, sess.turns)
	return out, nil
}

// MergeFacts records details the user has shared (income, target price,
// down payment) so later lead capture can prefill them. Existing keys are
// overwritten.
func (s *Store) MergeFacts(id string, facts map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range facts {
		sess.facts[k] = v
	}
	sess.UpdatedAt = s.now().UTC()
	return nil
}

// Facts returns a copy of the session's recorded facts.
func (s *Store) Facts(id string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make(map[string]any, len(sess.facts))
	for k, v := range sess.facts {
		out[k] = v
	}
	return out, nil
}

// Delete removes a session. Deleting an unknown ID is not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Count returns the number of live sessions, for the active-sessions gauge.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
