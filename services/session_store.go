package services

import (
	"fmt"
	"sync"

	"github.com/docuchat/server/models"

	"github.com/google/uuid"
)

// Session accumulates everything one client has ingested, together with the
// index and summary derived from it. Index and summary are always rebuilt
// from the entire document sequence; they are never set independently.
type Session struct {
	ID string

	// mu serializes append-then-rebuild cycles for this session. Exactly one
	// rebuild may be in flight per session at a time; different sessions
	// never contend.
	mu        sync.Mutex
	documents models.DocumentSequence
	index     RetrievalIndex
	summary   string
}

// Documents returns a copy of the session's document sequence.
func (s *Session) Documents() models.DocumentSequence {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make(models.DocumentSequence, len(s.documents))
	copy(docs, s.documents)
	return docs
}

// Index returns the session's current retrieval index, nil until the first
// ingestion completes.
func (s *Session) Index() RetrievalIndex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Summary returns the summary derived from the full current sequence.
func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// SessionStore is the process-wide session map. It lives for process uptime;
// sessions are never deleted and nothing is persisted.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create mints a new session with an opaque unique token.
func (st *SessionStore) Create() *Session {
	session := &Session{ID: uuid.New().String()}
	st.mu.Lock()
	st.sessions[session.ID] = session
	st.mu.Unlock()
	return session
}

// Get looks up a session by token.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	session, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}
