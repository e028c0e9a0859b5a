package server

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chazu/hlang/vm"
)

// Session is an evaluation workspace whose global environment persists
// between evaluations. Its interpreter must only be used on the worker.
type Session struct {
	ID      string
	Name    string
	Created time.Time

	interp   *vm.Interpreter
	out      *bytes.Buffer
	lastUsed time.Time
}

// InterpreterFactory builds the interpreter of a new session. Output of
// "print" must go to stdout.
type InterpreterFactory func(stdout io.Writer) *vm.Interpreter

// SessionStore manages evaluation sessions.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	newInterp InterpreterFactory
}

// NewSessionStore creates a new session store.
func NewSessionStore(newInterp InterpreterFactory) *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]*Session),
		newInterp: newInterp,
	}
}

// Create creates a new session with an optional name.
func (s *SessionStore) Create(name string) *Session {
	now := time.Now()
	out := &bytes.Buffer{}
	session := &Session{
		ID:       uuid.NewString(),
		Name:     name,
		Created:  now,
		interp:   s.newInterp(out),
		out:      out,
		lastUsed: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get retrieves a session by ID and marks it used.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if ok {
		session.lastUsed = time.Now()
	}
	return session, ok
}

// Destroy removes a session. It reports whether the session existed.
func (s *SessionStore) Destroy(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions that haven't been used within the TTL.
func (s *SessionStore) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for id, session := range s.sessions {
		if session.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs periodic TTL sweeps in the background.
// Returns a stop function.
func (s *SessionStore) StartSweeper(interval, ttl time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				s.Sweep(ttl)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}
