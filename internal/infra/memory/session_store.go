package memory

import (
	"sync"

	"vocab-sprint/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Each user has at most one active session.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
	byUser   map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
		byUser:   make(map[string]string),
	}
}

func (s *SessionStore) Put(session *app.Session) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	var previous *app.Session
	if id, ok := s.byUser[session.UserID()]; ok {
		previous = s.sessions[id]
	}
	s.sessions[session.ID()] = session
	s.byUser[session.UserID()] = session.ID()
	return previous
}

func (s *SessionStore) Get(id string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return
	}
	delete(s.sessions, id)
	if s.byUser[session.UserID()] == id {
		delete(s.byUser, session.UserID())
	}
}

func (s *SessionStore) List() []*app.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*app.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		list = append(list, session)
	}
	return list
}
