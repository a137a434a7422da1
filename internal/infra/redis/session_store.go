package redis

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"vocab-sprint/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions own a live clock and subscriber channels, so they stay in a local map;
// Redis records which session is live for which user:
//
//	SET vocab:session:{id} {userID} EX ttl
//	SET vocab:user:{userID}:session {id} EX ttl
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
	byUser   map[string]string
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
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

	// best-effort liveness markers
	ctx := context.Background()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.sessionKey(session.ID()), session.UserID(), s.ttl)
	pipe.Set(ctx, s.userKey(session.UserID()), session.ID(), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("mark session %s live failed: %v", session.ID(), err)
	}
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

	ctx := context.Background()
	_ = s.client.Del(ctx, s.sessionKey(id)).Err()
	if s.byUser[session.UserID()] == id {
		delete(s.byUser, session.UserID())
		_ = s.client.Del(ctx, s.userKey(session.UserID())).Err()
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

func (s *SessionStore) sessionKey(id string) string {
	return "vocab:session:" + id
}

func (s *SessionStore) userKey(userID string) string {
	return "vocab:user:" + userID + ":session"
}
