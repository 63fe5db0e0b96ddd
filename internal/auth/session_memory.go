// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package auth

import (
	"context"
	"sync"
	"time"
)

// MemorySessionStore keeps sessions in process memory; a restart signs
// everyone out. Callers always receive copies.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session)}
}

func (s *MemorySessionStore) Create(_ context.Context, session *Session) error {
	s.mu.Lock()
	s.sessions[session.ID] = *session
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	switch {
	case !ok:
		return nil, ErrSessionNotFound
	case session.IsExpired():
		return nil, ErrSessionExpired
	}
	return &session, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) DeleteByUserID(_ context.Context, userID int64) (int, error) {
	return s.deleteWhere(func(session *Session) bool { return session.UserID == userID }), nil
}

func (s *MemorySessionStore) CleanupExpired(_ context.Context) (int, error) {
	return s.deleteWhere((*Session).IsExpired), nil
}

func (s *MemorySessionStore) deleteWhere(match func(*Session) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if match(&session) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *MemorySessionStore) GetByUserID(_ context.Context, userID int64) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var live []*Session
	for _, session := range s.sessions {
		if session.UserID == userID && !session.IsExpired() {
			live = append(live, &session)
		}
	}
	return live, nil
}

func (s *MemorySessionStore) Touch(_ context.Context, id string, newExpiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	session.ExpiresAt = newExpiry
	s.sessions[id] = session
	return nil
}

func (s *MemorySessionStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}
