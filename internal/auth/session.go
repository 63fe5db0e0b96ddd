// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Session is a server-side login. The cookie only carries ID.
type Session struct {
	ID       string `json:"id"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`

	// Remember marks "remember me" logins, which get the long lifetime.
	Remember bool `json:"remember"`

	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

func (s *Session) IsExpired() bool { return time.Now().After(s.ExpiresAt) }

// ToAuthSubject is the identity a request authenticated by s acts as.
func (s *Session) ToAuthSubject() *AuthSubject {
	return &AuthSubject{
		UserID:     s.UserID,
		Username:   s.Username,
		Role:       s.Role,
		AuthMethod: AuthModeSession,
		SessionID:  s.ID,
		ExpiresAt:  s.ExpiresAt.Unix(),
	}
}

// NewSession starts a session for subject lasting duration. The id is 32
// random bytes, hex encoded, and is never reused: a login always gets a new
// one.
func NewSession(subject *AuthSubject, duration time.Duration, remember bool) (*Session, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	id := hex.EncodeToString(raw)
	now := time.Now()
	return &Session{
		ID:             id,
		UserID:         subject.UserID,
		Username:       subject.Username,
		Role:           subject.Role,
		Remember:       remember,
		CreatedAt:      now,
		ExpiresAt:      now.Add(duration),
		LastAccessedAt: now,
	}, nil
}

// SessionStore persists sessions. Get reports ErrSessionNotFound or
// ErrSessionExpired; Delete of an unknown id succeeds. GetByUserID skips
// expired sessions while Count includes them until CleanupExpired runs.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID int64) (int, error)
	GetByUserID(ctx context.Context, userID int64) ([]*Session, error)
	// Touch records an access and moves the expiry to newExpiry.
	Touch(ctx context.Context, id string, newExpiry time.Time) error
	CleanupExpired(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}
