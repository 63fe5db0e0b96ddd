// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package auth

import (
	"context"
	"fmt"

	"github.com/tomtom215/occurlog/internal/models"
)

// AuthMode selects how authenticated requests carry their identity.
type AuthMode string

const (
	// AuthModeSession stores an opaque session id in a cookie.
	AuthModeSession AuthMode = "session"

	// AuthModeJWT issues signed HS256 tokens.
	AuthModeJWT AuthMode = "jwt"
)

// ParseAuthMode converts a config value to an AuthMode. Empty means session.
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "", string(AuthModeSession):
		return AuthModeSession, nil
	case string(AuthModeJWT):
		return AuthModeJWT, nil
	default:
		return "", fmt.Errorf("invalid auth mode: %s", s)
	}
}

func (m AuthMode) String() string {
	return string(m)
}

// AuthSubject is the authenticated identity attached to a request.
type AuthSubject struct {
	UserID     int64    `json:"user_id"`
	Username   string   `json:"username"`
	Role       string   `json:"role"`
	AuthMethod AuthMode `json:"auth_method"`

	// SessionID is set in session mode only.
	SessionID string `json:"-"`

	// ExpiresAt is the unix time the credential stops being valid.
	ExpiresAt int64 `json:"expires_at,omitempty"`
}

// IsAdmin reports whether the subject carries the admin role.
func (s *AuthSubject) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// SubjectFromUser builds a subject for a freshly authenticated user.
func SubjectFromUser(u *models.User, method AuthMode) *AuthSubject {
	return &AuthSubject{
		UserID:     u.ID,
		Username:   u.Username,
		Role:       u.Role(),
		AuthMethod: method,
	}
}

// AuthSubjectFromClaims converts validated JWT claims to a subject.
func AuthSubjectFromClaims(claims *Claims) *AuthSubject {
	if claims == nil {
		return nil
	}
	subject := &AuthSubject{
		UserID:     claims.UserID,
		Username:   claims.Username,
		Role:       claims.Role,
		AuthMethod: AuthModeJWT,
	}
	if claims.ExpiresAt != nil {
		subject.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return subject
}

type contextKey string

// AuthSubjectContextKey is the request context key holding *AuthSubject.
const AuthSubjectContextKey contextKey = "auth_subject"

// ContextWithSubject returns ctx carrying subject.
func ContextWithSubject(ctx context.Context, subject *AuthSubject) context.Context {
	return context.WithValue(ctx, AuthSubjectContextKey, subject)
}

// GetAuthSubject returns the subject stored in ctx, or nil.
func GetAuthSubject(ctx context.Context) *AuthSubject {
	subject, _ := ctx.Value(AuthSubjectContextKey).(*AuthSubject)
	return subject
}
