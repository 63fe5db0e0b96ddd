// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/models"
)

// DefaultCookieName is the cookie carrying the session id or token.
const DefaultCookieName = "occurlog_session"

// MiddlewareConfig controls how credentials are issued and read.
type MiddlewareConfig struct {
	Mode       AuthMode
	CookieName string

	// SessionTTL is the lifetime of a normal login, RememberTTL the lifetime
	// of a "remember me" login.
	SessionTTL  time.Duration
	RememberTTL time.Duration

	// SlidingSession extends the expiry on every authenticated request.
	SlidingSession bool

	CookieSecure bool
}

// Middleware authenticates requests and issues credentials on login.
type Middleware struct {
	config       MiddlewareConfig
	sessions     SessionStore
	jwt          *JWTManager
	unauthorized http.Handler
}

// NewMiddleware creates the middleware. Session mode needs a store and JWT
// mode a manager.
func NewMiddleware(cfg MiddlewareConfig, sessions SessionStore, jwtManager *JWTManager) (*Middleware, error) {
	switch cfg.Mode {
	case AuthModeSession:
		if sessions == nil {
			return nil, errors.New("session mode requires a session store")
		}
	case AuthModeJWT:
		if jwtManager == nil {
			return nil, errors.New("jwt mode requires a JWT manager")
		}
	default:
		return nil, fmt.Errorf("invalid auth mode: %s", cfg.Mode)
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.RememberTTL < cfg.SessionTTL {
		cfg.RememberTTL = cfg.SessionTTL
	}

	return &Middleware{
		config:   cfg,
		sessions: sessions,
		jwt:      jwtManager,
		unauthorized: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
		}),
	}, nil
}

// SetUnauthorizedHandler replaces the 401 response written by RequireAuth.
func (m *Middleware) SetUnauthorizedHandler(h http.Handler) {
	m.unauthorized = h
}

// Mode returns the configured auth mode.
func (m *Middleware) Mode() AuthMode {
	return m.config.Mode
}

// Authenticate places the AuthSubject of a valid credential in the request
// context. Requests without one pass through unchanged.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var subject *AuthSubject
		switch m.config.Mode {
		case AuthModeSession:
			subject = m.sessionSubject(r)
		case AuthModeJWT:
			subject = m.tokenSubject(r)
		}
		if subject == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := ContextWithSubject(r.Context(), subject)
		ctx = logging.ContextWithUsername(ctx, subject.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) sessionSubject(r *http.Request) *AuthSubject {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	session, err := m.sessions.Get(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
			logging.CtxErr(r.Context(), err).Msg("Session lookup error")
		}
		return nil
	}

	if m.config.SlidingSession {
		expiry := time.Now().Add(m.ttl(session.Remember))
		if err := m.sessions.Touch(r.Context(), session.ID, expiry); err != nil {
			logging.CtxErr(r.Context(), err).Msg("Failed to touch session")
		} else {
			session.ExpiresAt = expiry
		}
	}
	return session.ToAuthSubject()
}

func (m *Middleware) tokenSubject(r *http.Request) *AuthSubject {
	token := extractToken(r, m.config.CookieName)
	if token == "" {
		return nil
	}
	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected token")
		return nil
	}
	return AuthSubjectFromClaims(claims)
}

// extractToken reads a Bearer header first, then the cookie.
func extractToken(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth answers 401 when Authenticate found no subject.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAuthSubject(r.Context()) == nil {
			m.unauthorized.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) ttl(remember bool) time.Duration {
	if remember {
		return m.config.RememberTTL
	}
	return m.config.SessionTTL
}

// LoginResult describes the credential issued by Login.
type LoginResult struct {
	Subject   *AuthSubject `json:"user"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Login issues a credential for user and sets the cookie. In session mode
// any session presented with the request is destroyed first, so the id
// always changes on login.
func (m *Middleware) Login(w http.ResponseWriter, r *http.Request, user *models.User, remember bool) (*LoginResult, error) {
	ttl := m.ttl(remember)
	subject := SubjectFromUser(user, m.config.Mode)

	switch m.config.Mode {
	case AuthModeJWT:
		token, expires, err := m.jwt.GenerateToken(subject, ttl)
		if err != nil {
			return nil, err
		}
		subject.ExpiresAt = expires.Unix()
		m.setCookie(w, token, expires, remember)
		return &LoginResult{Subject: subject, Token: token, ExpiresAt: expires}, nil

	default:
		if cookie, err := r.Cookie(m.config.CookieName); err == nil && cookie.Value != "" {
			if err := m.sessions.Delete(r.Context(), cookie.Value); err != nil {
				logging.CtxErr(r.Context(), err).Msg("Failed to delete previous session")
			}
		}
		session, err := NewSession(subject, ttl, remember)
		if err != nil {
			return nil, err
		}
		if err := m.sessions.Create(r.Context(), session); err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		m.setCookie(w, session.ID, session.ExpiresAt, remember)
		return &LoginResult{Subject: session.ToAuthSubject(), ExpiresAt: session.ExpiresAt}, nil
	}
}

// Logout destroys the current session, if any, and clears the cookie. JWTs
// stay valid until they expire.
func (m *Middleware) Logout(w http.ResponseWriter, r *http.Request) error {
	defer m.clearCookie(w)

	if m.config.Mode != AuthModeSession {
		return nil
	}
	subject := GetAuthSubject(r.Context())
	if subject == nil || subject.SessionID == "" {
		return nil
	}
	return m.sessions.Delete(r.Context(), subject.SessionID)
}

// RevokeOtherSessions deletes every session of userID except keep. Used
// after a password change.
func (m *Middleware) RevokeOtherSessions(ctx context.Context, userID int64, keep string) (int, error) {
	if m.sessions == nil {
		return 0, nil
	}
	sessions, err := m.sessions.GetByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	revoked := 0
	for _, s := range sessions {
		if s.ID == keep {
			continue
		}
		if err := m.sessions.Delete(ctx, s.ID); err != nil {
			return revoked, err
		}
		revoked++
	}
	return revoked, nil
}

// setCookie writes the credential cookie. Only remembered logins get a
// persistent cookie; others end with the browser session.
func (m *Middleware) setCookie(w http.ResponseWriter, value string, expires time.Time, remember bool) {
	cookie := &http.Cookie{
		Name:     m.config.CookieName,
		Value:    value,
		Path:     "/",
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.Expires = expires
		cookie.MaxAge = int(time.Until(expires).Seconds())
	}
	http.SetCookie(w, cookie)
}

func (m *Middleware) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
