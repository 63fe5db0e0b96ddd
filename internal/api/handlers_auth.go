// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/occurlog/internal/auth"
	"github.com/tomtom215/occurlog/internal/logging"
)

// Landing pages of the web client.
const (
	HomePath  = "/home"
	LoginPath = "/login"
)

// LoginResponse is returned by a successful login. Redirect is where the
// client should go next.
type LoginResponse struct {
	User      *auth.AuthSubject `json:"user"`
	Token     string            `json:"token,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
	Redirect  string            `json:"redirect"`
}

// Index redirects to the dashboard when a credential is presented and to the
// login page otherwise.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	target := LoginPath
	if auth.GetAuthSubject(r.Context()) != nil {
		target = HomePath
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Login checks the credentials and issues a session cookie or token. The
// "next" query parameter is echoed as the redirect when it is a path on
// this site.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.accounts.AuthenticateUser(r.Context(), strings.TrimSpace(req.Username), req.Password, clientIP(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.sessions.Login(w, r, user, req.Remember)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.CtxInfo(r.Context()).
		Str("username", user.Username).
		Bool("remember", req.Remember).
		Msg("User logged in")

	WriteSuccess(w, r, LoginResponse{
		User:      result.Subject,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Redirect:  safeRedirect(r.URL.Query().Get("next")),
	})
}

// Logout ends the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		logging.CtxErr(r.Context(), err).Msg("Failed to delete session on logout")
	}
	NewResponseWriter(w, r).NoContent()
}

// Register creates a regular account when self registration is enabled.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.accounts.RegistrationEnabled() {
		respondError(w, r, auth.ErrRegistrationDisabled)
		return
	}

	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(user)
}

// Me returns the authenticated account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	WriteSuccess(w, r, user)
}

// safeRedirect returns next when it is a local absolute path and HomePath
// otherwise. Scheme-relative ("//host") and backslash tricks are refused.
func safeRedirect(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return HomePath
	}
	if strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return HomePath
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return HomePath
	}
	return next
}

// clientIP returns the remote address without its port. chi's RealIP runs
// first, so proxies are honored.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
