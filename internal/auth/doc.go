// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

/*
Package auth provides accounts, login, and request authentication.

Key Components:

  - Service: login with lockout, account creation, self registration,
    password changes and the bootstrap administrator
  - LockoutManager: counts failed logins per username and locks the account
    after too many, doubling the period for repeat offenders
  - SessionStore: server-side sessions, in memory or in BadgerDB
  - JWTManager: HS256 tokens for the jwt auth mode
  - Middleware: reads the cookie or Bearer token, places an AuthSubject in
    the request context, and issues credentials on login
  - Cleaner: purges expired sessions and stale lockout entries

Authentication Modes:

Session mode (default) stores an opaque 64 character id in an HttpOnly
cookie. The id is regenerated on every login. Sessions slide: every
authenticated request extends the expiry by the session lifetime, or by the
remember lifetime for "remember me" logins.

JWT mode issues a signed token that is returned in the login response and
also set as a cookie. Tokens are accepted from an "Authorization: Bearer"
header or the cookie and cannot be revoked before they expire.

Passwords are hashed with bcrypt at cost 12 and checked against the policy
in internal/config before they are stored.

Usage:

	svc := auth.NewService(db, auth.ServiceConfig{
	    AllowRegistration: cfg.Security.AllowRegistration,
	    Lockout:           auth.NewLockoutManager(nil, auth.LockoutConfigFromSecurity(&cfg.Security)),
	    Publisher:         bus,
	    Roles:             enforcer,
	})

	user, err := svc.AuthenticateUser(ctx, username, password, clientIP)
	if errors.Is(err, auth.ErrAccountLocked) {
	    // 423 with Retry-After
	}
	result, err := mw.Login(w, r, user, remember)
*/
package auth
