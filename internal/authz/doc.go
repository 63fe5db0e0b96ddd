// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

// Package authz decides what an authenticated user may do, using Casbin RBAC.
//
// There are two roles. "user" may read the dashboard, log occurrences and
// manage its own settings. "admin" inherits everything from "user" and may
// additionally manage accounts, map locations to coordinates and delete
// occurrences. Users are linked to their role with AssignRole when they are
// created and at startup.
//
// Decisions are cached for a short TTL; role changes clear the cache.
package authz
