// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

// Package cache provides a generic, thread-safe TTL cache.
//
// The stats service keeps one computed dashboard per (timezone, day, map
// view) key and clears the cache whenever an occurrence is logged or a
// location is mapped. GenerateKey hashes arbitrary parameters into a compact
// key:
//
//	key := cache.GenerateKey("dashboard", params)
//	if d, ok := c.Get(key); ok {
//	    return d, nil
//	}
package cache
