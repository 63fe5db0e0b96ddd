// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package auth

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// SessionStoreType names a session backend as written in the
// security.session_store setting.
type SessionStoreType string

const (
	SessionStoreMemory SessionStoreType = "memory"
	SessionStoreBadger SessionStoreType = "badger"
)

// OpenSessionStore returns the store for kind and a function releasing its
// backend. Badger with an empty path runs in memory.
func OpenSessionStore(kind SessionStoreType, path string) (SessionStore, func() error, error) {
	switch kind {
	case SessionStoreMemory, "":
		return NewMemorySessionStore(), func() error { return nil }, nil
	case SessionStoreBadger:
	default:
		return nil, nil, fmt.Errorf("unknown session store type %q", kind)
	}

	opts := badger.DefaultOptions(path).WithInMemory(path == "").WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open badger session store: %w", err)
	}
	return NewBadgerSessionStore(db), db.Close, nil
}
