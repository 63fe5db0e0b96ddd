// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefixes for BadgerDB storage
const (
	sessionKeyPrefix     = "session:"
	sessionUserKeyPrefix = "session_user:"
)

// expiredRetention is the minimum badger TTL, so an expired session still
// answers ErrSessionExpired for a while instead of ErrSessionNotFound.
const expiredRetention = time.Minute

// BadgerSessionStore implements SessionStore on BadgerDB so logins survive
// restarts. Entries carry a badger TTL matching the session expiry.
type BadgerSessionStore struct {
	db *badger.DB
}

// NewBadgerSessionStore creates a new BadgerDB-backed session store.
func NewBadgerSessionStore(db *badger.DB) *BadgerSessionStore {
	return &BadgerSessionStore{db: db}
}

func sessionKey(id string) []byte {
	return []byte(sessionKeyPrefix + id)
}

func userPrefix(userID int64) []byte {
	return []byte(sessionUserKeyPrefix + strconv.FormatInt(userID, 10) + ":")
}

func userKey(userID int64, id string) []byte {
	return append(userPrefix(userID), id...)
}

// setSession writes the session and its user index with a TTL.
func setSession(txn *badger.Txn, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl < expiredRetention {
		ttl = expiredRetention
	}

	if err := txn.SetEntry(badger.NewEntry(sessionKey(session.ID), data).WithTTL(ttl)); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	if err := txn.SetEntry(badger.NewEntry(userKey(session.UserID, session.ID), []byte(session.ID)).WithTTL(ttl)); err != nil {
		return fmt.Errorf("set user mapping: %w", err)
	}
	return nil
}

func getSession(txn *badger.Txn, id string) (*Session, error) {
	item, err := txn.Get(sessionKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &session)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Create stores a new session.
func (s *BadgerSessionStore) Create(_ context.Context, session *Session) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return setSession(txn, session)
	})
}

// Get retrieves a session by ID.
func (s *BadgerSessionStore) Get(_ context.Context, id string) (*Session, error) {
	var session *Session
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		session, err = getSession(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// Delete removes a session and its user mapping.
func (s *BadgerSessionStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		session, err := getSession(txn, id)
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return deleteSession(txn, session)
	})
}

func deleteSession(txn *badger.Txn, session *Session) error {
	if err := txn.Delete(sessionKey(session.ID)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := txn.Delete(userKey(session.UserID, session.ID)); err != nil {
		return fmt.Errorf("delete user mapping: %w", err)
	}
	return nil
}

// userSessionIDs lists the session ids indexed under userID.
func userSessionIDs(txn *badger.Txn, userID int64) ([]string, error) {
	opts := badger.DefaultIteratorOptions
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	prefix := userPrefix(userID)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		err := it.Item().Value(func(val []byte) error {
			ids = append(ids, string(val))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// DeleteByUserID removes all sessions for a user.
func (s *BadgerSessionStore) DeleteByUserID(_ context.Context, userID int64) (int, error) {
	count := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		ids, err := userSessionIDs(txn, userID)
		if err != nil {
			return fmt.Errorf("list user sessions: %w", err)
		}
		for _, id := range ids {
			if err := txn.Delete(sessionKey(id)); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			if err := txn.Delete(userKey(userID, id)); err != nil {
				return fmt.Errorf("delete user mapping: %w", err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetByUserID returns all unexpired sessions for a user.
func (s *BadgerSessionStore) GetByUserID(_ context.Context, userID int64) ([]*Session, error) {
	var sessions []*Session
	err := s.db.View(func(txn *badger.Txn) error {
		ids, err := userSessionIDs(txn, userID)
		if err != nil {
			return fmt.Errorf("list user sessions: %w", err)
		}
		for _, id := range ids {
			session, err := getSession(txn, id)
			if err != nil {
				continue // Session may have been deleted
			}
			if !session.IsExpired() {
				sessions = append(sessions, session)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// Touch updates the session's last accessed time and extends expiry.
func (s *BadgerSessionStore) Touch(_ context.Context, id string, newExpiry time.Time) error {
	return s.db.Update(func(txn *badger.Txn) error {
		session, err := getSession(txn, id)
		if err != nil {
			return err
		}
		session.LastAccessedAt = time.Now()
		session.ExpiresAt = newExpiry
		return setSession(txn, session)
	})
}

// CleanupExpired removes sessions whose expiry has passed but whose badger
// TTL has not yet fired.
func (s *BadgerSessionStore) CleanupExpired(_ context.Context) (int, error) {
	var expired []*Session
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var session Session
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			})
			if err != nil {
				continue
			}
			if session.IsExpired() {
				expired = append(expired, &session)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, session := range expired {
			if err := deleteSession(txn, session); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(expired), nil
}

// Count returns the total number of sessions in the store.
func (s *BadgerSessionStore) Count(_ context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
