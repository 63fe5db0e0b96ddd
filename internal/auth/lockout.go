// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/occurlog/internal/config"
	"github.com/tomtom215/occurlog/internal/logging"
)

// ErrLockoutNotFound is returned when a lockout entry doesn't exist.
var ErrLockoutNotFound = errors.New("lockout entry not found")

// ErrAccountLocked is returned when authentication is blocked due to lockout.
var ErrAccountLocked = errors.New("account temporarily locked due to too many failed attempts")

// lockoutRetention keeps unlocked entries around so repeat offenders still
// get the doubled lockout.
const lockoutRetention = 24 * time.Hour

// LockoutConfig holds configuration for the account lockout system.
type LockoutConfig struct {
	// MaxAttempts is the number of failed attempts before lockout.
	MaxAttempts int

	// LockoutDuration is the base lockout period.
	LockoutDuration time.Duration

	// ExponentialBackoff doubles the period for every earlier lockout, up to
	// MaxLockoutDuration.
	ExponentialBackoff bool
	MaxLockoutDuration time.Duration

	// CleanupInterval is how often expired entries are purged.
	CleanupInterval time.Duration

	// Enabled controls whether lockout is active.
	Enabled bool
}

// DefaultLockoutConfig returns sensible defaults.
func DefaultLockoutConfig() *LockoutConfig {
	return &LockoutConfig{
		MaxAttempts:        5,
		LockoutDuration:    15 * time.Minute,
		ExponentialBackoff: true,
		MaxLockoutDuration: 24 * time.Hour,
		CleanupInterval:    5 * time.Minute,
		Enabled:            true,
	}
}

// LockoutConfigFromSecurity derives the lockout settings from the security
// config: MaxLoginAttempts failures lock the account for LockoutDuration.
func LockoutConfigFromSecurity(cfg *config.SecurityConfig) *LockoutConfig {
	lc := DefaultLockoutConfig()
	lc.MaxAttempts = cfg.MaxLoginAttempts
	lc.LockoutDuration = cfg.LockoutDuration
	if lc.MaxLockoutDuration < lc.LockoutDuration {
		lc.MaxLockoutDuration = lc.LockoutDuration
	}
	lc.Enabled = cfg.MaxLoginAttempts > 0 && cfg.LockoutDuration > 0
	return lc
}

// LockoutEntry tracks failed logins for one username.
type LockoutEntry struct {
	Username       string
	FailedAttempts int
	LastAttempt    time.Time
	LastFailedIP   string

	// LockoutCount is how many times the account has been locked.
	LockoutCount int
	LockedUntil  time.Time
}

// IsLocked returns true if the entry is currently locked out.
func (e *LockoutEntry) IsLocked(now time.Time) bool {
	return now.Before(e.LockedUntil)
}

// LockoutStore persists lockout state.
type LockoutStore interface {
	GetEntry(ctx context.Context, username string) (*LockoutEntry, error)
	SaveEntry(ctx context.Context, entry *LockoutEntry) error
	DeleteEntry(ctx context.Context, username string) error
	CleanupExpired(ctx context.Context, before time.Time) (int, error)
}

// LockoutManager counts failed logins per username and locks accounts that
// exceed the limit.
type LockoutManager struct {
	config LockoutConfig
	store  LockoutStore
	now    func() time.Time
}

// NewLockoutManager creates a new lockout manager.
func NewLockoutManager(store LockoutStore, cfg *LockoutConfig) *LockoutManager {
	if cfg == nil {
		cfg = DefaultLockoutConfig()
	}
	if store == nil {
		store = NewMemoryLockoutStore()
	}
	return &LockoutManager{
		config: *cfg,
		store:  store,
		now:    time.Now,
	}
}

// CheckLocked reports whether username is locked and for how much longer.
func (m *LockoutManager) CheckLocked(ctx context.Context, username string) (bool, time.Duration, error) {
	if !m.config.Enabled {
		return false, 0, nil
	}

	entry, err := m.store.GetEntry(ctx, username)
	if errors.Is(err, ErrLockoutNotFound) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("check lockout: %w", err)
	}

	now := m.now()
	if !entry.IsLocked(now) {
		return false, 0, nil
	}
	return true, entry.LockedUntil.Sub(now), nil
}

// RecordFailedAttempt counts a failure and reports whether it locked the
// account.
func (m *LockoutManager) RecordFailedAttempt(ctx context.Context, username, ip string) (bool, time.Duration, error) {
	if !m.config.Enabled {
		return false, 0, nil
	}

	entry, err := m.store.GetEntry(ctx, username)
	if errors.Is(err, ErrLockoutNotFound) {
		entry = &LockoutEntry{Username: username}
	} else if err != nil {
		return false, 0, fmt.Errorf("get lockout entry: %w", err)
	}

	now := m.now()
	if entry.IsLocked(now) {
		return true, entry.LockedUntil.Sub(now), nil
	}

	entry.FailedAttempts++
	entry.LastAttempt = now
	entry.LastFailedIP = ip

	var duration time.Duration
	if entry.FailedAttempts >= m.config.MaxAttempts {
		duration = m.lockoutDuration(entry.LockoutCount)
		entry.LockedUntil = now.Add(duration)
		entry.LockoutCount++
		entry.FailedAttempts = 0

		logging.Warn().
			Str("username", logging.SanitizeUsername(username)).
			Str("ip", ip).
			Dur("duration", duration).
			Int("lockout_count", entry.LockoutCount).
			Msg("Account locked")
	}

	if err := m.store.SaveEntry(ctx, entry); err != nil {
		return false, 0, fmt.Errorf("save lockout entry: %w", err)
	}
	return duration > 0, duration, nil
}

// lockoutDuration doubles the base period for every earlier lockout.
func (m *LockoutManager) lockoutDuration(previous int) time.Duration {
	d := m.config.LockoutDuration
	if !m.config.ExponentialBackoff {
		return d
	}
	for i := 0; i < previous; i++ {
		d *= 2
		if d >= m.config.MaxLockoutDuration {
			return m.config.MaxLockoutDuration
		}
	}
	return d
}

// RecordSuccessfulLogin clears the failure count of username.
func (m *LockoutManager) RecordSuccessfulLogin(ctx context.Context, username string) error {
	if !m.config.Enabled {
		return nil
	}
	if err := m.store.DeleteEntry(ctx, username); err != nil && !errors.Is(err, ErrLockoutNotFound) {
		return fmt.Errorf("clear lockout: %w", err)
	}
	return nil
}

// Cleanup drops entries that have been unlocked for longer than a day.
func (m *LockoutManager) Cleanup(ctx context.Context) {
	count, err := m.store.CleanupExpired(ctx, m.now().Add(-lockoutRetention))
	if err != nil {
		logging.Error().Err(err).Msg("Lockout cleanup error")
		return
	}
	if count > 0 {
		logging.Debug().Int("count", count).Msg("Cleaned up expired lockout entries")
	}
}

// CleanupInterval returns how often Cleanup should run.
func (m *LockoutManager) CleanupInterval() time.Duration {
	return m.config.CleanupInterval
}

// MemoryLockoutStore implements LockoutStore using in-memory storage.
type MemoryLockoutStore struct {
	mu      sync.RWMutex
	entries map[string]LockoutEntry
}

// NewMemoryLockoutStore creates a new in-memory lockout store.
func NewMemoryLockoutStore() *MemoryLockoutStore {
	return &MemoryLockoutStore{
		entries: make(map[string]LockoutEntry),
	}
}

// GetEntry returns a copy of the entry for username.
func (s *MemoryLockoutStore) GetEntry(_ context.Context, username string) (*LockoutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[username]
	if !ok {
		return nil, ErrLockoutNotFound
	}
	return &entry, nil
}

// SaveEntry persists a lockout entry.
func (s *MemoryLockoutStore) SaveEntry(_ context.Context, entry *LockoutEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Username] = *entry
	return nil
}

// DeleteEntry removes a lockout entry.
func (s *MemoryLockoutStore) DeleteEntry(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[username]; !ok {
		return ErrLockoutNotFound
	}
	delete(s.entries, username)
	return nil
}

// CleanupExpired removes unlocked entries last touched before before.
func (s *MemoryLockoutStore) CleanupExpired(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for username, entry := range s.entries {
		if entry.LockedUntil.Before(before) && entry.LastAttempt.Before(before) {
			delete(s.entries, username)
			count++
		}
	}
	return count, nil
}
