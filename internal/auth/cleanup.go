// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package auth

import (
	"context"
	"time"

	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/metrics"
)

// Cleaner periodically purges expired sessions and stale lockout entries.
type Cleaner struct {
	sessions SessionStore
	lockout  *LockoutManager
	interval time.Duration
}

// NewCleaner creates a cleaner running every interval. Either collaborator
// may be nil.
func NewCleaner(sessions SessionStore, lockout *LockoutManager, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Cleaner{sessions: sessions, lockout: lockout, interval: interval}
}

// Run cleans once immediately and then on every tick until ctx is done.
func (c *Cleaner) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.CleanOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// CleanOnce performs a single cleanup pass.
func (c *Cleaner) CleanOnce(ctx context.Context) {
	if c.sessions != nil {
		removed, err := c.sessions.CleanupExpired(ctx)
		if err != nil {
			logging.CtxErr(ctx, err).Msg("Session cleanup failed")
		} else if removed > 0 {
			metrics.SessionsExpired.Add(float64(removed))
			logging.Debug().Int("count", removed).Msg("Removed expired sessions")
		}
		if count, err := c.sessions.Count(ctx); err == nil {
			metrics.ActiveSessions.Set(float64(count))
		}
	}
	if c.lockout != nil {
		c.lockout.Cleanup(ctx)
	}
}
