// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package services

import "context"

// Runner is satisfied by *auth.Cleaner.
type Runner interface {
	Run(ctx context.Context) error
}

// ContextHub is satisfied by *websocket.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// RunnerService adapts a blocking run function that honors ctx into a
// suture service. Both the hub and the cleaner release everything they own
// when run returns, so suture may restart them freely.
type RunnerService struct {
	run  func(ctx context.Context) error
	name string
}

// NewWebSocketHubService supervises the websocket hub in the messaging layer.
func NewWebSocketHubService(hub ContextHub) *RunnerService {
	return &RunnerService{run: hub.RunWithContext, name: "websocket-hub"}
}

// NewCleanupService supervises the expired session and lockout purge in the
// data layer.
func NewCleanupService(cleaner Runner) *RunnerService {
	return &RunnerService{run: cleaner.Run, name: "session-cleanup"}
}

func (s *RunnerService) Serve(ctx context.Context) error { return s.run(ctx) }

func (s *RunnerService) String() string { return s.name }
