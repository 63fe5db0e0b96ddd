// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/occurlog/internal/logging"
)

const defaultGracePeriod = 10 * time.Second

// HTTPServer is satisfied by *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerService serves the API in the api layer. On stop it drains
// in-flight requests for at most the grace period.
type HTTPServerService struct {
	server HTTPServer
	grace  time.Duration
}

// NewHTTPServerService wraps server; a non-positive grace selects 10s.
func NewHTTPServerService(server HTTPServer, grace time.Duration) *HTTPServerService {
	if grace <= 0 {
		grace = defaultGracePeriod
	}
	return &HTTPServerService{server: server, grace: grace}
}

// Serve fails with the listener error, or returns ctx.Err() once the
// server has drained.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	served := make(chan error, 1)
	go func() { served <- h.server.ListenAndServe() }()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Dur("grace", h.grace).Msg("Draining HTTP requests")
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.grace)
	defer cancel()
	err := h.server.Shutdown(drainCtx)
	<-served
	if err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return ctx.Err()
}

func (h *HTTPServerService) String() string { return "http-server" }
