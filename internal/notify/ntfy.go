// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

// Package notify sends push notifications through an ntfy server.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/occurlog/internal/config"
	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/metrics"
	"github.com/tomtom215/occurlog/internal/models"
)

// breakerName labels the ntfy circuit breaker in metrics.
const breakerName = "ntfy"

// Priorities understood by ntfy. Below PriorityDefault the phone stays silent.
const (
	PriorityDefault = 3
	PriorityHigh    = 4
)

// Message is one ntfy notification. Body is rendered as Markdown.
type Message struct {
	Title    string
	Body     string
	Tags     string
	Priority int
	// Kind labels the message in metrics.
	Kind string
}

// Client posts messages to an ntfy topic URL. A disabled client, or one
// without an endpoint, accepts every message and sends nothing.
type Client struct {
	endpoint string
	auth     string
	enabled  bool
	client   *http.Client
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[struct{}]
}

// NewClient creates an ntfy client. The breaker opens after five consecutive
// failures and probes again after a minute.
func NewClient(cfg config.NotifyConfig) *Client {
	return newClient(cfg, 5, time.Minute)
}

func newClient(cfg config.NotifyConfig, maxFailures uint32, openTimeout time.Duration) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Every(cfg.RateLimit)
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= maxFailures
			if trip {
				logging.Warn().Uint32("failures", counts.ConsecutiveFailures).Msg("Opening ntfy circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), stateValue(to))
		},
	})

	return &Client{
		endpoint: strings.TrimSpace(cfg.Endpoint),
		auth:     cfg.Auth,
		enabled:  cfg.Enabled,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, 1),
		cb:       cb,
	}
}

// Enabled reports whether messages are actually sent.
func (c *Client) Enabled() bool {
	return c.enabled && c.endpoint != ""
}

// Send posts msg. It waits for the rate limiter and fails fast with
// gobreaker.ErrOpenState while the breaker is open.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if !c.Enabled() {
		return nil
	}

	kind := msg.Kind
	if kind == "" {
		kind = "generic"
	}

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.RecordNotification(kind, "canceled")
		return fmt.Errorf("ntfy rate limiter: %w", err)
	}

	_, err := c.cb.Execute(func() (struct{}, error) {
		return struct{}{}, c.post(ctx, msg)
	})
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		metrics.RecordNotification(kind, "sent")
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		metrics.RecordNotification(kind, "rejected")
		return fmt.Errorf("ntfy unavailable: %w", err)
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		metrics.RecordNotification(kind, "failed")
		return err
	}
}

func (c *Client) post(ctx context.Context, msg Message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(msg.Body))
	if err != nil {
		return fmt.Errorf("failed to create ntfy request: %w", err)
	}

	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}
	req.Header.Set("Markdown", "yes")
	if msg.Title != "" {
		req.Header.Set("Title", msg.Title)
	}
	if msg.Tags != "" {
		req.Header.Set("Tags", msg.Tags)
	}
	if msg.Priority > 0 {
		req.Header.Set("Priority", strconv.Itoa(msg.Priority))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send ntfy message: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}
	return nil
}

// State returns the circuit breaker state.
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

// NewOccurrenceMessage announces an occurrence logged by username.
func NewOccurrenceMessage(o models.Occurrence, username string) Message {
	return Message{
		Title: fmt.Sprintf("New occurrence was added by %s", username),
		Body: fmt.Sprintf("time: %s, location: %s, target: %s, context: %s",
			o.Time.Format("2006-01-02 15:04"), o.Location, o.Target, o.Context),
		Tags:     "newoccurrence",
		Priority: PriorityDefault,
		Kind:     "new_occurrence",
	}
}

// NewUserMessage announces a new account.
func NewUserMessage(username, email string, admin bool) Message {
	return Message{
		Title:    fmt.Sprintf("User %s was given access to occurlog", username),
		Body:     fmt.Sprintf("admin: %t, email: %s", admin, email),
		Tags:     "newuser",
		Priority: PriorityHigh,
		Kind:     "new_user",
	}
}

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
