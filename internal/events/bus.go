// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/metrics"
)

// metadataCorrelationID carries the publisher's correlation id to handlers.
const metadataCorrelationID = "correlation_id"

// Config holds configuration for the bus router.
type Config struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	// OutputBuffer is the per-subscriber channel buffer of the GoChannel.
	OutputBuffer int64

	// Retry configuration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
}

// DefaultConfig returns production defaults for the bus.
func DefaultConfig() Config {
	return Config{
		CloseTimeout:         10 * time.Second,
		OutputBuffer:         64,
		RetryMaxRetries:      3,
		RetryInitialInterval: 500 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// Bus wraps a GoChannel pub/sub and the router that drives its handlers.
type Bus struct {
	pubsub    *gochannel.GoChannel
	router    *message.Router
	logger    watermill.LoggerAdapter
	running   atomic.Bool
	closeOnce sync.Once
	closeErr  error

	mu       sync.Mutex
	handlers map[string]*message.Handler
}

// NewBus creates a bus with recoverer, retry and poison queue middleware.
func NewBus(cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = logging.NewWatermillLogger()
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.OutputBuffer,
	}, logger)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	poisonQueue, err := middleware.PoisonQueue(pubsub, TopicPoisoned)
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}

	// Outermost first.
	router.AddMiddleware(poisonQueue)
	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}.Middleware)

	b := &Bus{
		pubsub:   pubsub,
		router:   router,
		logger:   logger,
		handlers: make(map[string]*message.Handler),
	}

	b.addHandler("poison-log", TopicPoisoned, func(msg *message.Message) error {
		logging.Warn().
			Str("topic", msg.Metadata.Get(middleware.PoisonedTopicKey)).
			Str("handler", msg.Metadata.Get(middleware.PoisonedHandlerKey)).
			Str("reason", msg.Metadata.Get(middleware.ReasonForPoisonedKey)).
			Str("message_id", msg.UUID).
			Msg("Event dropped after retries")
		return nil
	})

	return b, nil
}

// Publish encodes payload as JSON and publishes it on topic. The correlation
// id of ctx, if any, travels with the message.
func (b *Bus) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	msg := message.NewMessage(uuid.New().String(), data)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(metadataCorrelationID, id)
	}

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// Subscribe registers a handler that receives payloads of type T published on
// topic. A payload that cannot be decoded is logged and acknowledged; an
// error returned by fn is retried and finally sent to the poison queue.
func Subscribe[T any](b *Bus, name, topic string, fn func(ctx context.Context, event T) error) {
	b.addHandler(name, topic, func(msg *message.Message) error {
		var event T
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			metrics.RecordEventHandled(topic, name, err)
			logging.Warn().Err(err).
				Str("topic", topic).
				Str("handler", name).
				Str("message_id", msg.UUID).
				Msg("Discarding undecodable event")
			return nil
		}

		ctx := msg.Context()
		if id := msg.Metadata.Get(metadataCorrelationID); id != "" {
			ctx = logging.ContextWithCorrelationID(ctx, id)
		}

		err := fn(ctx, event)
		metrics.RecordEventHandled(topic, name, err)
		return err
	})
}

func (b *Bus) addHandler(name, topic string, handler message.NoPublishHandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = b.router.AddConsumerHandler(name, topic, b.pubsub, handler)
}

// Handlers returns the number of registered handlers, including the poison
// queue logger.
func (b *Bus) Handlers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

// Run starts the router and blocks until ctx is canceled or Close is called.
func (b *Bus) Run(ctx context.Context) error {
	b.running.Store(true)
	defer b.running.Store(false)
	return b.router.Run(ctx)
}

// Running returns a channel that closes once every handler is subscribed.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// IsRunning reports whether Run is active.
func (b *Bus) IsRunning() bool {
	return b.running.Load()
}

// Close stops the router, waiting up to CloseTimeout for in-flight handlers,
// then closes the pub/sub.
func (b *Bus) Close() error {
	b.closeOnce.Do(func() {
		if err := b.router.Close(); err != nil {
			b.closeErr = fmt.Errorf("close router: %w", err)
		}
		if err := b.pubsub.Close(); err != nil && b.closeErr == nil {
			b.closeErr = fmt.Errorf("close pubsub: %w", err)
		}
	})
	return b.closeErr
}
