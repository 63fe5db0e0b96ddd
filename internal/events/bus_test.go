// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CloseTimeout = time.Second
	cfg.RetryMaxRetries = 2
	cfg.RetryInitialInterval = time.Millisecond
	cfg.RetryMaxInterval = 5 * time.Millisecond
	return cfg
}

// startBus runs bus until the test ends.
func startBus(t *testing.T, bus *Bus) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bus.Run(ctx) }()

	select {
	case <-bus.Running():
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("bus did not start")
	}

	t.Cleanup(func() {
		cancel()
		if err := bus.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
		<-done
	})
}

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	bus, err := NewBus(testConfig(), logging.NewWatermillLogger())
	if err != nil {
		t.Fatalf("NewBus failed: %v", err)
	}
	return bus
}

func TestBus_PublishSubscribe(t *testing.T) {
	t.Parallel()
	bus := newTestBus(t)

	received := make(chan OccurrenceCreated, 1)
	correlation := make(chan string, 1)
	Subscribe(bus, "test", TopicOccurrenceCreated, func(ctx context.Context, e OccurrenceCreated) error {
		correlation <- logging.CorrelationIDFromContext(ctx)
		received <- e
		return nil
	})
	startBus(t, bus)

	if !bus.IsRunning() {
		t.Error("expected bus to report running")
	}

	ctx := logging.ContextWithCorrelationID(context.Background(), "corr-1")
	event := OccurrenceCreated{
		Occurrence: models.Occurrence{
			Time:     time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC),
			Location: "Ghent",
			Target:   "Bob",
		},
		Actor:           "alice",
		LocationCreated: true,
	}
	if err := bus.Publish(ctx, TopicOccurrenceCreated, event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got.Actor != "alice" || got.Occurrence.Location != "Ghent" || !got.LocationCreated {
			t.Errorf("unexpected event: %+v", got)
		}
		if !got.Occurrence.Time.Equal(event.Occurrence.Time) {
			t.Errorf("time = %v, want %v", got.Occurrence.Time, event.Occurrence.Time)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
	if id := <-correlation; id != "corr-1" {
		t.Errorf("correlation id = %q, want corr-1", id)
	}
}

func TestBus_FanOut(t *testing.T) {
	t.Parallel()
	bus := newTestBus(t)

	var count atomic.Int32
	done := make(chan struct{}, 2)
	for _, name := range []string{"first", "second"} {
		Subscribe(bus, name, TopicLocationMapped, func(_ context.Context, e LocationMapped) error {
			if e.Label == "Ghent" {
				count.Add(1)
			}
			done <- struct{}{}
			return nil
		})
	}
	if bus.Handlers() != 3 {
		t.Errorf("Handlers() = %d, want 3 including the poison logger", bus.Handlers())
	}
	startBus(t, bus)

	if err := bus.Publish(context.Background(), TopicLocationMapped, LocationMapped{Label: "Ghent", Latitude: 51.05, Longitude: 3.73}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("event not delivered to every subscriber")
		}
	}
	if count.Load() != 2 {
		t.Errorf("expected both subscribers to see the event, got %d", count.Load())
	}
}

func TestBus_RetryThenPoison(t *testing.T) {
	t.Parallel()
	bus := newTestBus(t)

	var attempts atomic.Int32
	Subscribe(bus, "failing", TopicUserCreated, func(_ context.Context, _ UserCreated) error {
		attempts.Add(1)
		return errors.New("downstream unavailable")
	})

	poisoned := make(chan struct{}, 1)
	// A second subscriber on the poison topic sees what the logger sees.
	Subscribe(bus, "poison-probe", TopicPoisoned, func(_ context.Context, e UserCreated) error {
		if e.Username == "carol" {
			poisoned <- struct{}{}
		}
		return nil
	})
	startBus(t, bus)

	if err := bus.Publish(context.Background(), TopicUserCreated, UserCreated{Username: "carol"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case <-poisoned:
	case <-time.After(5 * time.Second):
		t.Fatal("failing event never reached the poison queue")
	}
	// One attempt plus MaxRetries retries.
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestBus_UndecodablePayload(t *testing.T) {
	t.Parallel()
	bus := newTestBus(t)

	var calls atomic.Int32
	received := make(chan UserCreated, 2)
	Subscribe(bus, "users", TopicUserCreated, func(_ context.Context, e UserCreated) error {
		calls.Add(1)
		received <- e
		return nil
	})
	startBus(t, bus)

	// A JSON string cannot decode into UserCreated.
	if err := bus.Publish(context.Background(), TopicUserCreated, "not an object"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := bus.Publish(context.Background(), TopicUserCreated, UserCreated{Username: "dave"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case e := <-received:
		if e.Username != "dave" {
			t.Errorf("expected dave, got %+v", e)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("valid event after an undecodable one was not delivered")
	}
	if calls.Load() != 1 {
		t.Errorf("handler called %d times, want 1", calls.Load())
	}
}

func TestBus_CloseIdempotent(t *testing.T) {
	t.Parallel()
	bus := newTestBus(t)
	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	if err := Discard.Publish(context.Background(), TopicUserCreated, UserCreated{}); err != nil {
		t.Errorf("Discard.Publish returned %v", err)
	}
}
