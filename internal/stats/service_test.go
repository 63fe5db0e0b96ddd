// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package stats

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/occurlog/internal/events"
	"github.com/tomtom215/occurlog/internal/models"
)

type fakeStore struct {
	mu       sync.Mutex
	builds   atomic.Int32
	lastFrom time.Time
	lastTo   time.Time
	days     []models.DayCount
	months   []models.MonthCount
	places   []models.LocationCount
	dayList  []time.Time
	total    int
	err      error
}

func (f *fakeStore) CountPerDay(_ context.Context, from, to time.Time) ([]models.DayCount, error) {
	f.builds.Add(1)
	f.mu.Lock()
	f.lastFrom, f.lastTo = from, to
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.days, nil
}

func (f *fakeStore) CountPerMonth(context.Context, time.Time, time.Time) ([]models.MonthCount, error) {
	return f.months, nil
}

func (f *fakeStore) CountPerLocation(context.Context) ([]models.LocationCount, error) {
	return f.places, nil
}

func (f *fakeStore) ListOccurrenceDays(context.Context) ([]time.Time, error) {
	return f.dayList, nil
}

func (f *fakeStore) CountOccurrences(context.Context) (int, error) {
	return f.total, nil
}

func newTestService(t *testing.T, store Store, now time.Time) *Service {
	t.Helper()
	s := NewService(store, Config{CacheTTL: time.Minute, Location: time.UTC})
	s.now = func() time.Time { return now }
	t.Cleanup(s.Close)
	return s
}

func TestService_Dashboard(t *testing.T) {
	t.Parallel()

	lat, lon := 51.05, 3.73
	store := &fakeStore{
		days:    []models.DayCount{{Day: date(2025, 3, 10), Count: 2}},
		months:  []models.MonthCount{{Month: date(2025, 3, 1), Count: 2}},
		places:  []models.LocationCount{{Label: "Ghent", Latitude: &lat, Longitude: &lon, Count: 2}},
		dayList: []time.Time{date(2025, 3, 9), date(2025, 3, 10)},
		total:   3,
	}
	s := newTestService(t, store, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	d, err := s.Dashboard(context.Background(), models.UserSettings{})
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}

	if len(d.Weekly) != 7 || d.Weekly[6].Value != 2 {
		t.Errorf("unexpected weekly chart: %v", d.Weekly)
	}
	if len(d.Yearly) != 12 || d.Yearly[11].Value != 2 {
		t.Errorf("unexpected yearly chart: %v", d.Yearly)
	}
	if d.Streaks.Current != 2 {
		t.Errorf("Current streak = %d, want 2", d.Streaks.Current)
	}
	if len(d.HeatMap.Points) != 1 || d.HeatMap.Zoom != DefaultZoom {
		t.Errorf("unexpected heat-map: %+v", d.HeatMap)
	}
	if d.Total != 3 {
		t.Errorf("Total = %d, want 3", d.Total)
	}

	from, to := YearRange(date(2025, 3, 10))
	if !store.lastFrom.Equal(from) || !store.lastTo.Equal(to) {
		t.Errorf("queried %v..%v, want %v..%v", store.lastFrom, store.lastTo, from, to)
	}
}

func TestService_CachesUntilInvalidated(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	s := newTestService(t, store, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Dashboard(ctx, models.UserSettings{}); err != nil {
			t.Fatalf("Dashboard failed: %v", err)
		}
	}
	if got := store.builds.Load(); got != 1 {
		t.Errorf("store queried %d times, want 1", got)
	}

	// A different map view is a different dashboard.
	if _, err := s.HeatMap(ctx, models.UserSettings{MapLatitude: 50.85, MapLongitude: 4.35, MapZoom: 8}); err != nil {
		t.Fatalf("HeatMap failed: %v", err)
	}
	if got := store.builds.Load(); got != 2 {
		t.Errorf("store queried %d times, want 2", got)
	}

	s.Invalidate()
	if _, err := s.Weekly(ctx, models.UserSettings{}); err != nil {
		t.Fatalf("Weekly failed: %v", err)
	}
	if got := store.builds.Load(); got != 3 {
		t.Errorf("store queried %d times after Invalidate, want 3", got)
	}
}

func TestService_UserTimezone(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	// 23:30 UTC on March 10 is already March 11 in Tokyo.
	s := newTestService(t, store, time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC))

	settings := models.UserSettings{Timezone: "Asia/Tokyo"}
	if settings.Location(nil) == nil {
		t.Skip("tzdata not available")
	}

	weekly, err := s.Weekly(context.Background(), settings)
	if err != nil {
		t.Fatalf("Weekly failed: %v", err)
	}
	if weekly[6].Label != "Tuesday" {
		t.Errorf("expected today to be Tuesday March 11, got %s", weekly[6].Label)
	}

	utc, err := s.Weekly(context.Background(), models.UserSettings{})
	if err != nil {
		t.Fatalf("Weekly failed: %v", err)
	}
	if utc[6].Label != "Monday" {
		t.Errorf("expected today to be Monday March 10 in UTC, got %s", utc[6].Label)
	}
}

func TestService_StoreError(t *testing.T) {
	t.Parallel()

	store := &fakeStore{err: errors.New("database is locked")}
	s := newTestService(t, store, time.Now())

	if _, err := s.Dashboard(context.Background(), models.UserSettings{}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := s.StreakSummary(context.Background(), models.UserSettings{}); err == nil {
		t.Fatal("expected error to not be cached")
	}
	if got := store.builds.Load(); got != 2 {
		t.Errorf("store queried %d times, want 2", got)
	}
}

func TestService_SubscribeInvalidates(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	s := newTestService(t, store, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	cfg := events.DefaultConfig()
	cfg.CloseTimeout = time.Second
	bus, err := events.NewBus(cfg, nil)
	if err != nil {
		t.Fatalf("NewBus failed: %v", err)
	}
	s.Subscribe(bus)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bus.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		_ = bus.Close()
		<-done
	})
	<-bus.Running()

	if _, err := s.Dashboard(context.Background(), models.UserSettings{}); err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if err := bus.Publish(context.Background(), events.TopicLocationMapped, events.LocationMapped{Label: "Ghent"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for s.cache.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("cache was not invalidated")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
