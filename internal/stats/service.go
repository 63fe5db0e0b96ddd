// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/occurlog/internal/cache"
	"github.com/tomtom215/occurlog/internal/events"
	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/metrics"
	"github.com/tomtom215/occurlog/internal/models"
)

// Store is the subset of the database the dashboard reads from.
type Store interface {
	CountPerDay(ctx context.Context, from, to time.Time) ([]models.DayCount, error)
	CountPerMonth(ctx context.Context, from, to time.Time) ([]models.MonthCount, error)
	CountPerLocation(ctx context.Context) ([]models.LocationCount, error)
	ListOccurrenceDays(ctx context.Context) ([]time.Time, error)
	CountOccurrences(ctx context.Context) (int, error)
}

// Config holds the server-wide dashboard defaults.
type Config struct {
	CacheTTL     time.Duration
	Location     *time.Location
	MapLatitude  float64
	MapLongitude float64
	MapZoom      int
}

// Service builds dashboards and caches them until the data changes.
type Service struct {
	store Store
	cfg   Config
	cache *cache.Cache[*models.Dashboard]
	now   func() time.Time
}

// NewService creates a dashboard service. Call Close to stop the cache's
// cleanup goroutine.
func NewService(store Store, cfg Config) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MapZoom <= 0 {
		cfg.MapLatitude, cfg.MapLongitude, cfg.MapZoom = DefaultLatitude, DefaultLongitude, DefaultZoom
	}
	return &Service{
		store: store,
		cfg:   cfg,
		cache: cache.New[*models.Dashboard](cfg.CacheTTL, cfg.CacheTTL),
		now:   time.Now,
	}
}

// view is what a dashboard depends on besides the data.
type view struct {
	Day      string  `json:"day"`
	Timezone string  `json:"tz"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Zoom     int     `json:"zoom"`
}

func (s *Service) resolve(settings models.UserSettings) (time.Time, view) {
	loc := settings.Location(s.cfg.Location)
	today := s.now().In(loc)

	v := view{
		Day:      today.Format(DayLabelLayout),
		Timezone: loc.String(),
		Lat:      s.cfg.MapLatitude,
		Lon:      s.cfg.MapLongitude,
		Zoom:     s.cfg.MapZoom,
	}
	if settings.MapZoom > 0 {
		v.Lat, v.Lon, v.Zoom = settings.MapLatitude, settings.MapLongitude, settings.MapZoom
	}
	return today, v
}

// Dashboard returns every chart for the given user settings. "Today" is the
// current date in the settings timezone, falling back to the server's.
func (s *Service) Dashboard(ctx context.Context, settings models.UserSettings) (*models.Dashboard, error) {
	today, v := s.resolve(settings)
	key := cache.GenerateKey("dashboard", v)

	if cached, ok := s.cache.Get(key); ok {
		metrics.RecordStatsCache(true)
		return cached, nil
	}
	metrics.RecordStatsCache(false)

	dashboard, err := s.build(ctx, today, v)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, dashboard)
	metrics.StatsCacheSize.Set(float64(s.cache.Len()))
	return dashboard, nil
}

func (s *Service) build(ctx context.Context, today time.Time, v view) (*models.Dashboard, error) {
	from, to := YearRange(today)

	days, err := s.store.CountPerDay(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily counts: %w", err)
	}
	months, err := s.store.CountPerMonth(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly counts: %w", err)
	}
	locations, err := s.store.CountPerLocation(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load location counts: %w", err)
	}
	occurrenceDays, err := s.store.ListOccurrenceDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load occurrence days: %w", err)
	}
	total, err := s.store.CountOccurrences(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count occurrences: %w", err)
	}

	return &models.Dashboard{
		Weekly:      WeeklyBar(days, today),
		Monthly:     MonthlyLine(days, today),
		Yearly:      YearlyLine(months, today),
		Streaks:     Streaks(occurrenceDays, today),
		HeatMap:     HeatMap(locations, [2]float64{v.Lat, v.Lon}, v.Zoom),
		Total:       total,
		GeneratedAt: s.now().UTC(),
	}, nil
}

// Weekly returns the weekly bar chart.
func (s *Service) Weekly(ctx context.Context, settings models.UserSettings) ([]models.ChartPoint, error) {
	d, err := s.Dashboard(ctx, settings)
	if err != nil {
		return nil, err
	}
	return d.Weekly, nil
}

// Monthly returns the monthly line chart.
func (s *Service) Monthly(ctx context.Context, settings models.UserSettings) ([]models.ChartPoint, error) {
	d, err := s.Dashboard(ctx, settings)
	if err != nil {
		return nil, err
	}
	return d.Monthly, nil
}

// Yearly returns the yearly line chart.
func (s *Service) Yearly(ctx context.Context, settings models.UserSettings) ([]models.ChartPoint, error) {
	d, err := s.Dashboard(ctx, settings)
	if err != nil {
		return nil, err
	}
	return d.Yearly, nil
}

// StreakSummary returns the streak statistics.
func (s *Service) StreakSummary(ctx context.Context, settings models.UserSettings) (models.Streaks, error) {
	d, err := s.Dashboard(ctx, settings)
	if err != nil {
		return models.Streaks{}, err
	}
	return d.Streaks, nil
}

// HeatMap returns the location heat-map.
func (s *Service) HeatMap(ctx context.Context, settings models.UserSettings) (models.HeatMap, error) {
	d, err := s.Dashboard(ctx, settings)
	if err != nil {
		return models.HeatMap{}, err
	}
	return d.HeatMap, nil
}

// Invalidate drops every cached dashboard.
func (s *Service) Invalidate() {
	s.cache.Clear()
	metrics.StatsCacheSize.Set(0)
}

// Subscribe invalidates the cache whenever occurrences or locations change.
func (s *Service) Subscribe(bus *events.Bus) {
	events.Subscribe(bus, "stats-occurrence-created", events.TopicOccurrenceCreated,
		func(ctx context.Context, _ events.OccurrenceCreated) error {
			s.Invalidate()
			logging.Ctx(ctx).Debug().Msg("Dashboard cache invalidated by new occurrence")
			return nil
		})
	events.Subscribe(bus, "stats-location-mapped", events.TopicLocationMapped,
		func(ctx context.Context, e events.LocationMapped) error {
			s.Invalidate()
			logging.Ctx(ctx).Debug().Str("location", e.Label).Msg("Dashboard cache invalidated by mapped location")
			return nil
		})
}

// Close stops the cache.
func (s *Service) Close() {
	s.cache.Stop()
}
