// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestChartPoint_EncodesAsPair(t *testing.T) {
	t.Parallel()

	points := []ChartPoint{{Label: "Monday", Value: 3}, {Label: "Tuesday", Value: 0}}
	data, err := json.Marshal(points)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if got, want := string(data), `[["Monday",3],["Tuesday",0]]`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	var decoded []ChartPoint
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(decoded) != 2 || decoded[0] != points[0] {
		t.Errorf("got %+v, want %+v", decoded, points)
	}
}

func TestChartPoint_RejectsWrongArity(t *testing.T) {
	t.Parallel()

	var p ChartPoint
	if err := json.Unmarshal([]byte(`["Monday"]`), &p); err == nil {
		t.Error("expected error for single element array")
	}
}

func TestLocation_Mapped(t *testing.T) {
	t.Parallel()

	lat, lon := 51.05, 3.73
	tests := []struct {
		name string
		loc  Location
		want bool
	}{
		{"unmapped", Location{Label: "Ghent"}, false},
		{"latitude only", Location{Label: "Ghent", Latitude: &lat}, false},
		{"mapped", Location{Label: "Ghent", Latitude: &lat, Longitude: &lon}, true},
	}
	for _, tt := range tests {
		if got := tt.loc.Mapped(); got != tt.want {
			t.Errorf("%s: Mapped() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestUser_Role(t *testing.T) {
	t.Parallel()

	if got := (&User{Admin: true}).Role(); got != RoleAdmin {
		t.Errorf("expected %q, got %q", RoleAdmin, got)
	}
	if got := (&User{}).Role(); got != RoleUser {
		t.Errorf("expected %q, got %q", RoleUser, got)
	}

	data, err := json.Marshal(User{Username: "alice", PasswordHash: "secret-hash"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, ok := m["password_hash"]; ok {
		t.Error("password hash must not be serialized")
	}
}

func TestUserSettings_WithDefaults(t *testing.T) {
	t.Parallel()

	s := UserSettings{UserID: 1}.WithDefaults("Europe/Brussels", 51.05, 3.73, 6)
	if s.Timezone != "Europe/Brussels" || s.MapZoom != 6 || s.MapLatitude != 51.05 {
		t.Errorf("defaults not applied: %+v", s)
	}

	custom := UserSettings{Timezone: "UTC", MapLatitude: 40, MapLongitude: -3, MapZoom: 9}.
		WithDefaults("Europe/Brussels", 51.05, 3.73, 6)
	if custom.Timezone != "UTC" || custom.MapZoom != 9 || custom.MapLatitude != 40 {
		t.Errorf("custom settings overwritten: %+v", custom)
	}
}

func TestUserSettings_Location(t *testing.T) {
	t.Parallel()

	if got := (UserSettings{}).Location(time.UTC); got != time.UTC {
		t.Errorf("expected fallback for empty timezone, got %v", got)
	}
	if got := (UserSettings{Timezone: "Not/AZone"}).Location(time.UTC); got != time.UTC {
		t.Errorf("expected fallback for unknown timezone, got %v", got)
	}
	if got := (UserSettings{Timezone: "Europe/Brussels"}).Location(time.UTC); got.String() != "Europe/Brussels" {
		t.Errorf("expected Europe/Brussels, got %v", got)
	}
}

func TestCheckLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		wantErr bool
	}{
		{"Ghent", false},
		{strings.Repeat("é", MaxLabelLength), false},
		{strings.Repeat("x", MaxLabelLength+1), true},
		{"", true},
	}
	for _, tt := range tests {
		if err := CheckLabel("location", tt.value); (err != nil) != tt.wantErr {
			t.Errorf("CheckLabel(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}
