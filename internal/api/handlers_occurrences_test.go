// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/occurlog/internal/models"
)

func occurrenceBody(when, location, target, context string) string {
	return `{"time":"` + when + `","location":"` + location + `","target":"` + target + `","context":"` + context + `"}`
}

func TestOccurrences_CreateAndList(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})
	carol := env.login("carol", userPassword)

	expectError(t, env.do(http.MethodGet, "/api/v1/occurrences", "", nil), http.StatusUnauthorized, ErrCodeUnauthorized)

	rec := env.do(http.MethodPost, "/api/v1/occurrences", occurrenceBody("2025-03-01T14:30", " Ghent ", "Bob", "at the station"), carol)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created models.Occurrence
	decodeData(t, rec, &created)
	if created.Location != "Ghent" || created.CreatedBy == nil || *created.CreatedBy != env.carol.ID {
		t.Errorf("unexpected occurrence %+v", created)
	}

	for _, body := range []string{
		occurrenceBody("2025-03-02T09:00", "Antwerp", "Alice", ""),
		occurrenceBody("2025-03-03T18:15", "Ghent", "Bob", ""),
	} {
		if rec := env.do(http.MethodPost, "/api/v1/occurrences", body, carol); rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	rec = env.do(http.MethodGet, "/api/v1/occurrences?limit=2", "", carol)
	var page []models.Occurrence
	decodeData(t, rec, &page)
	if len(page) != 2 || page[0].Location != "Ghent" || page[1].Location != "Antwerp" {
		t.Errorf("expected newest first, got %+v", page)
	}
	meta := decodeEnvelope(t, rec).Meta
	if meta == nil || meta.Pagination == nil {
		t.Fatal("expected pagination meta")
	}
	want := PaginationMeta{Total: 3, Count: 2, Offset: 0, Limit: 2, HasMore: true}
	if diff := cmp.Diff(want, *meta.Pagination); diff != "" {
		t.Errorf("pagination mismatch (-want +got):\n%s", diff)
	}

	rec = env.do(http.MethodGet, "/api/v1/occurrences/options", "", carol)
	var opts models.OccurrenceOptions
	decodeData(t, rec, &opts)
	wantOpts := models.OccurrenceOptions{
		Locations: []string{"Ghent", "Antwerp"},
		Targets:   []string{"Bob", "Alice"},
	}
	if diff := cmp.Diff(wantOpts, opts); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestOccurrences_CreateErrors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})
	carol := env.login("carol", userPassword)

	if rec := env.do(http.MethodPost, "/api/v1/occurrences", occurrenceBody("2025-03-01T14:30", "Ghent", "Bob", ""), carol); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"duplicate time", occurrenceBody("2025-03-01T14:30", "Bruges", "Bob", ""), http.StatusConflict, ErrCodeConflict},
		{"bad time layout", occurrenceBody("01/03/2025 14:30", "Ghent", "Bob", ""), http.StatusBadRequest, ErrCodeValidationFailed},
		{"blank location", occurrenceBody("2025-03-01T15:30", "   ", "Bob", ""), http.StatusBadRequest, ErrCodeValidationFailed},
		{"long target", occurrenceBody("2025-03-01T15:30", "Ghent", strings.Repeat("x", 81), ""), http.StatusBadRequest, ErrCodeValidationFailed},
		{"unknown field", `{"time":"2025-03-01T15:30","location":"Ghent","target":"Bob","mood":"sad"}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"malformed json", `{"time":`, http.StatusBadRequest, ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, env.do(http.MethodPost, "/api/v1/occurrences", tt.body, carol), tt.status, tt.code)
		})
	}
}

func TestOccurrences_Delete(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})
	carol := env.login("carol", userPassword)
	admin := env.login("admin", adminPassword)

	if rec := env.do(http.MethodPost, "/api/v1/occurrences", occurrenceBody("2025-03-01T14:30", "Ghent", "Bob", ""), carol); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	expectError(t, env.do(http.MethodDelete, "/api/v1/occurrences/2025-03-01T14:30", "", carol), http.StatusForbidden, ErrCodeForbidden)

	if rec := env.do(http.MethodDelete, "/api/v1/occurrences/2025-03-01T14:30", "", admin); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}
	expectError(t, env.do(http.MethodDelete, "/api/v1/occurrences/2025-03-01T14:30", "", admin), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, env.do(http.MethodDelete, "/api/v1/occurrences/yesterday", "", admin), http.StatusBadRequest, ErrCodeValidationFailed)
}

func TestOccurrences_Pagination(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})
	carol := env.login("carol", userPassword)

	tests := []struct {
		query string
		code  string
	}{
		{"limit=0", ErrCodeValidationFailed},
		{"limit=501", ErrCodeValidationFailed},
		{"offset=-1", ErrCodeValidationFailed},
		{"limit=ten", ErrCodeBadRequest},
	}
	for _, tt := range tests {
		expectError(t, env.do(http.MethodGet, "/api/v1/occurrences?"+tt.query, "", carol), http.StatusBadRequest, tt.code)
	}

	rec := env.do(http.MethodGet, "/api/v1/occurrences", "", carol)
	var page []models.Occurrence
	decodeData(t, rec, &page)
	if page == nil || len(page) != 0 {
		t.Errorf("expected an empty list, got %v", page)
	}
}

func TestLocations(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})
	carol := env.login("carol", userPassword)
	admin := env.login("admin", adminPassword)

	for _, body := range []string{
		occurrenceBody("2025-03-01T14:30", "Sint-Niklaas Markt", "Bob", ""),
		occurrenceBody("2025-03-02T14:30", "Antwerp", "Bob", ""),
	} {
		if rec := env.do(http.MethodPost, "/api/v1/occurrences", body, carol); rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d", rec.Code)
		}
	}

	mapping := `{"latitude":51.1656,"longitude":4.1437}`
	expectError(t, env.do(http.MethodPut, "/api/v1/locations/Antwerp", mapping, carol), http.StatusForbidden, ErrCodeForbidden)

	rec := env.do(http.MethodPut, "/api/v1/locations/Sint-Niklaas%20Markt", mapping, admin)
	var mapped models.Location
	decodeData(t, rec, &mapped)
	if mapped.Label != "Sint-Niklaas Markt" || mapped.Latitude == nil || *mapped.Latitude != 51.1656 {
		t.Errorf("unexpected mapped location %+v", mapped)
	}

	rec = env.do(http.MethodGet, "/api/v1/locations", "", carol)
	var locations []models.Location
	decodeData(t, rec, &locations)
	if len(locations) != 2 || locations[0].Label != "Antwerp" || locations[0].Latitude != nil {
		t.Fatalf("expected sorted locations with Antwerp unmapped, got %+v", locations)
	}
	if locations[1].Longitude == nil || *locations[1].Longitude != 4.1437 {
		t.Errorf("expected Sint-Niklaas Markt mapped, got %+v", locations[1])
	}

	expectError(t, env.do(http.MethodPut, "/api/v1/locations/Atlantis", mapping, admin), http.StatusNotFound, ErrCodeNotFound)
	expectError(t, env.do(http.MethodPut, "/api/v1/locations/Antwerp", `{"latitude":95,"longitude":4}`, admin), http.StatusBadRequest, ErrCodeValidationFailed)
	expectError(t, env.do(http.MethodPut, "/api/v1/locations/Antwerp", `{"latitude":51}`, admin), http.StatusBadRequest, ErrCodeValidationFailed)
}

func TestOccurrences_AdminHasUserAccess(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})
	admin := env.login("admin", adminPassword)

	if rec := env.do(http.MethodPost, "/api/v1/occurrences", occurrenceBody("2025-03-01T14:30", "Ghent", "Bob", ""), admin); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	for _, path := range []string{"/api/v1/dashboard", "/api/v1/occurrences", "/api/v1/settings"} {
		if rec := env.do(http.MethodGet, path, "", admin); rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, body %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestLocations_EscapedLabels(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, envOptions{})
	carol := env.login("carol", userPassword)
	admin := env.login("admin", adminPassword)

	tests := []struct {
		label string
		path  string
	}{
		{"100% Club", "100%25%20Club"},
		{"Cafe%41", "Cafe%2541"},
		{"Gent/Zuid", "Gent%2FZuid"},
	}
	for i, tt := range tests {
		when := "2025-03-0" + string(rune('1'+i)) + "T14:30"
		if rec := env.do(http.MethodPost, "/api/v1/occurrences", occurrenceBody(when, tt.label, "Bob", ""), carol); rec.Code != http.StatusCreated {
			t.Fatalf("create %q status = %d, body %s", tt.label, rec.Code, rec.Body.String())
		}
	}

	for _, tt := range tests {
		rec := env.do(http.MethodPut, "/api/v1/locations/"+tt.path, `{"latitude":51.05,"longitude":3.73}`, admin)
		if rec.Code != http.StatusOK {
			t.Errorf("map %q status = %d, body %s", tt.label, rec.Code, rec.Body.String())
			continue
		}
		var mapped models.Location
		decodeData(t, rec, &mapped)
		if mapped.Label != tt.label {
			t.Errorf("mapped label = %q, want %q", mapped.Label, tt.label)
		}
	}

	var locations []models.Location
	decodeData(t, env.do(http.MethodGet, "/api/v1/locations", "", carol), &locations)
	for _, loc := range locations {
		if loc.Latitude == nil {
			t.Errorf("location %q left unmapped", loc.Label)
		}
	}
	if len(locations) != len(tests) {
		t.Errorf("got %d locations, want %d", len(locations), len(tests))
	}
}
