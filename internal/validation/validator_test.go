// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package validation

import (
	"strings"
	"testing"
	"time"
)

// ===================================================================================================
// Singleton Validator Tests
// ===================================================================================================

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

// ===================================================================================================
// ValidateStruct Tests
// ===================================================================================================

type occurrenceRequest struct {
	Time     string `json:"time" validate:"required,formtime"`
	Location string `json:"location" validate:"required,notblank,max=80"`
	Target   string `json:"target" validate:"required,notblank,max=80"`
	Context  string `json:"context" validate:"max=1000"`
}

type userRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80,alphanum"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Admin    bool   `json:"admin"`
}

type settingsRequest struct {
	Timezone string  `json:"timezone" validate:"omitempty,timezone"`
	Lat      float64 `json:"map_latitude" validate:"latitude"`
	Lon      float64 `json:"map_longitude" validate:"longitude"`
	Zoom     int     `json:"map_zoom" validate:"min=0,max=19"`
	Limit    int     `validate:"min=0,max=1000"`
}

func validOccurrence() occurrenceRequest {
	return occurrenceRequest{
		Time:     "2025-03-01T14:30",
		Location: "Ghent",
		Target:   "Bob",
		Context:  "at the station",
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input interface{}
	}{
		{"occurrence", ptr(validOccurrence())},
		{"occurrence without context", &occurrenceRequest{Time: "2025-12-31T23:59", Location: "x", Target: "y"}},
		{"user", &userRequest{Username: "alice", Email: "alice@example.com"}},
		{"empty settings", &settingsRequest{}},
		{"settings at bounds", &settingsRequest{Timezone: "UTC", Lat: 90, Lon: -180, Zoom: 19, Limit: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateStruct(tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
	}{
		{
			name:      "missing time",
			input:     &occurrenceRequest{Location: "Ghent", Target: "Bob"},
			wantField: "time",
			wantTag:   "required",
		},
		{
			name:      "seconds in time",
			input:     &occurrenceRequest{Time: "2025-03-01T14:30:00", Location: "Ghent", Target: "Bob"},
			wantField: "time",
			wantTag:   "formtime",
		},
		{
			name:      "blank location",
			input:     &occurrenceRequest{Time: "2025-03-01T14:30", Location: "   ", Target: "Bob"},
			wantField: "location",
			wantTag:   "notblank",
		},
		{
			name:      "target too long",
			input:     &occurrenceRequest{Time: "2025-03-01T14:30", Location: "Ghent", Target: strings.Repeat("x", 81)},
			wantField: "target",
			wantTag:   "max",
		},
		{
			name:      "short username",
			input:     &userRequest{Username: "al", Email: "al@example.com"},
			wantField: "username",
			wantTag:   "min",
		},
		{
			name:      "username with spaces",
			input:     &userRequest{Username: "al ice", Email: "al@example.com"},
			wantField: "username",
			wantTag:   "alphanum",
		},
		{
			name:      "invalid email",
			input:     &userRequest{Username: "alice", Email: "not-an-email"},
			wantField: "email",
			wantTag:   "email",
		},
		{
			name:      "unknown timezone",
			input:     &settingsRequest{Timezone: "Mars/Olympus_Mons"},
			wantField: "timezone",
			wantTag:   "timezone",
		},
		{
			name:      "latitude out of range",
			input:     &settingsRequest{Lat: 91},
			wantField: "map_latitude",
			wantTag:   "latitude",
		},
		{
			name:      "zoom too high",
			input:     &settingsRequest{Zoom: 20},
			wantField: "map_zoom",
			wantTag:   "max",
		},
		{
			name:      "field without json tag keeps its name",
			input:     &settingsRequest{Limit: -1},
			wantField: "Limit",
			wantTag:   "min",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}

			found := false
			for _, e := range err.Fields {
				if e.Field == tt.wantField && e.Tag == tt.wantTag {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Expected error on field %s with tag %s, got: %+v", tt.wantField, tt.wantTag, err.Fields)
			}
		})
	}
}

// ===================================================================================================
// ToAPIError Tests
// ===================================================================================================

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	req := validOccurrence()
	req.Location = ""

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != CodeValidationFailed {
		t.Errorf("Expected code %s, got %s", CodeValidationFailed, apiErr.Code)
	}
	if apiErr.Message != "location is required" {
		t.Errorf("Unexpected message: %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "location" {
		t.Errorf("Expected field detail, got %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&userRequest{Username: "", Email: "nope"})
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != CodeValidationFailed {
		t.Errorf("Expected code %s, got %s", CodeValidationFailed, apiErr.Code)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Expected two field entries, got %v", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, "username: username is required") {
		t.Errorf("Expected message to list username, got %q", apiErr.Message)
	}
}

func TestToAPIError_Empty(t *testing.T) {
	t.Parallel()

	apiErr := (&RequestValidationError{}).ToAPIError()
	if apiErr.Code != CodeValidationFailed || apiErr.Message != "Validation failed" {
		t.Errorf("Unexpected error: %+v", apiErr)
	}
}

// ===================================================================================================
// Error Message Translation Tests
// ===================================================================================================

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"formtime", &occurrenceRequest{Time: "yesterday", Location: "a", Target: "b"}, "time must be a time in the form 2006-01-02T15:04"},
		{"notblank", &occurrenceRequest{Time: "2025-03-01T14:30", Location: "a", Target: "\t"}, "target must not be blank"},
		{"string max", &occurrenceRequest{Time: "2025-03-01T14:30", Location: strings.Repeat("a", 81), Target: "b"}, "location must be at most 80 characters"},
		{"number max", &settingsRequest{Zoom: 25}, "map_zoom must be at most 19"},
		{"timezone", &settingsRequest{Timezone: "Nowhere/Special"}, "timezone must be a valid IANA timezone"},
		{"longitude", &settingsRequest{Lon: 200}, "map_longitude must be a valid longitude (-180 to 180)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestFormTimeLayout(t *testing.T) {
	t.Parallel()

	got, err := time.Parse(FormTimeLayout, "2025-03-01T14:30")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.Hour() != 14 || got.Minute() != 30 {
		t.Errorf("unexpected time %v", got)
	}
}

func ptr[T any](v T) *T {
	return &v
}
