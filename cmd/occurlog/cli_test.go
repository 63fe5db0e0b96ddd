// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/occurlog/internal/models"
)

const seedYAML = `locations:
  - label: Ghent
    latitude: 51.05
    longitude: 3.73
occurrences:
  - time: 2025-03-01T14:30:00Z
    location: Ghent
    target: Bob
    context: at the station
  - time: 2025-03-02T09:00:00Z
    location: Antwerp
    target: Alice
    context: ""
`

// run executes the root command with args and returns its standard output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), err
}

func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DUCKDB_PATH", filepath.Join(dir, "occurlog.duckdb"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("CONFIG_PATH", "")
	return dir
}

func TestCLI_Users(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "tulips4ever9\n", "user", "add", "carol", "carol@example.com")
	if err != nil {
		t.Fatalf("user add: %v", err)
	}
	if !strings.Contains(out, `created user "carol"`) {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := run(t, "", "user", "add", "--admin", "--password", "Gr33n-Lantern!x", "root", "root@example.com"); err != nil {
		t.Fatalf("user add --admin: %v", err)
	}

	tests := []struct {
		name string
		args []string
		in   string
	}{
		{"duplicate username", []string{"user", "add", "carol", "other@example.com"}, "tulips4ever9\n"},
		{"weak password", []string{"user", "add", "dave", "dave@example.com"}, "password\n"},
		{"no password", []string{"user", "add", "dave", "dave@example.com"}, ""},
		{"missing email", []string{"user", "add", "dave"}, "tulips4ever9\n"},
	}
	for _, tt := range tests {
		if _, err := run(t, tt.in, tt.args...); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}

	out, err = run(t, "", "user", "list", "--json")
	if err != nil {
		t.Fatalf("user list: %v", err)
	}
	var users []models.User
	if err := json.Unmarshal([]byte(out), &users); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(users) != 2 || users[0].Username != "carol" || users[0].Admin || !users[1].Admin {
		t.Errorf("unexpected users %+v", users)
	}
	if strings.Contains(out, "$2a$") {
		t.Error("password hashes must not be listed")
	}

	out, err = run(t, "", "user", "list")
	if err != nil {
		t.Fatalf("user list: %v", err)
	}
	if !strings.HasPrefix(out, "ID") || !strings.Contains(out, "root@example.com") {
		t.Errorf("unexpected table %q", out)
	}
}

func TestCLI_SeedAndLocations(t *testing.T) {
	dir := setupCLI(t)

	seedPath := filepath.Join(dir, "seed.yaml")
	if err := os.WriteFile(seedPath, []byte(seedYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "seed", "import", seedPath)
	if err != nil {
		t.Fatalf("seed import: %v", err)
	}
	if !strings.Contains(out, "1 locations and 2 occurrences (0 duplicates") {
		t.Errorf("unexpected output %q", out)
	}

	out, err = run(t, "", "seed", "import", seedPath)
	if err != nil {
		t.Fatalf("second seed import: %v", err)
	}
	if !strings.Contains(out, "(2 duplicates") {
		t.Errorf("expected duplicates to be skipped, got %q", out)
	}

	if _, err := run(t, "", "location", "map", "Antwerp", "51.2194", "4.4025"); err != nil {
		t.Fatalf("location map: %v", err)
	}
	for _, args := range [][]string{
		{"location", "map", "Atlantis", "1", "1"},
		{"location", "map", "Antwerp", "north", "4.4"},
		{"location", "map", "Antwerp", "91", "4.4"},
	} {
		if _, err := run(t, "", args...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}

	out, err = run(t, "", "seed", "export", "-")
	if err != nil {
		t.Fatalf("seed export: %v", err)
	}
	for _, want := range []string{"label: Antwerp", "latitude: 51.2194", "target: Alice", "context: at the station"} {
		if !strings.Contains(out, want) {
			t.Errorf("export is missing %q:\n%s", want, out)
		}
	}

	exportPath := filepath.Join(dir, "export.yaml")
	if _, err := run(t, "", "seed", "export", exportPath); err != nil {
		t.Fatalf("seed export to file: %v", err)
	}
	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != out {
		t.Error("file export differs from stdout export")
	}
}

func TestCLI_InvalidConfiguration(t *testing.T) {
	setupCLI(t)
	t.Setenv("HTTP_PORT", "70000")

	if _, err := run(t, "", "user", "list"); err == nil || !strings.Contains(err.Error(), "HTTP_PORT") {
		t.Errorf("expected a configuration error, got %v", err)
	}
}
