// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package authz

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/occurlog/internal/models"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(&EnforcerConfig{CacheTTL: time.Minute})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEnforcer_DefaultPolicy(t *testing.T) {
	t.Parallel()
	e := newTestEnforcer(t)

	tests := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{models.RoleUser, ObjectStats, ActionRead, true},
		{models.RoleUser, ObjectOccurrences, ActionWrite, true},
		{models.RoleUser, ObjectSettings, ActionWrite, true},
		{models.RoleUser, ObjectLocations, ActionRead, true},
		{models.RoleUser, ObjectLocations, ActionWrite, false},
		{models.RoleUser, ObjectOccurrences, ActionDelete, false},
		{models.RoleUser, ObjectUsers, ActionRead, false},
		{models.RoleUser, ObjectUsers, ActionWrite, false},

		// admin inherits user
		{models.RoleAdmin, ObjectStats, ActionRead, true},
		{models.RoleAdmin, ObjectOccurrences, ActionWrite, true},
		{models.RoleAdmin, ObjectLocations, ActionWrite, true},
		{models.RoleAdmin, ObjectOccurrences, ActionDelete, true},
		{models.RoleAdmin, ObjectUsers, ActionRead, true},
		{models.RoleAdmin, ObjectUsers, ActionWrite, true},

		{"guest", ObjectStats, ActionRead, false},
	}

	for _, tt := range tests {
		got, err := e.EnforceRole(tt.role, tt.object, tt.action)
		if err != nil {
			t.Fatalf("EnforceRole() error = %v", err)
		}
		if got != tt.want {
			t.Errorf("EnforceRole(%s, %s, %s) = %v, want %v", tt.role, tt.object, tt.action, got, tt.want)
		}
	}
}

func TestEnforcer_AssignRole(t *testing.T) {
	t.Parallel()
	e := newTestEnforcer(t)

	if allowed, _ := e.EnforceUser("carol", ObjectStats, ActionRead); allowed {
		t.Fatal("unassigned user must not be allowed")
	}

	if err := e.AssignRole("carol", models.RoleUser); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}
	if allowed, _ := e.EnforceUser("carol", ObjectStats, ActionRead); !allowed {
		t.Error("cached denial should have been cleared by AssignRole")
	}
	if allowed, _ := e.EnforceUser("carol", ObjectUsers, ActionWrite); allowed {
		t.Error("user must not manage users")
	}

	// Promotion replaces the role.
	if err := e.AssignRole("carol", models.RoleAdmin); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}
	roles, err := e.RolesForUser("carol")
	if err != nil || len(roles) != 1 || roles[0] != models.RoleAdmin {
		t.Errorf("RolesForUser() = %v, %v", roles, err)
	}
	if allowed, _ := e.EnforceUser("carol", ObjectUsers, ActionWrite); !allowed {
		t.Error("admin should manage users")
	}
}

func TestEnforcer_EnforceWithRole(t *testing.T) {
	t.Parallel()
	e := newTestEnforcer(t)

	// A token holder unknown to the enforcer is authorized by its role claim.
	if allowed, _ := e.EnforceWithRole("dave", models.RoleAdmin, ObjectLocations, ActionWrite); !allowed {
		t.Error("role claim should grant access")
	}
	if allowed, _ := e.EnforceWithRole("dave", "", ObjectStats, ActionRead); allowed {
		t.Error("no user grant and no role must deny")
	}
	if allowed, _ := e.EnforceWithRole("", models.RoleUser, ObjectStats, ActionRead); !allowed {
		t.Error("role alone should be enough")
	}
}

func TestNewEnforcer_PolicyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "policy.csv")
	if err := os.WriteFile(path, []byte("p, role:user, stats, read\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	e, err := NewEnforcer(&EnforcerConfig{PolicyPath: path})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	if allowed, _ := e.EnforceRole(models.RoleUser, ObjectStats, ActionRead); !allowed {
		t.Error("policy file grant missing")
	}
	if allowed, _ := e.EnforceRole(models.RoleUser, ObjectOccurrences, ActionWrite); allowed {
		t.Error("the file replaces the built-in policy")
	}

	if _, err := NewEnforcer(&EnforcerConfig{PolicyPath: filepath.Join(t.TempDir(), "missing.csv")}); err == nil {
		t.Error("expected error for a missing policy file")
	}
}

func TestEnforcer_UsernameMatchingRoleName(t *testing.T) {
	t.Parallel()
	e := newTestEnforcer(t)

	for _, name := range []string{models.RoleAdmin, models.RoleUser} {
		if err := e.AssignRole(name, models.RoleAdmin); err != nil {
			t.Fatalf("AssignRole(%q) error = %v", name, err)
		}
	}
	if err := e.AssignRole("boss", models.RoleAdmin); err != nil {
		t.Fatalf("AssignRole() error = %v", err)
	}

	for _, name := range []string{models.RoleAdmin, models.RoleUser, "boss"} {
		for _, check := range []struct{ object, action string }{
			{ObjectOccurrences, ActionWrite},
			{ObjectStats, ActionRead},
			{ObjectUsers, ActionWrite},
		} {
			allowed, err := e.EnforceWithRole(name, models.RoleAdmin, check.object, check.action)
			if err != nil || !allowed {
				t.Errorf("EnforceWithRole(%s, admin, %s, %s) = %v, %v", name, check.object, check.action, allowed, err)
			}
			if allowed, _ := e.EnforceUser(name, check.object, check.action); !allowed {
				t.Errorf("EnforceUser(%s, %s, %s) denied", name, check.object, check.action)
			}
		}
		roles, err := e.RolesForUser(name)
		if err != nil || len(roles) != 1 || roles[0] != models.RoleAdmin {
			t.Errorf("RolesForUser(%s) = %v, %v", name, roles, err)
		}
	}

	// The role-to-role inheritance line survives.
	if allowed, _ := e.EnforceRole(models.RoleAdmin, ObjectSettings, ActionWrite); !allowed {
		t.Error("admin role lost its user inheritance")
	}
}
