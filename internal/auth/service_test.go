// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/occurlog/internal/config"
	"github.com/tomtom215/occurlog/internal/database"
	"github.com/tomtom215/occurlog/internal/events"
	"github.com/tomtom215/occurlog/internal/models"
)

const (
	userPassword  = "tulips4ever9"
	adminPassword = "Gr33n-Lantern!x"
)

var testDBSemaphore = make(chan struct{}, 2)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type roleRecorder struct {
	mu    sync.Mutex
	roles map[string]string
}

func (r *roleRecorder) AssignRole(username, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roles == nil {
		r.roles = make(map[string]string)
	}
	r.roles[username] = role
	return nil
}

type publishRecorder struct {
	mu     sync.Mutex
	events []events.UserCreated
}

func (p *publishRecorder) Publish(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if topic == events.TopicUserCreated {
		p.events = append(p.events, payload.(events.UserCreated))
	}
	return nil
}

func newTestService(t *testing.T, cfg ServiceConfig) *Service {
	t.Helper()
	s := NewService(setupTestDB(t), cfg)
	s.cost = bcrypt.MinCost
	return s
}

func TestService_CreateAndAuthenticate(t *testing.T) {
	t.Parallel()
	roles := &roleRecorder{}
	pub := &publishRecorder{}
	s := newTestService(t, ServiceConfig{Roles: roles, Publisher: pub})
	ctx := context.Background()

	user, err := s.CreateUser(ctx, NewUser{Username: " carol ", Email: "carol@example.com", Password: userPassword}, "admin", SourceAdmin)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.ID == 0 || user.Username != "carol" || user.PasswordHash == userPassword {
		t.Errorf("unexpected user: %+v", user)
	}
	if roles.roles["carol"] != models.RoleUser {
		t.Errorf("role = %q, want user", roles.roles["carol"])
	}
	if len(pub.events) != 1 || pub.events[0].CreatedBy != "admin" || pub.events[0].Email != "carol@example.com" {
		t.Errorf("unexpected events: %+v", pub.events)
	}

	got, err := s.AuthenticateUser(ctx, "carol", userPassword, "10.0.0.1")
	if err != nil {
		t.Fatalf("AuthenticateUser() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated user id = %d, want %d", got.ID, user.ID)
	}

	if _, err := s.AuthenticateUser(ctx, "dave", userPassword, ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user error = %v, want ErrUserNotFound", err)
	}
	if _, err := s.AuthenticateUser(ctx, "carol", "wrong", ""); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("wrong password error = %v, want ErrWrongPassword", err)
	}
}

func TestService_CreateUserRejects(t *testing.T) {
	t.Parallel()
	s := newTestService(t, ServiceConfig{})
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, NewUser{Username: "carol", Email: "carol@example.com", Password: userPassword}, "", SourceCLI); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	tests := []struct {
		name string
		user NewUser
		want error
	}{
		{"duplicate username", NewUser{Username: "carol", Email: "other@example.com", Password: userPassword}, ErrUserExists},
		{"duplicate email", NewUser{Username: "other", Email: "carol@example.com", Password: userPassword}, ErrUserExists},
		{"short password", NewUser{Username: "erin", Email: "erin@example.com", Password: "ab1"}, ErrWeakPassword},
		{"admin policy", NewUser{Username: "frank", Email: "frank@example.com", Password: userPassword, Admin: true}, ErrWeakPassword},
		{"blank username", NewUser{Username: "  ", Email: "x@example.com", Password: userPassword}, ErrInvalidUser},
	}
	for _, tt := range tests {
		if _, err := s.CreateUser(ctx, tt.user, "", SourceCLI); !errors.Is(err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestService_Lockout(t *testing.T) {
	t.Parallel()
	lockout := NewLockoutManager(nil, &LockoutConfig{
		MaxAttempts:     2,
		LockoutDuration: time.Minute,
		Enabled:         true,
	})
	s := newTestService(t, ServiceConfig{Lockout: lockout})
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, NewUser{Username: "carol", Email: "carol@example.com", Password: userPassword}, "", SourceCLI); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := s.AuthenticateUser(ctx, "carol", "wrong", ""); !errors.Is(err, ErrWrongPassword) {
			t.Fatalf("attempt %d: error = %v", i, err)
		}
	}

	_, err := s.AuthenticateUser(ctx, "carol", userPassword, "")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("error = %v, want ErrAccountLocked", err)
	}
	var locked *LockedError
	if !errors.As(err, &locked) || locked.Remaining <= 0 {
		t.Errorf("expected LockedError with remaining time, got %v", err)
	}
}

func TestService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	closed := newTestService(t, ServiceConfig{})
	if _, err := closed.Register(ctx, "carol", "carol@example.com", userPassword); !errors.Is(err, ErrRegistrationDisabled) {
		t.Errorf("error = %v, want ErrRegistrationDisabled", err)
	}

	open := newTestService(t, ServiceConfig{AllowRegistration: true})
	user, err := open.Register(ctx, "carol", "carol@example.com", userPassword)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Admin {
		t.Error("registered users must not be admins")
	}
}

func TestService_ChangePassword(t *testing.T) {
	t.Parallel()
	s := newTestService(t, ServiceConfig{})
	ctx := context.Background()

	user, err := s.CreateUser(ctx, NewUser{Username: "carol", Email: "carol@example.com", Password: userPassword}, "", SourceCLI)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if err := s.ChangePassword(ctx, user.ID, "wrong", "daffodil77x"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("error = %v, want ErrWrongPassword", err)
	}
	if err := s.ChangePassword(ctx, user.ID, userPassword, "short1"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("error = %v, want ErrWeakPassword", err)
	}
	if err := s.ChangePassword(ctx, 999, userPassword, "daffodil77x"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
	if err := s.ChangePassword(ctx, user.ID, userPassword, "daffodil77x"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if _, err := s.AuthenticateUser(ctx, "carol", "daffodil77x", ""); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}

func TestService_EnsureAdminAndSyncRoles(t *testing.T) {
	t.Parallel()
	roles := &roleRecorder{}
	s := newTestService(t, ServiceConfig{Roles: roles})
	ctx := context.Background()

	created, err := s.EnsureAdmin(ctx, "root", "", adminPassword)
	if err != nil || !created {
		t.Fatalf("EnsureAdmin() = %v, %v", created, err)
	}
	created, err = s.EnsureAdmin(ctx, "root2", "", adminPassword)
	if err != nil || created {
		t.Errorf("second EnsureAdmin() = %v, %v; want false, nil", created, err)
	}
	if created, _ := s.EnsureAdmin(ctx, "", "", ""); created {
		t.Error("EnsureAdmin without credentials must do nothing")
	}

	if _, err := s.CreateUser(ctx, NewUser{Username: "carol", Email: "carol@example.com", Password: userPassword}, "root", SourceAdmin); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	roles.roles = nil
	n, err := s.SyncRoles(ctx)
	if err != nil || n != 2 {
		t.Fatalf("SyncRoles() = %d, %v", n, err)
	}
	if roles.roles["root"] != models.RoleAdmin || roles.roles["carol"] != models.RoleUser {
		t.Errorf("unexpected roles: %v", roles.roles)
	}

	admin, err := s.GetUser(ctx, 1)
	if err != nil || admin.Email != "root@localhost" {
		t.Errorf("GetUser(1) = %+v, %v", admin, err)
	}
}
