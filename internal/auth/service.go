// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/occurlog/internal/config"
	"github.com/tomtom215/occurlog/internal/database"
	"github.com/tomtom215/occurlog/internal/events"
	"github.com/tomtom215/occurlog/internal/logging"
	"github.com/tomtom215/occurlog/internal/metrics"
	"github.com/tomtom215/occurlog/internal/models"
)

// Account errors. The first two texts are shown on the login form.
var (
	ErrUserNotFound         = errors.New("user with that username doesn't exist")
	ErrWrongPassword        = errors.New("wrong password")
	ErrRegistrationDisabled = errors.New("registration is disabled")
	ErrUserExists           = errors.New("username or email already taken")
	ErrWeakPassword         = errors.New("password does not meet the policy")
	ErrInvalidUser          = errors.New("username and email are required")
)

// LockedError is returned while an account is locked. It matches
// ErrAccountLocked with errors.Is.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s, try again in %s", ErrAccountLocked, e.Remaining.Round(time.Second))
}

func (e *LockedError) Unwrap() error {
	return ErrAccountLocked
}

// UserStore is the subset of the database the service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// RoleAssigner grants a role to a username. Implemented by the authz
// enforcer.
type RoleAssigner interface {
	AssignRole(username, role string) error
}

// Creation sources, used as the users_created_total label.
const (
	SourceAdmin        = "admin"
	SourceRegistration = "registration"
	SourceBootstrap    = "bootstrap"
	SourceCLI          = "cli"
)

// NewUser holds the fields needed to create an account.
type NewUser struct {
	Username string
	Email    string
	Password string
	Admin    bool
}

// ServiceConfig wires the optional collaborators of Service.
type ServiceConfig struct {
	AllowRegistration bool
	Lockout           *LockoutManager
	Publisher         events.Publisher
	Roles             RoleAssigner
	Audit             *logging.AuditLogger

	// Cost overrides BcryptCost when set.
	Cost int
}

// Service owns accounts: login, creation, registration and password changes.
type Service struct {
	store             UserStore
	lockout           *LockoutManager
	publisher         events.Publisher
	roles             RoleAssigner
	audit             *logging.AuditLogger
	allowRegistration bool
	cost              int
}

// NewService creates the account service. Nil collaborators are replaced by
// no-op defaults; a nil Lockout disables lockout.
func NewService(store UserStore, cfg ServiceConfig) *Service {
	s := &Service{
		store:             store,
		lockout:           cfg.Lockout,
		publisher:         cfg.Publisher,
		roles:             cfg.Roles,
		audit:             cfg.Audit,
		allowRegistration: cfg.AllowRegistration,
		cost:              BcryptCost,
	}
	if cfg.Cost > 0 {
		s.cost = cfg.Cost
	}
	if s.lockout == nil {
		s.lockout = NewLockoutManager(nil, &LockoutConfig{Enabled: false})
	}
	if s.publisher == nil {
		s.publisher = events.Discard
	}
	if s.audit == nil {
		s.audit = logging.NewAuditLogger()
	}
	return s
}

// RegistrationEnabled reports whether self registration is allowed.
func (s *Service) RegistrationEnabled() bool {
	return s.allowRegistration
}

// AuthenticateUser checks username and password. Unknown users and wrong
// passwords both count towards the lockout of username.
func (s *Service) AuthenticateUser(ctx context.Context, username, password, ip string) (*models.User, error) {
	locked, remaining, err := s.lockout.CheckLocked(ctx, username)
	if err != nil {
		logging.CtxErr(ctx, err).Msg("Lockout check failed")
	}
	if locked {
		metrics.RecordLogin("locked")
		s.audit.LoginFailed(username, ip, "locked")
		return nil, &LockedError{Remaining: remaining}
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		s.loginFailed(ctx, username, ip, "unknown_user")
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.loginFailed(ctx, username, ip, "wrong_password")
		return nil, ErrWrongPassword
	}

	if err := s.lockout.RecordSuccessfulLogin(ctx, username); err != nil {
		logging.CtxErr(ctx, err).Msg("Failed to clear lockout")
	}
	metrics.RecordLogin("success")
	return user, nil
}

func (s *Service) loginFailed(ctx context.Context, username, ip, reason string) {
	metrics.RecordLogin(reason)
	s.audit.LoginFailed(username, ip, reason)
	if _, _, err := s.lockout.RecordFailedAttempt(ctx, username, ip); err != nil {
		logging.CtxErr(ctx, err).Msg("Failed to record failed login")
	}
}

// CreateUser validates and stores a new account, grants its role and
// announces it on the bus. createdBy names the acting admin.
func (s *Service) CreateUser(ctx context.Context, nu NewUser, createdBy, source string) (*models.User, error) {
	nu.Username = strings.TrimSpace(nu.Username)
	nu.Email = strings.TrimSpace(nu.Email)
	if nu.Username == "" || nu.Email == "" {
		return nil, ErrInvalidUser
	}
	if err := config.PolicyFor(nu.Admin).ValidateWithError(nu.Password, nu.Username); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWeakPassword, err)
	}

	hash, err := hashPassword(nu.Password, s.cost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: hash,
		Admin:        nu.Admin,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	if s.roles != nil {
		if err := s.roles.AssignRole(user.Username, user.Role()); err != nil {
			return nil, fmt.Errorf("failed to assign role: %w", err)
		}
	}

	metrics.UsersCreated.WithLabelValues(source).Inc()
	s.audit.UserCreated(user.Username, createdBy, user.Admin)

	event := events.UserCreated{
		Username:  user.Username,
		Email:     user.Email,
		Admin:     user.Admin,
		CreatedBy: createdBy,
	}
	if err := s.publisher.Publish(ctx, events.TopicUserCreated, event); err != nil {
		logging.CtxErr(ctx, err).Str("username", user.Username).Msg("Failed to publish user.created")
	}
	return user, nil
}

// Register creates a regular account for a visitor when registration is
// enabled.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if !s.allowRegistration {
		return nil, ErrRegistrationDisabled
	}
	return s.CreateUser(ctx, NewUser{
		Username: username,
		Email:    email,
		Password: password,
	}, "", SourceRegistration)
}

// ChangePassword replaces the password of userID after checking current.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	ok, err := CheckPassword(user.PasswordHash, current)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongPassword
	}
	if err := config.PolicyFor(user.Admin).ValidateWithError(next, user.Username); err != nil {
		return fmt.Errorf("%w: %w", ErrWeakPassword, err)
	}

	hash, err := hashPassword(next, s.cost)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.audit.PasswordChanged(user.Username)
	return nil
}

// EnsureAdmin creates the bootstrap administrator when no account exists
// yet. It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if email == "" {
		email = username + "@localhost"
	}
	if _, err := s.CreateUser(ctx, NewUser{
		Username: username,
		Email:    email,
		Password: password,
		Admin:    true,
	}, "", SourceBootstrap); err != nil {
		return false, fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	logging.Info().Str("username", username).Msg("Created bootstrap administrator")
	return true, nil
}

// SyncRoles grants every stored user its role. Run once at startup because
// the role assignments only live in memory.
func (s *Service) SyncRoles(ctx context.Context) (int, error) {
	if s.roles == nil {
		return 0, nil
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, err
	}
	for i := range users {
		if err := s.roles.AssignRole(users[i].Username, users[i].Role()); err != nil {
			return i, fmt.Errorf("failed to assign role to %s: %w", users[i].Username, err)
		}
	}
	return len(users), nil
}

// GetUser returns the account with id.
func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ListUsers returns every account.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}
