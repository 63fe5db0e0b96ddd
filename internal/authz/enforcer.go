// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package authz

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/occurlog/internal/cache"
	"github.com/tomtom215/occurlog/internal/metrics"
)

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// PolicyPath optionally replaces the built-in policy with a CSV file.
	// Role subjects in the file carry the "role:" prefix.
	PolicyPath string

	// CacheTTL is how long decisions are cached. Zero disables the cache.
	CacheTTL time.Duration
}

// DefaultEnforcerConfig returns default configuration.
func DefaultEnforcerConfig() *EnforcerConfig {
	return &EnforcerConfig{
		CacheTTL: 5 * time.Minute,
	}
}

// Enforcer wraps a SyncedEnforcer with a decision cache.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	cache    *cache.Cache[bool]
}

// NewEnforcer builds the enforcer from the built-in model and policy.
func NewEnforcer(cfg *EnforcerConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = DefaultEnforcerConfig()
	}

	m, err := model.NewModelFromString(casbinModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" {
		if _, statErr := os.Stat(cfg.PolicyPath); statErr != nil {
			return nil, fmt.Errorf("policy file: %w", statErr)
		}
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicy(enforcer, defaultPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	e := &Enforcer{enforcer: enforcer}
	if cfg.CacheTTL > 0 {
		e.cache = cache.New[bool](cfg.CacheTTL, cfg.CacheTTL)
	}
	return e, nil
}

// loadPolicy adds the p and g lines of a policy CSV.
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

func decisionKey(subject, object, action string) string {
	return subject + "|" + object + "|" + action
}

// EnforceUser checks whether username may perform action on object through
// the role assigned to it.
func (e *Enforcer) EnforceUser(username, object, action string) (bool, error) {
	return e.enforce(userSubject(username), object, action)
}

// EnforceRole checks whether role may perform action on object.
func (e *Enforcer) EnforceRole(role, object, action string) (bool, error) {
	return e.enforce(roleSubject(role), object, action)
}

func (e *Enforcer) enforce(subject, object, action string) (bool, error) {
	start := time.Now()
	key := decisionKey(subject, object, action)
	if e.cache != nil {
		if allowed, ok := e.cache.Get(key); ok {
			metrics.RecordAuthzDecision(object, action, allowed, true, time.Since(start))
			return allowed, nil
		}
	}

	allowed, err := e.enforcer.Enforce(subject, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	if e.cache != nil {
		e.cache.Set(key, allowed)
	}
	metrics.RecordAuthzDecision(object, action, allowed, false, time.Since(start))
	return allowed, nil
}

// EnforceWithRole allows the request when either the user or the role
// carried by the credential is granted. Tokens carry their role, so a user
// unknown to the enforcer is still authorized by role.
func (e *Enforcer) EnforceWithRole(username, role, object, action string) (bool, error) {
	if username != "" {
		allowed, err := e.EnforceUser(username, object, action)
		if err != nil || allowed {
			return allowed, err
		}
	}
	if role == "" {
		return false, nil
	}
	return e.EnforceRole(role, object, action)
}

// AssignRole makes username a member of role, replacing any earlier role.
func (e *Enforcer) AssignRole(username, role string) error {
	subject := userSubject(username)
	current, err := e.enforcer.GetRolesForUser(subject)
	if err == nil && len(current) == 1 && current[0] == roleSubject(role) {
		return nil
	}
	if len(current) > 0 {
		if _, err := e.enforcer.DeleteRolesForUser(subject); err != nil {
			return fmt.Errorf("failed to clear roles: %w", err)
		}
	}
	if _, err := e.enforcer.AddRoleForUser(subject, roleSubject(role)); err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}
	e.invalidate()
	return nil
}

// RolesForUser returns the roles username is a direct member of.
func (e *Enforcer) RolesForUser(username string) ([]string, error) {
	subjects, err := e.enforcer.GetRolesForUser(userSubject(username))
	if err != nil {
		return nil, err
	}
	roles := make([]string, 0, len(subjects))
	for _, s := range subjects {
		roles = append(roles, strings.TrimPrefix(s, rolePrefix))
	}
	return roles, nil
}

func (e *Enforcer) invalidate() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Close stops the cache janitor.
func (e *Enforcer) Close() {
	if e.cache != nil {
		e.cache.Stop()
	}
}
