// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

package authz

// Objects guarded by the policy.
const (
	ObjectStats       = "stats"
	ObjectOccurrences = "occurrences"
	ObjectLocations   = "locations"
	ObjectSettings    = "settings"
	ObjectUsers       = "users"
)

// Actions.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// casbinModel is plain RBAC with role inheritance through g.
const casbinModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && (r.act == p.act || p.act == "*")
`

// Casbin subjects are namespaced so a username can never match a role name.
const (
	rolePrefix = "role:"
	userPrefix = "user:"
)

func roleSubject(role string) string     { return rolePrefix + role }
func userSubject(username string) string { return userPrefix + username }

// defaultPolicy grants regular users everything needed to log and browse,
// and admins user management, location mapping and deletes on top.
const defaultPolicy = `
p, role:user, stats, read
p, role:user, occurrences, read
p, role:user, occurrences, write
p, role:user, locations, read
p, role:user, settings, read
p, role:user, settings, write

p, role:admin, occurrences, delete
p, role:admin, locations, write
p, role:admin, users, *

g, role:admin, role:user
`
