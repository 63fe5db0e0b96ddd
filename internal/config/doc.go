// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

/*
Package config provides centralized configuration management for Occurlog.

Configuration is layered with Koanf v2: struct defaults first, then an
optional YAML file, then environment variables. The result is validated
before it is returned so the server fails fast on misconfiguration.

# Configuration File

The file is looked up at $CONFIG_PATH, then config.yaml, config.yml and
/etc/occurlog/config.yaml:

	database:
	  path: /data/occurlog.duckdb
	server:
	  port: 3857
	  timezone: Europe/Brussels
	security:
	  auth_mode: session
	  allow_registration: false
	notify:
	  enabled: true
	  ntfy_endpoint: https://ntfy.sh/occurlog
	logging:
	  level: info
	  format: console

# Environment Variables

Only explicitly mapped variables are read (see envVars). The most
common ones:

Database:
  - DUCKDB_PATH / DB_PATH: Database file path (default: /data/occurlog.duckdb)
  - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 512MB)
  - SEED_FILE: YAML seed imported into an empty database

Server:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
  - TIMEZONE: Zone used to decide what "today" is on the dashboard
  - MAP_LATITUDE, MAP_LONGITUDE, MAP_ZOOM: Default heat-map view

Security:
  - AUTH_MODE: session (cookie) or jwt (bearer token)
  - JWT_SECRET / SECRET_KEY: Signing secret, 32+ characters
  - SESSION_STORE: memory or badger
  - ALLOW_REGISTRATION: Enable self registration
  - ADMIN_USERNAME, ADMIN_PASSWORD, ADMIN_EMAIL: Bootstrap admin

Notifications:
  - NTFY_ENABLED, NTFY_ENDPOINT, NTFY_AUTH

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Password Policy

UserPasswordPolicy and AdminPasswordPolicy are used by the auth package
whenever a password is set.
*/
package config
