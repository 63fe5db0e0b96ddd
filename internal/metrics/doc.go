// Occurlog - Occurrence Logging and Geographic Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/occurlog

/*
Package metrics provides Prometheus metrics collection and export.

All collectors are registered on the default registry through promauto and
exposed at /metrics in the Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

HTTP:
  - api_requests_total{method,endpoint,status}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Database:
  - duckdb_query_duration_seconds{operation,table}
  - duckdb_query_errors_total{operation,table}

Domain:
  - occurrences_created_total, locations_mapped_total
  - auth_login_attempts_total{result}, users_created_total{source}
  - auth_active_sessions, auth_sessions_expired_total
  - stats_cache_hits_total, stats_cache_misses_total, stats_cache_entries

Messaging:
  - events_published_total{topic}
  - events_handled_total{topic,handler,result}
  - notifications_sent_total{kind,result}
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result}
  - websocket_connections, websocket_messages_sent_total

The endpoint label is the chi route pattern, never the raw path, so that
path parameters such as occurrence times do not explode label cardinality.
*/
package metrics
