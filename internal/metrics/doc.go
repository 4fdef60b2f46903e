// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and are
exposed at /metrics by the API router:

	curl http://localhost:8501/metrics

# Available Metrics

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests

Catalog:
  - catalog_query_duration_seconds{operation,table}
  - catalog_query_errors_total{operation,table,error_type}

Recommendation engine:
  - recommend_requests_total{mode,outcome}: outcome is exact, fallback or error
  - recommend_duration_seconds{mode}
  - intent_parser_outcomes_total{strategy}: model or rules
  - shuffle_policy_requests_total{requested,applied}

Activity pipeline:
  - activity_events_total{stage}: published, persisted, dropped, failed

Text-generation circuit breaker:
  - circuit_breaker_state{name}
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_transitions_total{name,from,to}
*/
package metrics
