// Package infra groups the adapters that connect the engine to the outside:
// the MQTT client, telemetry feed and traffic relay, metrics exporters,
// Sentry, and the Redis and PostgreSQL notification sinks. Adapters import
// core packages, never the other way round.
package infra
