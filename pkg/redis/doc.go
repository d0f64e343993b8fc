// Package redis connects to a Redis server with startup retries and exposes
// a health-check helper for readiness probes. Configuration comes from the
// environment via the Config struct.
package redis
