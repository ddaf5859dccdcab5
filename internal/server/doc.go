// Package server provides the HTTP API surface for the clip processor:
// operation endpoints consumed by the dashboard, plus health, config,
// statistics, and Prometheus metrics endpoints.
package server
