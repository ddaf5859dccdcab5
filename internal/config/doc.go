// Package config loads and validates the service configuration from YAML.
// Each section owns its own Validate method; Load fails fast on the first
// invalid value so the service never starts half-configured.
package config
