// Package config loads rota-api settings from ROTA_* environment variables
// and an optional config.yaml, and validates them before any component starts.
package config
