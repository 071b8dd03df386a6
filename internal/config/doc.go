// Package config provides environment-based configuration.
//
// Settings load from environment variables with sensible defaults. Exactly
// one store backend (embedded database file or redis) must be selected.
package config
