// Package config loads, normalizes, and validates brollcut configuration.
//
// Values come from three layers applied in order: built-in defaults, an
// optional TOML file, and environment variables (usually sourced from .env by
// the CLI). Callers receive a Config with expanded paths and trimmed strings,
// or a validation error naming the offending key.
package config
