// Package config loads, normalizes, and validates Overture configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours OVERTURE_* environment overrides.
// The Config type centralizes every knob the CLI and the resolution engine
// need, from cache TTLs to per-source search settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
