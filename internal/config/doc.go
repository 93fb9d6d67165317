// Package config loads, normalizes, and validates stackreel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads `.env` files, and honours environment
// fallbacks such as STACKREEL_FFMPEG. The Config type centralizes every knob the
// CLI, the render runner, and the HTTP API need: layout ratio and ladder,
// caption budget and punctuation, encoder settings, and output locations.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
