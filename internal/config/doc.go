// Package config loads, normalizes, and validates cdrip configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CDRIP_CONTACT and CDRIP_LIBRARY_DIR. The Config type centralizes every knob
// the CLI and watch mode need: the destination root, the optical device, the
// MusicBrainz client identity, and cover art behaviour.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
