// Package config loads, normalizes, and validates dubline configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DUBLINE_FFMPEG. The Config type centralizes every knob the export pipeline
// and CLI need: encoder presets, mix levels, subtitle style, preview length,
// and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
