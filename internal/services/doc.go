// Package services defines shared utilities consumed by the export pipeline
// and its external-tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (validation vs external tool vs timeout) with errors.Is.
//
// Use these helpers when wiring new pipeline steps so error handling and
// observability stay uniform.
package services
