// Package services defines shared utilities consumed by the render stages and
// the external tool adapters.
//
// Key responsibilities:
//   - Context helpers that stamp render identifiers, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses (failed vs rejected).
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
