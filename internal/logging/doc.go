// Package logging assembles structured slog loggers and formatting helpers used
// across stackreel.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so render stages automatically tag log
// lines with render IDs, stage names, and correlation IDs. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Warnings that the user must act on (weight typos, resolution downgrades) go
// through WarnWithContext so every one carries an event type, a hint, and the
// impact on the produced video.
package logging
