// Package notifications pushes render outcomes to an ntfy topic.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers publish unconditionally. Delivery is best effort: errors are
// returned for the caller to log and never fail a render.
package notifications
