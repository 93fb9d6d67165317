// Package api serves stackreel over HTTP.
//
// Routes are mounted on a chi router. Plans are computed inside the request.
// Renders are queued to a single worker goroutine so at most one encode runs
// at a time; POST /api/renders returns 202 with the session id, which
// GET /api/renders/{id} accepts alongside numeric history ids.
//
// DTOs use camelCase JSON tags. Timestamps are RFC3339 with milliseconds.
package api
