// Package history persists one row per render in SQLite.
//
// Rows are created in the running state when a render starts and finished
// with succeeded, failed or rejected once it ends, carrying the chosen
// resolution, any layout warnings and the error text. The CLI history
// command and the HTTP API read from the same store.
package history
