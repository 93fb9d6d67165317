// Package logs reads the stackreel log file for the CLI.
//
// Tail returns the last N lines, or the lines appended after an offset, and
// can poll for new lines in follow mode. A Filter narrows output to one
// render; it understands both the console and JSON log formats.
package logs
