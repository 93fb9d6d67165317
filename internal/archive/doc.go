// Package archive produces the optional AV1 archival copy of a finished
// render through the drapto library. Drapto progress events are logged
// rather than persisted; only coarse percentage steps reach the log.
package archive
