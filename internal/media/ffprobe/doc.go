// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//
// Inspect executes ffprobe and returns a parsed Result. Helpers on Result
// resolve the primary video stream, display dimensions after rotation
// metadata, and the duration used for layout planning.
package ffprobe
