// Package render orchestrates one composition run.
//
// A run locks the output path, opens every source and the audio track
// exactly once, plans the layout, builds caption pages, encodes through the
// compositor, optionally archives the result, and records the outcome in
// the render history. Sources are closed on every exit path.
package render
