// Package compose turns a layout plan and caption pages into an ffmpeg
// invocation and runs it.
//
// BuildArgs is pure: it maps every planned element to a filter chain, stacks
// them, fits the stack to the planned resolution, overlays one drawtext per
// caption page and maps the audio track. FFmpeg executes the arguments into
// a temporary file next to the output and renames it into place on success.
package compose
