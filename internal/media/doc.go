// Package media models the video handles the layout planner transforms.
//
// A Handle is an immutable description of a clip: each Trim, Crop or Resize
// returns a new handle carrying the extra operation, so plans can be built
// and inspected without touching any pixels. Clip is backed by a file on disk
// and renders its operations as an ffmpeg filter chain; Solid is a
// single-colour source used for divider strips. Opener probes files with
// ffprobe and holds them open for the lifetime of a render.
package media
