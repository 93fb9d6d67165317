// Package project loads the TOML file describing one video: the stacked
// source clips with their weights, zoom and start offsets, the subtitle
// track, the corrected transcript and the audio to mux.
//
// Relative paths resolve against the project file's directory.
package project
