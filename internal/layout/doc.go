// Package layout plans how several source clips are cropped, resized and
// stacked into one output frame.
//
// Sources are interleaved with one-unit divider strips and each element gets
// a share of the stacking axis proportional to its weight. The output
// resolution is quantised to a ladder of standard sizes and lowered when the
// narrowest source cannot fill the cross axis. The planner is pure: it only
// reads handle geometry and returns transformed handles.
package layout
