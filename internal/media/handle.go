package media

import (
	"fmt"
	"math"
	"strconv"
)

// Handle is an opened, transformable video clip.
type Handle interface {
	Name() string
	Width() int
	Height() int
	Duration() float64
	Trim(start, end float64) Handle
	Crop(Rect) Handle
	Resize(width, height int) Handle
}

// Rect is a crop rectangle in source pixels, anchored at its top-left corner.
type Rect struct {
	X, Y          int
	Width, Height int
}

// CenteredRect returns a width x height rectangle centred inside a frame.
func CenteredRect(frameWidth, frameHeight, width, height int) Rect {
	return Rect{
		X:      (frameWidth - width) / 2,
		Y:      (frameHeight - height) / 2,
		Width:  width,
		Height: height,
	}
}

// RGB is an opaque 8-bit colour.
type RGB struct {
	R, G, B uint8
}

// Hex renders the colour as 0xRRGGBB, the form ffmpeg colour options accept.
func (c RGB) Hex() string {
	return fmt.Sprintf("0x%02X%02X%02X", c.R, c.G, c.B)
}

// OpKind names a recorded transformation.
type OpKind int

const (
	OpTrim OpKind = iota
	OpCrop
	OpResize
)

func (k OpKind) String() string {
	switch k {
	case OpTrim:
		return "trim"
	case OpCrop:
		return "crop"
	case OpResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Op is one recorded transformation. Only the fields relevant to Kind are set.
type Op struct {
	Kind   OpKind
	Start  float64
	End    float64
	Rect   Rect
	Width  int
	Height int
}

func formatSeconds(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clampTrim(duration, start, end float64) (float64, float64) {
	if start < 0 {
		start = 0
	}
	if end > duration {
		end = duration
	}
	if end < start {
		end = start
	}
	return start, end
}
