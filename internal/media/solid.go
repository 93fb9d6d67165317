package media

import "fmt"

// Solid is a uniformly coloured handle. Cropping and resizing only change
// its size.
type Solid struct {
	name     string
	color    RGB
	width    int
	height   int
	duration float64
}

// NewSolid builds a colour strip of the given size and duration.
func NewSolid(name string, color RGB, width, height int, duration float64) *Solid {
	return &Solid{name: name, color: color, width: width, height: height, duration: duration}
}

func (s *Solid) Name() string      { return s.name }
func (s *Solid) Color() RGB        { return s.color }
func (s *Solid) Width() int        { return s.width }
func (s *Solid) Height() int       { return s.height }
func (s *Solid) Duration() float64 { return s.duration }

func (s *Solid) Trim(start, end float64) Handle {
	start, end = clampTrim(s.duration, start, end)
	next := *s
	next.duration = end - start
	return &next
}

func (s *Solid) Crop(r Rect) Handle {
	r = clampRect(s.width, s.height, r)
	next := *s
	next.width, next.height = r.Width, r.Height
	return &next
}

func (s *Solid) Resize(width, height int) Handle {
	next := *s
	next.width, next.height = width, height
	return &next
}

// Source renders the ffmpeg lavfi colour source for this strip.
func (s *Solid) Source(fps int) string {
	return fmt.Sprintf("color=c=%s:s=%dx%d:d=%s:r=%d", s.color.Hex(), s.width, s.height, formatSeconds(s.duration), fps)
}
