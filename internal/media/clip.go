package media

import (
	"fmt"
	"strings"
)

// Clip is a file-backed handle. Transformations are recorded, not applied.
type Clip struct {
	name     string
	path     string
	width    int
	height   int
	duration float64
	ops      []Op
}

// NewClip builds a handle for a clip with known geometry. Path may be empty
// for clips that only exist in plans and tests.
func NewClip(name, path string, width, height int, duration float64) *Clip {
	return &Clip{name: name, path: path, width: width, height: height, duration: duration}
}

func (c *Clip) Name() string      { return c.name }
func (c *Clip) Path() string      { return c.path }
func (c *Clip) Width() int        { return c.width }
func (c *Clip) Height() int       { return c.height }
func (c *Clip) Duration() float64 { return c.duration }

// Ops returns a copy of the recorded transformations in application order.
func (c *Clip) Ops() []Op {
	return append([]Op(nil), c.ops...)
}

func (c *Clip) with(op Op) *Clip {
	next := *c
	next.ops = append(append([]Op(nil), c.ops...), op)
	return &next
}

// Trim keeps [start, end) of the current clip timeline, clamped to its duration.
func (c *Clip) Trim(start, end float64) Handle {
	start, end = clampTrim(c.duration, start, end)
	next := c.with(Op{Kind: OpTrim, Start: start, End: end})
	next.duration = end - start
	return next
}

// Crop keeps the rectangle, clamped to the current frame.
func (c *Clip) Crop(r Rect) Handle {
	r = clampRect(c.width, c.height, r)
	next := c.with(Op{Kind: OpCrop, Rect: r})
	next.width, next.height = r.Width, r.Height
	return next
}

// Resize scales the current frame to width x height.
func (c *Clip) Resize(width, height int) Handle {
	next := c.with(Op{Kind: OpResize, Width: width, Height: height})
	next.width, next.height = width, height
	return next
}

// Filters renders the recorded operations as an ffmpeg filter chain.
func (c *Clip) Filters() []string {
	filters := make([]string, 0, len(c.ops)+1)
	for _, op := range c.ops {
		switch op.Kind {
		case OpTrim:
			filters = append(filters,
				fmt.Sprintf("trim=start=%s:end=%s", formatSeconds(op.Start), formatSeconds(op.End)),
				"setpts=PTS-STARTPTS")
		case OpCrop:
			filters = append(filters, fmt.Sprintf("crop=%d:%d:%d:%d", op.Rect.Width, op.Rect.Height, op.Rect.X, op.Rect.Y))
		case OpResize:
			filters = append(filters, fmt.Sprintf("scale=%d:%d", op.Width, op.Height))
		}
	}
	return append(filters, "setsar=1")
}

func (c *Clip) String() string {
	kinds := make([]string, 0, len(c.ops))
	for _, op := range c.ops {
		kinds = append(kinds, op.Kind.String())
	}
	return fmt.Sprintf("%s %dx%d %.3fs [%s]", c.name, c.width, c.height, c.duration, strings.Join(kinds, ","))
}

func clampRect(width, height int, r Rect) Rect {
	if r.Width > width {
		r.Width = width
	}
	if r.Height > height {
		r.Height = height
	}
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.X+r.Width > width {
		r.X = width - r.Width
	}
	if r.Y+r.Height > height {
		r.Y = height - r.Height
	}
	return r
}
