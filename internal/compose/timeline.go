package compose

import (
	"math"

	"stackreel/internal/captions"
	"stackreel/internal/layout"
	"stackreel/internal/media"
)

// CaptionStyle controls how pages are drawn.
type CaptionStyle struct {
	FontFile  string
	FontSize  int
	FontColor string
}

// Timeline is everything placed on the output clock.
type Timeline struct {
	Plan    *layout.Plan
	Pages   []captions.Page
	Audio   media.Handle
	Limit   float64
	Caption CaptionStyle
}

// Duration returns the output length: the audio length, or the plan length
// without audio, cut to Limit when it is positive.
func (t Timeline) Duration() float64 {
	d := 0.0
	switch {
	case t.Audio != nil:
		d = t.Audio.Duration()
	case t.Plan != nil:
		d = t.Plan.Duration
	}
	if t.Limit > 0 {
		d = math.Min(d, t.Limit)
	}
	return d
}

// VisiblePages returns the pages that start before the output ends, with
// their end clamped to it.
func (t Timeline) VisiblePages() []captions.Page {
	end := t.Duration()
	out := make([]captions.Page, 0, len(t.Pages))
	for _, page := range t.Pages {
		if page.Start >= end {
			continue
		}
		if page.End > end {
			page.End = end
		}
		out = append(out, page)
	}
	return out
}
