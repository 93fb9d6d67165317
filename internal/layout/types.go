package layout

import (
	"fmt"

	"stackreel/internal/media"
)

type (
	RGB  = media.RGB
	Rect = media.Rect
)

// Size is a frame size in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Orientation selects the stacking axis.
type Orientation int

const (
	// Portrait stacks elements top to bottom (target ratio below 1).
	Portrait Orientation = iota
	// Landscape stacks elements left to right.
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

// OrientationFor derives the orientation from a width/height ratio.
func OrientationFor(ratio float64) Orientation {
	if ratio < 1 {
		return Portrait
	}
	return Landscape
}

// SourceClip describes one input of a composition.
type SourceClip struct {
	Handle      media.Handle
	Weight      int
	Zoom        float64
	StartOffset float64
}

// Kind tags composition elements.
type Kind int

const (
	KindSource Kind = iota
	KindDivider
)

func (k Kind) String() string {
	if k == KindDivider {
		return "divider"
	}
	return "source"
}

// Element is one entry of the stacked sequence.
type Element struct {
	Kind   Kind
	Name   string
	Weight int
	// EffectiveRatio is the width/height this element must have so the
	// weighted stack matches the target ratio.
	EffectiveRatio float64
	// Crop is the centred crop applied to the source frame. Zero for dividers.
	Crop Rect
	// Size is the element's final size inside the stack.
	Size   Size
	Handle media.Handle
}

// Downgrade records a resolution lowered to fit the narrowest source.
type Downgrade struct {
	Clip string
	From Size
	To   Size
}

// Plan is the result of planning a composition.
type Plan struct {
	TargetRatio float64
	Orientation Orientation
	TotalWeight int
	Elements    []Element
	// Resolution is the ladder-quantised output size.
	Resolution Size
	// Canvas is the size of the stacked elements before fitting to Resolution.
	Canvas    Size
	Duration  float64
	Downgrade *Downgrade
	Warnings  []string
}

// Sources returns the source elements in stacking order.
func (p *Plan) Sources() []Element {
	out := make([]Element, 0, len(p.Elements))
	for _, el := range p.Elements {
		if el.Kind == KindSource {
			out = append(out, el)
		}
	}
	return out
}

// Options parameterise a planning run.
type Options struct {
	// TargetRatio is the output width divided by its height.
	TargetRatio float64
	LineWidth   int
	LineColor   RGB
	// Ladder lists the allowed primary-axis sizes, usually DefaultLadder().
	Ladder []int
}
