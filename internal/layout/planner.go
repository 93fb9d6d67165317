package layout

import (
	"fmt"
	"log/slog"
	"math"

	"stackreel/internal/logging"
	"stackreel/internal/media"
)

// Planner computes composition plans.
type Planner struct {
	logger *slog.Logger
}

// NewPlanner returns a planner that reports warnings to logger.
func NewPlanner(logger *slog.Logger) *Planner {
	return &Planner{logger: logging.NewComponentLogger(logger, "layout")}
}

type sourceGeometry struct {
	clip   SourceClip
	ratio  float64
	crop   Rect
	stack  int
	cross  int
	remain float64
}

// Plan crops, sizes and stacks sources for the target ratio.
func (p *Planner) Plan(sources []SourceClip, opts Options) (*Plan, error) {
	ladder, err := validateOptions(opts)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, &InsufficientSourceError{Reason: "no sources to compose"}
	}
	if err := validateSources(sources); err != nil {
		return nil, err
	}

	logger := p.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	ratio := opts.TargetRatio
	orientation := OrientationFor(ratio)
	plan := &Plan{TargetRatio: ratio, Orientation: orientation}

	total := len(sources) - 1
	for _, src := range sources {
		total += src.Weight
	}
	plan.TotalWeight = total
	if !isPowerOfTen(total) {
		msg := fmt.Sprintf("weights sum to %d, which is not a power of ten", total)
		plan.Warnings = append(plan.Warnings, msg)
		logging.WarnWithContext(logger, msg, "weight_sum_not_power_of_ten",
			logging.Int("total_weight", total),
			logging.Hint("check the source weights for a typo"),
			logging.Impact("element shares are computed from the actual sum"),
		)
	}

	geoms := make([]sourceGeometry, len(sources))
	stackSum := 0
	minDuration := math.Inf(1)
	for i, src := range sources {
		g := sourceGeometry{clip: src, ratio: effectiveRatio(orientation, ratio, total, src.Weight)}
		g.crop = maxCrop(src.Handle.Width(), src.Handle.Height(), g.ratio, src.Zoom)
		if orientation == Portrait {
			g.stack, g.cross = g.crop.Height, g.crop.Width
		} else {
			g.stack, g.cross = g.crop.Width, g.crop.Height
		}
		g.remain = src.Handle.Duration() - src.StartOffset
		if g.remain < minDuration {
			minDuration = g.remain
		}
		stackSum += g.stack
		geoms[i] = g
	}
	plan.Duration = minDuration

	secondaryFor := func(primary int) int {
		if orientation == Portrait {
			return int(float64(primary) * ratio)
		}
		return int(float64(primary) / ratio)
	}
	sizeFor := func(primary int) Size {
		if orientation == Portrait {
			return Size{Width: secondaryFor(primary), Height: primary}
		}
		return Size{Width: primary, Height: secondaryFor(primary)}
	}

	primary, ok := ladderFloor(ladder, float64(stackSum))
	if !ok {
		return nil, &InsufficientSourceError{
			Reason:   fmt.Sprintf("combined cropped extent %dpx is below the smallest ladder size %d", stackSum, ladder[0]),
			Fallback: sizeFor(ladder[0]),
		}
	}
	if secondaryFor(primary) < 1 {
		return nil, configError("ratio", fmt.Sprintf("target ratio %g gives an empty output at %d", ratio, primary))
	}

	narrowest := geoms[0]
	for _, g := range geoms[1:] {
		if g.cross < narrowest.cross {
			narrowest = g
		}
	}
	if narrowest.cross < secondaryFor(primary) {
		attempted := sizeFor(primary)
		lowered, ok := ladderFloorWhere(ladder, func(v int) bool {
			s := secondaryFor(v)
			return v <= primary && s >= 1 && s <= narrowest.cross
		})
		if !ok {
			return nil, &InsufficientSourceError{
				Clip:      narrowest.clip.Handle.Name(),
				Reason:    fmt.Sprintf("cropped extent %dpx cannot fill any ladder size", narrowest.cross),
				Attempted: attempted,
				Fallback:  sizeFor(ladder[0]),
			}
		}
		primary = lowered
		plan.Downgrade = &Downgrade{Clip: narrowest.clip.Handle.Name(), From: attempted, To: sizeFor(primary)}
		msg := fmt.Sprintf("clip %q is too small for %s, output lowered to %s", plan.Downgrade.Clip, attempted, plan.Downgrade.To)
		plan.Warnings = append(plan.Warnings, msg)
		logging.WarnWithContext(logger, "resolution downgraded", "resolution_downgrade",
			logging.String("clip", plan.Downgrade.Clip),
			logging.String("from", attempted.String()),
			logging.String("to", plan.Downgrade.To.String()),
			logging.Int("clip_extent", narrowest.cross),
			logging.Hint("use a larger source or a lower zoom for this clip"),
			logging.Impact("output is rendered at the lower resolution"),
		)
	}

	secondary := secondaryFor(primary)
	plan.Resolution = sizeFor(primary)
	plan.Elements = make([]Element, 0, 2*len(sources)-1)

	for i, g := range geoms {
		if i > 0 {
			plan.Elements = append(plan.Elements, p.divider(i, orientation, secondary, minDuration, opts))
		}
		plan.Elements = append(plan.Elements, placeSource(g, orientation, primary, secondary, total, minDuration))
	}

	for _, el := range plan.Elements {
		if orientation == Portrait {
			plan.Canvas.Height += el.Size.Height
			plan.Canvas.Width = secondary
		} else {
			plan.Canvas.Width += el.Size.Width
			plan.Canvas.Height = secondary
		}
	}

	logger.Info("layout planned",
		logging.Dimensions("resolution", plan.Resolution.Width, plan.Resolution.Height),
		logging.Dimensions("canvas", plan.Canvas.Width, plan.Canvas.Height),
		logging.String("orientation", orientation.String()),
		logging.Int("total_weight", total),
		logging.Seconds("duration_seconds", minDuration),
	)
	logger.Info(fmt.Sprintf("resulting clip will be %s", plan.Resolution))
	return plan, nil
}

func (p *Planner) divider(index int, orientation Orientation, secondary int, duration float64, opts Options) Element {
	size := Size{Width: secondary, Height: opts.LineWidth}
	if orientation == Landscape {
		size = Size{Width: opts.LineWidth, Height: secondary}
	}
	name := fmt.Sprintf("divider-%d", index)
	var handle media.Handle = media.NewSolid(name, opts.LineColor, size.Width, size.Height, duration)
	handle = handle.Trim(0, duration)
	return Element{
		Kind:           KindDivider,
		Name:           name,
		Weight:         1,
		EffectiveRatio: float64(size.Width) / math.Max(float64(size.Height), 1),
		Size:           size,
		Handle:         handle,
	}
}

func placeSource(g sourceGeometry, orientation Orientation, primary, secondary, total int, duration float64) Element {
	src := g.clip
	share := int(math.Round(float64(primary) * float64(src.Weight) / float64(total)))
	size := Size{Width: secondary, Height: share}
	if orientation == Landscape {
		size = Size{Width: share, Height: secondary}
	}
	h := src.Handle.Trim(src.StartOffset, src.Handle.Duration())
	crop := g.crop
	h = h.Crop(crop)
	h = h.Resize(size.Width, size.Height)
	h = h.Trim(0, duration)
	return Element{
		Kind:           KindSource,
		Name:           src.Handle.Name(),
		Weight:         src.Weight,
		EffectiveRatio: g.ratio,
		Crop:           crop,
		Size:           size,
		Handle:         h,
	}
}

func effectiveRatio(orientation Orientation, ratio float64, total, weight int) float64 {
	if orientation == Portrait {
		return ratio * float64(total) / float64(weight)
	}
	return ratio / (float64(total) / float64(weight))
}

// maxCrop returns the largest centred crop of ratio r at zoom, rounded to
// whole pixels and kept inside the frame.
func maxCrop(width, height int, r, zoom float64) Rect {
	w, h := float64(width), float64(height)
	var cropW, cropH float64
	if h*r <= w {
		cropH, cropW = h/zoom, h*r/zoom
	} else {
		cropH, cropW = w/r/zoom, w/zoom
	}
	cw := clampPixels(cropW, width)
	ch := clampPixels(cropH, height)
	return media.CenteredRect(width, height, cw, ch)
}

func clampPixels(v float64, limit int) int {
	n := int(math.Round(v))
	if n > limit {
		n = limit
	}
	if n < 1 {
		n = 1
	}
	return n
}

func validateOptions(opts Options) ([]int, error) {
	r := opts.TargetRatio
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return nil, configError("ratio", fmt.Sprintf("target ratio must be positive, got %g", r))
	}
	if opts.LineWidth < 0 {
		return nil, configError("line_width", fmt.Sprintf("line width must not be negative, got %d", opts.LineWidth))
	}
	if len(opts.Ladder) == 0 {
		return nil, configError("ladder", "resolution ladder is empty")
	}
	for _, v := range opts.Ladder {
		if v <= 0 {
			return nil, configError("ladder", fmt.Sprintf("ladder values must be positive, got %d", v))
		}
	}
	return sortedLadder(opts.Ladder), nil
}

func validateSources(sources []SourceClip) error {
	for i, src := range sources {
		if src.Handle == nil {
			return configError("source", fmt.Sprintf("source %d has no media handle", i+1))
		}
		name := src.Handle.Name()
		if src.Weight <= 0 {
			return configError("weight", fmt.Sprintf("%s: weight must be positive, got %d", name, src.Weight))
		}
		if math.IsNaN(src.Zoom) || src.Zoom < 1 {
			return configError("zoom", fmt.Sprintf("%s: zoom must be at least 1, got %g", name, src.Zoom))
		}
		if math.IsNaN(src.StartOffset) || src.StartOffset < 0 {
			return configError("start_offset", fmt.Sprintf("%s: start offset must not be negative, got %g", name, src.StartOffset))
		}
		if src.Handle.Width() <= 0 || src.Handle.Height() <= 0 {
			return &InsufficientSourceError{Clip: name, Reason: "source has no video frame"}
		}
		if src.StartOffset >= src.Handle.Duration() {
			return &InsufficientSourceError{
				Clip:   name,
				Reason: fmt.Sprintf("start offset %gs is not before the clip end %gs", src.StartOffset, src.Handle.Duration()),
			}
		}
	}
	return nil
}
