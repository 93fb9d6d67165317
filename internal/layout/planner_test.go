package layout_test

import (
	"errors"
	"strings"
	"testing"

	"stackreel/internal/layout"
	"stackreel/internal/media"
	"stackreel/internal/services"
	"stackreel/internal/testsupport"
)

const portrait = 9.0 / 16.0

func defaultOptions() layout.Options {
	return layout.Options{
		TargetRatio: portrait,
		LineWidth:   4,
		LineColor:   layout.RGB{R: 255, G: 255, B: 255},
		Ladder:      layout.DefaultLadder(),
	}
}

func source(name string, width, height int, duration float64, weight int) layout.SourceClip {
	return layout.SourceClip{Handle: testsupport.Clip(name, width, height, duration), Weight: weight, Zoom: 1}
}

func TestCropBranchAtBoundary(t *testing.T) {
	planner := layout.NewPlanner(nil)
	plan, err := planner.Plan([]layout.SourceClip{source("narrow.mp4", 608, 1080, 10, 1)}, defaultOptions())
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	el := plan.Elements[0]
	if el.Crop.Height != 1080 || el.Crop.Width != 608 {
		t.Fatalf("expected crop 608x1080, got %dx%d", el.Crop.Width, el.Crop.Height)
	}
	if plan.Resolution != (layout.Size{Width: 607, Height: 1080}) {
		t.Fatalf("unexpected resolution %s", plan.Resolution)
	}
	if plan.Downgrade != nil {
		t.Fatalf("unexpected downgrade %+v", plan.Downgrade)
	}
	if len(plan.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", plan.Warnings)
	}
}

func TestCropUsesWidthBranchForWideSources(t *testing.T) {
	planner := layout.NewPlanner(nil)
	src := source("wide.mp4", 1920, 1080, 10, 1)
	src.Zoom = 2
	plan, err := planner.Plan([]layout.SourceClip{src}, defaultOptions())
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	el := plan.Elements[0]
	// 1080*0.5625 = 607.5 <= 1920, so height-driven: 540 x 303.75.
	if el.Crop.Height != 540 || el.Crop.Width != 304 {
		t.Fatalf("unexpected crop %+v", el.Crop)
	}
	if el.Crop.X != (1920-304)/2 || el.Crop.Y != (1080-540)/2 {
		t.Fatalf("crop is not centred: %+v", el.Crop)
	}
	if plan.Resolution.Height != 480 {
		t.Fatalf("expected 480 ladder rung, got %s", plan.Resolution)
	}
}

func TestWeightSumWarning(t *testing.T) {
	tests := []struct {
		name    string
		weights []int
		warn    bool
	}{
		{name: "single", weights: []int{1}, warn: false},
		{name: "ten", weights: []int{5, 4}, warn: false},
		{name: "hundred", weights: []int{49, 50}, warn: false},
		{name: "nine", weights: []int{4, 4}, warn: true},
		{name: "eleven", weights: []int{3, 3, 3}, warn: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logger, logs := testsupport.NewLogger()
			planner := layout.NewPlanner(logger)
			sources := make([]layout.SourceClip, len(tc.weights))
			for i, w := range tc.weights {
				sources[i] = source("clip.mp4", 3840, 2160, 10, w)
			}
			plan, err := planner.Plan(sources, defaultOptions())
			if err != nil {
				t.Fatalf("Plan returned error: %v", err)
			}
			warned := logs.Count("weight_sum_not_power_of_ten") > 0
			if warned != tc.warn {
				t.Fatalf("warned=%v, want %v (logs %s)", warned, tc.warn, logs.String())
			}
			if tc.warn && len(plan.Warnings) == 0 {
				t.Fatal("expected plan to carry the warning")
			}
			if len(plan.Elements) != 2*len(tc.weights)-1 {
				t.Fatalf("expected %d elements, got %d", 2*len(tc.weights)-1, len(plan.Elements))
			}
		})
	}
}

func TestResolutionIsLadderValueWithinExtent(t *testing.T) {
	sizes := [][2]int{{1920, 1080}, {1280, 720}, {640, 480}, {3840, 2160}, {1080, 1920}, {720, 1280}}
	ladder := layout.DefaultLadder()
	for _, a := range sizes {
		for _, b := range sizes {
			plan, err := layout.NewPlanner(nil).Plan([]layout.SourceClip{
				source("a", a[0], a[1], 5, 5),
				source("b", b[0], b[1], 5, 4),
			}, defaultOptions())
			if err != nil {
				var insufficient *layout.InsufficientSourceError
				if errors.As(err, &insufficient) {
					continue
				}
				t.Fatalf("%v/%v: %v", a, b, err)
			}
			primary := plan.Resolution.Height
			found := false
			for _, v := range ladder {
				if v == primary {
					found = true
				}
			}
			if !found {
				t.Fatalf("%v/%v: primary %d not on ladder", a, b, primary)
			}
			extent := 0
			for _, el := range plan.Sources() {
				extent += el.Crop.Height
			}
			if primary > extent {
				t.Fatalf("%v/%v: primary %d exceeds cropped extent %d", a, b, primary, extent)
			}
		}
	}
}

func TestDowngradeForSmallSource(t *testing.T) {
	logger, logs := testsupport.NewLogger()
	planner := layout.NewPlanner(logger)
	plan, err := planner.Plan([]layout.SourceClip{
		source("top.mp4", 1920, 1080, 12, 3),
		source("middle.mp4", 1920, 1080, 12, 3),
		source("tiny.mp4", 320, 240, 12, 2),
	}, defaultOptions())
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if plan.TotalWeight != 10 {
		t.Fatalf("expected total weight 10, got %d", plan.TotalWeight)
	}
	if plan.Resolution != (layout.Size{Width: 270, Height: 480}) {
		t.Fatalf("expected 270x480, got %s", plan.Resolution)
	}
	if plan.Downgrade == nil {
		t.Fatal("expected downgrade")
	}
	if plan.Downgrade.Clip != "tiny.mp4" {
		t.Fatalf("unexpected downgrade clip %q", plan.Downgrade.Clip)
	}
	if plan.Downgrade.From != (layout.Size{Width: 1215, Height: 2160}) {
		t.Fatalf("unexpected naive resolution %s", plan.Downgrade.From)
	}
	if logs.Count("resolution_downgrade") != 1 || !strings.Contains(logs.String(), "tiny.mp4") {
		t.Fatalf("expected downgrade warning naming the clip, got %s", logs.String())
	}
}

func TestElementsStackInOrder(t *testing.T) {
	plan, err := layout.NewPlanner(nil).Plan([]layout.SourceClip{
		source("a.mp4", 1920, 1080, 20, 5),
		source("b.mp4", 1920, 1080, 8, 4),
	}, defaultOptions())
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	kinds := []layout.Kind{layout.KindSource, layout.KindDivider, layout.KindSource}
	if len(plan.Elements) != len(kinds) {
		t.Fatalf("expected %d elements, got %d", len(kinds), len(plan.Elements))
	}
	for i, kind := range kinds {
		if plan.Elements[i].Kind != kind {
			t.Fatalf("element %d: expected %s, got %s", i, kind, plan.Elements[i].Kind)
		}
	}
	if plan.Elements[0].Name != "a.mp4" || plan.Elements[2].Name != "b.mp4" {
		t.Fatal("sources out of order")
	}
	if plan.Duration != 8 {
		t.Fatalf("expected shortest duration 8, got %v", plan.Duration)
	}
	res := plan.Resolution
	for _, el := range plan.Elements {
		if el.Handle.Duration() != plan.Duration {
			t.Fatalf("%s: duration %v not truncated to %v", el.Name, el.Handle.Duration(), plan.Duration)
		}
		if el.Size.Width != res.Width {
			t.Fatalf("%s: width %d does not span output %d", el.Name, el.Size.Width, res.Width)
		}
		if el.Handle.Width() != el.Size.Width || el.Handle.Height() != el.Size.Height {
			t.Fatalf("%s: handle %dx%d does not match size %s", el.Name, el.Handle.Width(), el.Handle.Height(), el.Size)
		}
	}
	divider := plan.Elements[1]
	if divider.Size.Height != 4 || divider.Weight != 1 {
		t.Fatalf("unexpected divider %+v", divider)
	}
	if _, ok := divider.Handle.(*media.Solid); !ok {
		t.Fatalf("divider should be a solid clip, got %T", divider.Handle)
	}
	wantA := int(float64(res.Height)*5/10 + 0.5)
	if plan.Elements[0].Size.Height != wantA {
		t.Fatalf("expected share %d, got %d", wantA, plan.Elements[0].Size.Height)
	}
	if plan.Canvas.Height != plan.Elements[0].Size.Height+4+plan.Elements[2].Size.Height {
		t.Fatalf("unexpected canvas %s", plan.Canvas)
	}
}

func TestStartOffsetTrimsBeforeCrop(t *testing.T) {
	src := source("late.mp4", 1920, 1080, 10, 1)
	src.StartOffset = 2.5
	plan, err := layout.NewPlanner(nil).Plan([]layout.SourceClip{src}, defaultOptions())
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if plan.Duration != 7.5 {
		t.Fatalf("expected 7.5s, got %v", plan.Duration)
	}
	ops := plan.Elements[0].Handle.(*media.Clip).Ops()
	if ops[0].Kind != media.OpTrim || ops[0].Start != 2.5 {
		t.Fatalf("expected leading trim at 2.5, got %+v", ops[0])
	}
	if ops[1].Kind != media.OpCrop || ops[2].Kind != media.OpResize {
		t.Fatalf("expected crop then resize, got %+v", ops)
	}
}

func TestLandscapeStacksHorizontally(t *testing.T) {
	opts := defaultOptions()
	opts.TargetRatio = 16.0 / 9.0
	plan, err := layout.NewPlanner(nil).Plan([]layout.SourceClip{
		source("left.mp4", 1080, 1920, 6, 5),
		source("right.mp4", 1080, 1920, 6, 4),
	}, opts)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if plan.Orientation != layout.Landscape {
		t.Fatalf("expected landscape, got %s", plan.Orientation)
	}
	for _, el := range plan.Elements {
		if el.Size.Height != plan.Resolution.Height {
			t.Fatalf("%s: height %d does not span output %d", el.Name, el.Size.Height, plan.Resolution.Height)
		}
	}
	if plan.Elements[1].Size.Width != 4 {
		t.Fatalf("expected vertical divider of width 4, got %s", plan.Elements[1].Size)
	}
	if plan.Canvas.Height != plan.Resolution.Height {
		t.Fatalf("canvas height %d should equal output height", plan.Canvas.Height)
	}
}

func TestPlanErrors(t *testing.T) {
	valid := source("ok.mp4", 1920, 1080, 10, 1)
	tests := []struct {
		name    string
		sources []layout.SourceClip
		mutate  func(*layout.Options)
		marker  error
	}{
		{name: "empty", sources: nil, marker: services.ErrInsufficientSource},
		{name: "zero ratio", sources: []layout.SourceClip{valid}, mutate: func(o *layout.Options) { o.TargetRatio = 0 }, marker: services.ErrConfiguration},
		{name: "negative ratio", sources: []layout.SourceClip{valid}, mutate: func(o *layout.Options) { o.TargetRatio = -1 }, marker: services.ErrConfiguration},
		{name: "empty ladder", sources: []layout.SourceClip{valid}, mutate: func(o *layout.Options) { o.Ladder = nil }, marker: services.ErrConfiguration},
		{name: "negative line", sources: []layout.SourceClip{valid}, mutate: func(o *layout.Options) { o.LineWidth = -1 }, marker: services.ErrConfiguration},
		{name: "zero weight", sources: []layout.SourceClip{{Handle: valid.Handle, Weight: 0, Zoom: 1}}, marker: services.ErrConfiguration},
		{name: "zoom below one", sources: []layout.SourceClip{{Handle: valid.Handle, Weight: 1, Zoom: 0.5}}, marker: services.ErrConfiguration},
		{name: "negative offset", sources: []layout.SourceClip{{Handle: valid.Handle, Weight: 1, Zoom: 1, StartOffset: -1}}, marker: services.ErrConfiguration},
		{name: "offset past end", sources: []layout.SourceClip{{Handle: valid.Handle, Weight: 1, Zoom: 1, StartOffset: 10}}, marker: services.ErrInsufficientSource},
		{name: "below ladder", sources: []layout.SourceClip{source("thumb.mp4", 100, 100, 5, 1)}, marker: services.ErrInsufficientSource},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := defaultOptions()
			if tc.mutate != nil {
				tc.mutate(&opts)
			}
			_, err := layout.NewPlanner(nil).Plan(tc.sources, opts)
			if !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
		})
	}
}

func TestInsufficientSourceCarriesContext(t *testing.T) {
	_, err := layout.NewPlanner(nil).Plan([]layout.SourceClip{
		source("big.mp4", 3840, 2160, 10, 5),
		source("sliver.mp4", 60, 2000, 10, 4),
	}, defaultOptions())
	var insufficient *layout.InsufficientSourceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientSourceError, got %v", err)
	}
	if insufficient.Clip != "sliver.mp4" {
		t.Fatalf("expected offending clip, got %q", insufficient.Clip)
	}
	if insufficient.Attempted == (layout.Size{}) || insufficient.Fallback == (layout.Size{}) {
		t.Fatalf("expected attempted and fallback sizes, got %+v", insufficient)
	}
	if !strings.Contains(err.Error(), "sliver.mp4") {
		t.Fatalf("error should name the clip: %v", err)
	}
}
