package api

import (
	"time"

	"stackreel/internal/history"
	"stackreel/internal/layout"
)

// FromPlan converts a layout plan into its transport form.
func FromPlan(p *layout.Plan) Plan {
	if p == nil {
		return Plan{}
	}
	out := Plan{
		Orientation:     p.Orientation.String(),
		TargetRatio:     p.TargetRatio,
		TotalWeight:     p.TotalWeight,
		Resolution:      fromSize(p.Resolution),
		Canvas:          fromSize(p.Canvas),
		DurationSeconds: p.Duration,
		Elements:        make([]Element, 0, len(p.Elements)),
		Warnings:        append([]string(nil), p.Warnings...),
	}
	for _, el := range p.Elements {
		view := Element{
			Kind:           el.Kind.String(),
			Name:           el.Name,
			Weight:         el.Weight,
			EffectiveRatio: el.EffectiveRatio,
			Size:           fromSize(el.Size),
		}
		if el.Kind == layout.KindSource {
			view.Crop = &Crop{X: el.Crop.X, Y: el.Crop.Y, Width: el.Crop.Width, Height: el.Crop.Height}
		}
		out.Elements = append(out.Elements, view)
	}
	if d := p.Downgrade; d != nil {
		out.Downgrade = &Downgrade{Clip: d.Clip, From: fromSize(d.From), To: fromSize(d.To)}
	}
	return out
}

// FromRender converts a history row into its transport form.
func FromRender(r *history.Render) Render {
	if r == nil {
		return Render{}
	}
	return Render{
		ID:              r.ID,
		SessionID:       r.SessionID,
		Project:         r.Project,
		Output:          r.Output,
		Status:          string(r.Status),
		Stage:           r.Stage,
		Resolution:      r.Resolution,
		DurationSeconds: r.DurationSeconds,
		Sources:         r.Sources,
		Pages:           r.Pages,
		Warnings:        r.Warnings,
		ErrorMessage:    r.ErrorMessage,
		OutputBytes:     r.OutputBytes,
		ArchivePath:     r.ArchivePath,
		StartedAt:       formatTime(r.StartedAt),
		FinishedAt:      formatTime(r.FinishedAt),
		ElapsedSeconds:  r.Elapsed().Seconds(),
	}
}

func fromSize(s layout.Size) Size {
	return Size{Width: s.Width, Height: s.Height}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
