package render

import (
	"context"

	"stackreel/internal/captions"
	"stackreel/internal/layout"
	"stackreel/internal/logging"
	"stackreel/internal/media"
	"stackreel/internal/project"
	"stackreel/internal/services"
)

// Plan opens the project's sources, plans the layout and closes them again
// without encoding anything. Caption companions are not required.
func (r *Runner) Plan(ctx context.Context, proj *project.Project) (*layout.Plan, error) {
	if err := proj.Validate(nil); err != nil {
		return nil, err
	}
	ctx = services.WithStage(ctx, StagePlan)
	opened := &openedMedia{}
	defer opened.close(logging.WithContext(ctx, r.logger))
	for _, src := range proj.Sources {
		handle, err := r.opener.Open(ctx, src.Path)
		if err != nil {
			return nil, err
		}
		opened.sources = append(opened.sources, handle)
	}
	return planSources(ctx, r, proj, opened.sources)
}

// Captions builds the caption pages for proj without touching media.
func (r *Runner) Captions(ctx context.Context, proj *project.Project) ([]captions.Page, []captions.Fix, error) {
	if err := proj.Validate(r.cfg); err != nil {
		return nil, nil, err
	}
	if !r.cfg.Captions.Enabled {
		return nil, nil, services.Wrap(services.ErrConfiguration, StageCaptions, "build pages", "captions.enabled is off", nil)
	}
	return buildPages(services.WithStage(ctx, StageCaptions), r.cfg, r.logger, proj)
}

var _ Opener = (*media.Opener)(nil)
