package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"stackreel/internal/archive"
	"stackreel/internal/captions"
	"stackreel/internal/compose"
	"stackreel/internal/config"
	"stackreel/internal/history"
	"stackreel/internal/layout"
	"stackreel/internal/logging"
	"stackreel/internal/media"
	"stackreel/internal/metrics"
	"stackreel/internal/notifications"
	"stackreel/internal/project"
	"stackreel/internal/services"
)

// Stage names recorded in history, logs and metrics.
const (
	StageValidate = "validate"
	StageOpen     = "open"
	StagePlan     = "plan"
	StageCaptions = "captions"
	StageEncode   = "encode"
	StageArchive  = "archive"
)

// Opener opens media files for the duration of a run.
type Opener interface {
	Open(ctx context.Context, path string) (*media.Source, error)
}

// Result summarises a successful render.
type Result struct {
	Record      *history.Render
	Plan        *layout.Plan
	Pages       []captions.Page
	Fixes       []captions.Fix
	Output      compose.Result
	ArchivePath string
	Warnings    []string
}

// Runner executes renders.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *history.Store
	opener   Opener
	planner  *layout.Planner
	encoder  compose.Encoder
	archiver archive.Archiver
	metrics  *metrics.Metrics
	notifier notifications.Service
}

// Option customises a Runner.
type Option func(*Runner)

// WithStore records renders in store.
func WithStore(store *history.Store) Option {
	return func(r *Runner) { r.store = store }
}

// WithOpener replaces the ffprobe-backed opener.
func WithOpener(o Opener) Option {
	return func(r *Runner) { r.opener = o }
}

// WithEncoder replaces the ffmpeg encoder.
func WithEncoder(e compose.Encoder) Option {
	return func(r *Runner) { r.encoder = e }
}

// WithArchiver replaces the archiver. A nil archiver disables archiving.
func WithArchiver(a archive.Archiver) Option {
	return func(r *Runner) { r.archiver = a }
}

// WithMetrics reports render metrics to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithNotifier replaces the ntfy notifier built from config.
func WithNotifier(n notifications.Service) Option {
	return func(r *Runner) { r.notifier = n }
}

// NewRunner builds a runner with ffprobe, ffmpeg and, when enabled, drapto
// collaborators derived from cfg.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	logger = logging.NewComponentLogger(logger, "render")
	r := &Runner{
		cfg:      cfg,
		logger:   logger,
		opener:   media.NewOpener(cfg.FFprobeBinary(), logger),
		planner:  layout.NewPlanner(logger),
		encoder:  compose.NewFFmpeg(cfg.FFmpegBinary(), logger),
		notifier: notifications.NewService(cfg),
	}
	if cfg.Archive.Enabled {
		r.archiver = archive.NewDrapto(cfg.Archive.Dir, logger)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render runs proj end to end. The request id on ctx, if any, becomes the
// session id; otherwise a new one is generated. The history row, when a
// store is attached, is finished even if ctx is cancelled.
func (r *Runner) Render(ctx context.Context, proj *project.Project) (*Result, error) {
	sessionID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		sessionID = uuid.NewString()
		ctx = services.WithRequestID(ctx, sessionID)
	}

	var record *history.Render
	if r.store != nil {
		rec, err := r.store.Begin(ctx, history.Render{
			SessionID: sessionID,
			Project:   proj.Name,
			Output:    proj.Output,
			Sources:   len(proj.Sources),
			Stage:     StageValidate,
		})
		if err != nil {
			return nil, services.Wrap(services.ErrResource, "history", "begin", "", err)
		}
		record = rec
		ctx = services.WithRenderID(ctx, rec.ID)
	}

	logger := logging.WithContext(ctx, r.logger)
	logger.Info("render started",
		logging.String(logging.FieldEventType, "render_start"),
		logging.String("project", proj.Name),
		logging.String("output", proj.Output),
		logging.Int("sources", len(proj.Sources)),
	)
	r.metrics.RenderStarted()
	started := time.Now()

	run := &run{Runner: r, proj: proj, record: record}
	result, err := run.execute(ctx)

	status := history.StatusSucceeded
	if err != nil {
		status = services.FailureStatus(err)
	}
	r.metrics.RenderFinished(string(status))

	outcome := history.Outcome{Status: status, Stage: run.stage, Err: err}
	if result != nil {
		outcome.Resolution = result.Plan.Resolution.String()
		outcome.DurationSeconds = result.Output.Duration
		outcome.Pages = len(result.Pages)
		outcome.Warnings = result.Warnings
		outcome.OutputBytes = result.Output.Bytes
		outcome.ArchivePath = result.ArchivePath
	}
	if record != nil {
		finished, ferr := r.store.Finish(context.WithoutCancel(ctx), record.ID, outcome)
		if ferr != nil {
			logger.Error("failed to record render outcome", logging.Error(ferr))
		} else {
			record = finished
		}
	}

	if err != nil {
		logging.ErrorWithContext(logger, "render failed", "render_failed",
			logging.Error(err),
			logging.String(logging.FieldStage, run.stage),
			logging.String("status", string(status)),
			logging.Duration("elapsed", time.Since(started)),
		)
		r.notify(ctx, logger, notifications.EventRenderFailed, notifications.Notice{
			Project: proj.Name,
			Output:  proj.Output,
			Status:  string(status),
			Err:     err,
		})
		return nil, err
	}
	result.Record = record
	logger.Info("render finished",
		logging.String(logging.FieldEventType, "render_complete"),
		logging.String("output", result.Output.Path),
		logging.String("resolution", result.Plan.Resolution.String()),
		logging.Int("pages", len(result.Pages)),
		logging.Duration("elapsed", time.Since(started)),
	)
	r.notify(ctx, logger, notifications.EventRenderCompleted, notifications.Notice{
		Project:    proj.Name,
		Output:     result.Output.Path,
		Resolution: result.Plan.Resolution.String(),
		Duration:   result.Output.Duration,
		Elapsed:    time.Since(started),
	})
	return result, nil
}

// notify publishes a render outcome. Delivery failures are logged only.
func (r *Runner) notify(ctx context.Context, logger *slog.Logger, event notifications.Event, notice notifications.Notice) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Publish(context.WithoutCancel(ctx), event, notice); err != nil {
		logging.WarnWithContext(logger, "render notification not delivered", "notification_failed",
			logging.Error(err),
			logging.String("event", string(event)),
			logging.Hint("check notifications.ntfy_topic and network access"),
			logging.Impact("render outcome is unaffected"),
		)
	}
}

// run carries the state of one Render call.
type run struct {
	*Runner
	proj   *project.Project
	record *history.Render
	stage  string
}

func (x *run) enter(ctx context.Context, stage string) (context.Context, func()) {
	x.stage = stage
	if x.record != nil {
		if err := x.store.SetStage(ctx, x.record.ID, stage); err != nil {
			x.logger.Warn("failed to record stage", logging.String(logging.FieldStage, stage), logging.Error(err))
		}
	}
	started := time.Now()
	return services.WithStage(ctx, stage), func() {
		x.metrics.ObserveStage(stage, time.Since(started).Seconds())
	}
}

func (x *run) execute(ctx context.Context) (*Result, error) {
	cfg := x.cfg
	proj := x.proj

	stageCtx, done := x.enter(ctx, StageValidate)
	if err := proj.Validate(cfg); err != nil {
		return nil, err
	}
	done()

	unlock, err := lockOutput(proj.Output)
	if err != nil {
		return nil, err
	}
	defer unlock()

	stageCtx, done = x.enter(ctx, StageOpen)
	opened, err := x.openAll(stageCtx, proj)
	defer opened.close(logging.WithContext(stageCtx, x.logger))
	if err != nil {
		return nil, err
	}
	done()

	stageCtx, done = x.enter(ctx, StagePlan)
	plan, err := x.plan(stageCtx, proj, opened.sources)
	if err != nil {
		return nil, err
	}
	done()

	result := &Result{Plan: plan, Warnings: append([]string(nil), plan.Warnings...)}
	if cfg.Captions.Enabled {
		stageCtx, done = x.enter(ctx, StageCaptions)
		pages, fixes, err := x.pages(stageCtx, proj)
		if err != nil {
			return nil, err
		}
		result.Pages = pages
		result.Fixes = fixes
		x.metrics.AddCaptionPages(len(pages))
		done()
	}

	stageCtx, done = x.enter(ctx, StageEncode)
	timeline := compose.Timeline{
		Plan:    plan,
		Pages:   result.Pages,
		Audio:   opened.audio.Clip(),
		Limit:   proj.Limit(cfg),
		Caption: compose.CaptionStyle{FontFile: cfg.Captions.FontFile, FontSize: cfg.Captions.FontSize, FontColor: cfg.Captions.FontColor},
	}
	out, err := x.encoder.Encode(stageCtx, timeline, compose.Output{
		Path:        proj.Output,
		Codec:       cfg.Encoder.Codec,
		FPS:         cfg.Encoder.FPS,
		Preset:      cfg.Encoder.Preset,
		CRF:         cfg.Encoder.CRF,
		PixelFormat: cfg.Encoder.PixelFormat,
	})
	if err != nil {
		return nil, err
	}
	result.Output = out
	done()

	if x.archiver != nil {
		stageCtx, done = x.enter(ctx, StageArchive)
		path, err := x.archiver.Archive(stageCtx, out.Path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logging.WarnWithContext(logging.WithContext(stageCtx, x.logger), "archival copy failed", "archive_failed",
				logging.Error(err),
				logging.Hint("check drapto output in the log; rerun with archive.enabled once fixed"),
				logging.Impact("render output is complete without an archival copy"),
			)
			result.Warnings = append(result.Warnings, "archive: "+err.Error())
		}
		result.ArchivePath = path
		done()
	}
	return result, nil
}

// lockOutput takes an advisory lock on <output>.lock and returns its release.
func lockOutput(output string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, services.Wrap(services.ErrResource, "lock", "create output dir", filepath.Dir(output), err)
	}
	lockPath := output + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrResource, "lock", "acquire", lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrResource, "lock", "acquire",
			fmt.Sprintf("another render is writing %s", output), nil)
	}
	return func() { _ = lock.Unlock() }, nil
}

// openedMedia tracks every source opened by a run so each is closed once.
type openedMedia struct {
	sources []*media.Source
	audio   *media.Source
}

func (o *openedMedia) close(logger *slog.Logger) {
	if o == nil {
		return
	}
	all := append([]*media.Source(nil), o.sources...)
	if o.audio != nil {
		all = append(all, o.audio)
	}
	for _, src := range all {
		if err := src.Close(); err != nil {
			logger.Warn("failed to close media", logging.String("path", src.Path()), logging.Error(err))
		}
	}
}

func (x *run) openAll(ctx context.Context, proj *project.Project) (*openedMedia, error) {
	opened := &openedMedia{}
	for _, src := range proj.Sources {
		handle, err := x.opener.Open(ctx, src.Path)
		if err != nil {
			return opened, err
		}
		opened.sources = append(opened.sources, handle)
		if !handle.HasVideo() {
			return opened, services.Wrap(services.ErrResource, StageOpen, "source", handle.Path()+" has no video stream", nil)
		}
	}
	audio, err := x.opener.Open(ctx, proj.Audio)
	if err != nil {
		return opened, err
	}
	opened.audio = audio
	if !audio.HasAudio() {
		return opened, services.Wrap(services.ErrResource, StageOpen, "audio", audio.Path()+" has no audio stream", nil)
	}
	return opened, nil
}

func (x *run) plan(ctx context.Context, proj *project.Project, sources []*media.Source) (*layout.Plan, error) {
	return planSources(ctx, x.Runner, proj, sources)
}

func (x *run) pages(ctx context.Context, proj *project.Project) ([]captions.Page, []captions.Fix, error) {
	return buildPages(ctx, x.cfg, x.logger, proj)
}

func planSources(ctx context.Context, r *Runner, proj *project.Project, sources []*media.Source) (*layout.Plan, error) {
	ratio, err := proj.TargetRatio(r.cfg)
	if err != nil {
		return nil, err
	}
	opts, err := layoutOptions(r.cfg, ratio)
	if err != nil {
		return nil, err
	}
	clips := make([]layout.SourceClip, len(sources))
	for i, src := range sources {
		spec := proj.Sources[i]
		clips[i] = layout.SourceClip{
			Handle:      src.Clip(),
			Weight:      spec.Weight,
			Zoom:        spec.Zoom,
			StartOffset: spec.StartOffset,
		}
	}
	planner := layout.NewPlanner(logging.WithContext(ctx, r.logger))
	plan, err := planner.Plan(clips, opts)
	if err != nil {
		return nil, err
	}
	r.metrics.ObservePlan(len(plan.Warnings), plan.Downgrade != nil)
	return plan, nil
}

func layoutOptions(cfg *config.Config, ratio float64) (layout.Options, error) {
	color, err := config.ParseHexColor(cfg.Layout.LineColor)
	if err != nil {
		return layout.Options{}, services.Wrap(services.ErrConfiguration, "config", "line_color", cfg.Layout.LineColor, err)
	}
	return layout.Options{
		TargetRatio: ratio,
		LineWidth:   cfg.Layout.LineWidth,
		LineColor:   layout.RGB{R: color[0], G: color[1], B: color[2]},
		Ladder:      cfg.Layout.Ladder,
	}, nil
}

func buildPages(ctx context.Context, cfg *config.Config, logger *slog.Logger, proj *project.Project) ([]captions.Page, []captions.Fix, error) {
	logger = logging.WithContext(ctx, logger)
	cues, err := captions.ParseFile(proj.Subtitles)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Captions.NormalizeTypography {
		cues = captions.NormalizeCues(cues)
	}
	var fixes []captions.Fix
	if cfg.Captions.Reconcile {
		data, err := os.ReadFile(proj.CorrectedText)
		if err != nil {
			return nil, nil, services.Wrap(services.ErrResource, StageCaptions, "read corrected text", proj.CorrectedText, err)
		}
		text := string(data)
		if cfg.Captions.NormalizeTypography {
			text = captions.NormalizeTypography(text)
		}
		cues, fixes, err = captions.Reconcile(cues, text)
		if err != nil {
			var recErr *captions.ReconciliationError
			if errors.As(err, &recErr) {
				logger.Error("corrected text does not match subtitles",
					logging.Int("cue_index", recErr.Index),
					logging.Hint("make corrected_text contain the subtitle words in order"),
				)
			}
			return nil, nil, err
		}
		logger.Debug("interpunction reconciled", logging.Int("fixes", len(fixes)))
	}
	pages := captions.Paginate(cues, captions.PaginateOptions{
		CharBudget:  cfg.Captions.CharBudget,
		Punctuation: cfg.Captions.Punctuation,
	})
	pages = captions.Style{Uppercase: cfg.Captions.Uppercase}.ApplyPages(pages)
	logger.Info("caption pages built", logging.Int("cues", len(cues)), logging.Int("pages", len(pages)))
	return pages, fixes, nil
}
