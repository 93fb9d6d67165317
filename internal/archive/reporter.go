package archive

import (
	"log/slog"
	"sync"

	draptolib "github.com/five82/drapto"

	"stackreel/internal/logging"
)

// progressStep is the percentage granularity at which encode progress is logged.
const progressStep = 10

// logReporter implements draptolib.Reporter on top of slog.
type logReporter struct {
	logger *slog.Logger

	mu         sync.Mutex
	lastBucket int
}

func newLogReporter(logger *slog.Logger) *logReporter {
	return &logReporter{logger: logger, lastBucket: -1}
}

func (r *logReporter) Hardware(s draptolib.HardwareSummary) {
	r.logger.Debug("drapto hardware", logging.Any("hostname", s.Hostname))
}

func (r *logReporter) Initialization(s draptolib.InitializationSummary) {
	r.logger.Info("drapto initialised",
		logging.Any("input", s.InputFile),
		logging.Any("output", s.OutputFile),
		logging.Any("resolution", s.Resolution),
		logging.Any("dynamic_range", s.DynamicRange),
	)
}

func (r *logReporter) StageProgress(s draptolib.StageProgress) {
	r.logger.Debug("drapto stage",
		logging.Any("stage", s.Stage),
		logging.Float64("percent", float64(s.Percent)),
		logging.Any("message", s.Message),
	)
}

func (r *logReporter) CropResult(s draptolib.CropSummary) {
	r.logger.Debug("drapto crop",
		logging.Any("crop", s.Crop),
		logging.Any("required", s.Required),
		logging.Any("disabled", s.Disabled),
	)
}

func (r *logReporter) EncodingConfig(s draptolib.EncodingConfigSummary) {
	r.logger.Info("drapto encoding config",
		logging.Any("encoder", s.Encoder),
		logging.Any("preset", s.Preset),
		logging.Any("quality", s.Quality),
		logging.Any("pixel_format", s.PixelFormat),
		logging.Any("audio_codec", s.AudioCodec),
	)
}

func (r *logReporter) EncodingStarted(totalFrames uint64) {
	r.logger.Info("drapto encoding started", logging.Int64("total_frames", int64(totalFrames)))
}

// EncodingProgress logs once per progressStep percent.
func (r *logReporter) EncodingProgress(s draptolib.ProgressSnapshot) {
	percent := float64(s.Percent)
	bucket := int(percent) / progressStep
	r.mu.Lock()
	if bucket <= r.lastBucket {
		r.mu.Unlock()
		return
	}
	r.lastBucket = bucket
	r.mu.Unlock()
	r.logger.Info("archive progress",
		logging.Float64("percent", percent),
		logging.Any("speed", s.Speed),
		logging.Any("eta", s.ETA),
	)
}

func (r *logReporter) ValidationComplete(s draptolib.ValidationSummary) {
	failed := 0
	for _, step := range s.Steps {
		if !step.Passed {
			failed++
			logging.WarnWithContext(r.logger, "drapto validation step failed", "archive_validation",
				logging.Any("step", step.Name),
				logging.Any("details", step.Details),
				logging.Impact("archival copy may not match the render"),
			)
		}
	}
	r.logger.Info("drapto validation", logging.Bool("passed", s.Passed), logging.Int("failed_steps", failed))
}

func (r *logReporter) EncodingComplete(s draptolib.EncodingOutcome) {
	r.logger.Info("drapto encoding complete",
		logging.Any("output", s.OutputPath),
		logging.Int64("original_bytes", int64(s.OriginalSize)),
		logging.Int64("encoded_bytes", int64(s.EncodedSize)),
		logging.Any("elapsed", s.TotalTime),
	)
}

func (r *logReporter) Warning(message string) {
	logging.WarnWithContext(r.logger, message, "archive_warning")
}

func (r *logReporter) Error(e draptolib.ReporterError) {
	r.logger.Error("drapto error",
		logging.Any("title", e.Title),
		logging.Any("message", e.Message),
		logging.Any("context", e.Context),
		logging.Any(logging.FieldErrorHint, e.Suggestion),
	)
}

func (r *logReporter) OperationComplete(message string) {
	r.logger.Debug("drapto operation complete", logging.String("message", message))
}

func (r *logReporter) BatchStarted(s draptolib.BatchStartInfo) {
	r.logger.Debug("drapto batch started", logging.Any("files", s.TotalFiles))
}

func (r *logReporter) FileProgress(s draptolib.FileProgressContext) {
	r.logger.Debug("drapto file progress", logging.Any("current", s.CurrentFile), logging.Any("total", s.TotalFiles))
}

func (r *logReporter) BatchComplete(s draptolib.BatchSummary) {
	r.logger.Debug("drapto batch complete", logging.Any("successful", s.SuccessfulCount), logging.Any("total", s.TotalFiles))
}

var _ draptolib.Reporter = (*logReporter)(nil)
