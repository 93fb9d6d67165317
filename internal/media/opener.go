package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"stackreel/internal/logging"
	"stackreel/internal/media/ffprobe"
	"stackreel/internal/services"
)

// Prober inspects a media file.
type Prober func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Opener opens media files for a render.
type Opener struct {
	FFprobe string
	Probe   Prober
	Logger  *slog.Logger
}

// NewOpener returns an opener that shells out to the given ffprobe binary.
func NewOpener(ffprobeBinary string, logger *slog.Logger) *Opener {
	return &Opener{FFprobe: ffprobeBinary, Probe: ffprobe.Inspect, Logger: logger}
}

// Source is an opened media file. The underlying file stays open until Close.
type Source struct {
	clip     *Clip
	hasVideo bool
	hasAudio bool

	closeOnce sync.Once
	closer    io.Closer
	closeErr  error
}

// NewSource wraps an already opened resource. Close is forwarded to closer.
func NewSource(clip *Clip, closer io.Closer, hasVideo, hasAudio bool) *Source {
	return &Source{clip: clip, closer: closer, hasVideo: hasVideo, hasAudio: hasAudio}
}

// Clip returns the untransformed handle for the file.
func (s *Source) Clip() *Clip { return s.clip }

func (s *Source) Name() string      { return s.clip.Name() }
func (s *Source) Path() string      { return s.clip.Path() }
func (s *Source) Duration() float64 { return s.clip.Duration() }
func (s *Source) HasVideo() bool    { return s.hasVideo }
func (s *Source) HasAudio() bool    { return s.hasAudio }

// Close releases the file. Repeated calls return the first result.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		if s.closer != nil {
			s.closeErr = s.closer.Close()
		}
	})
	return s.closeErr
}

// Open opens and probes path. Failures are ResourceErrors.
func (o *Opener) Open(ctx context.Context, path string) (*Source, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(o.Logger, "media"))
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrResource, "media", "open", fmt.Sprintf("open %s", path), err)
	}

	probe := o.Probe
	if probe == nil {
		probe = ffprobe.Inspect
	}
	result, err := probe(ctx, o.FFprobe, path)
	if err != nil {
		_ = file.Close()
		return nil, services.Wrap(services.ErrResource, "media", "probe", fmt.Sprintf("probe %s", path), err)
	}

	duration := result.DurationSeconds()
	if duration <= 0 {
		_ = file.Close()
		return nil, services.Wrap(services.ErrResource, "media", "probe", fmt.Sprintf("%s reports no duration", path), errors.New("duration unavailable"))
	}

	var width, height int
	video, hasVideo := result.VideoStream()
	if hasVideo {
		width, height = video.DisplaySize()
	}
	hasAudio := result.AudioStreamCount() > 0
	if !hasVideo && !hasAudio {
		_ = file.Close()
		return nil, services.Wrap(services.ErrResource, "media", "probe", fmt.Sprintf("%s has no audio or video streams", path), errors.New("no usable streams"))
	}

	clip := NewClip(filepath.Base(path), path, width, height, duration)
	logger.Debug("media opened",
		logging.String("path", path),
		logging.Int("width", width),
		logging.Int("height", height),
		logging.Seconds("duration_seconds", duration),
		logging.Bool("audio", hasAudio),
	)
	return NewSource(clip, file, hasVideo, hasAudio), nil
}
