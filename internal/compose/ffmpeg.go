package compose

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"stackreel/internal/logging"
	"stackreel/internal/services"
)

// Encoder writes a timeline to a file.
type Encoder interface {
	Encode(ctx context.Context, t Timeline, out Output) (Result, error)
}

// Result describes a finished encode.
type Result struct {
	Path     string
	Bytes    int64
	Duration float64
	Elapsed  time.Duration
}

type commandRunner func(ctx context.Context, name string, args ...string) error

// FFmpeg encodes timelines with the ffmpeg binary.
type FFmpeg struct {
	binary string
	logger *slog.Logger
	run    commandRunner
}

// NewFFmpeg returns an encoder that invokes binary ("ffmpeg" when empty).
func NewFFmpeg(binary string, logger *slog.Logger) *FFmpeg {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "compose"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner overrides command execution (used in tests).
func (f *FFmpeg) WithCommandRunner(r commandRunner) {
	if f == nil || r == nil {
		return
	}
	f.run = r
}

// Encode renders t into a temporary file beside out.Path and renames it into
// place once ffmpeg succeeds. A failed encode leaves no partial output.
func (f *FFmpeg) Encode(ctx context.Context, t Timeline, out Output) (Result, error) {
	if f == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "encode", "ffmpeg", "encoder unavailable", nil)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	target := out.Path
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrResource, "encode", "create output dir", dir, err)
	}
	base := filepath.Base(target)
	ext := filepath.Ext(base)
	tmpPath := filepath.Join(dir, ".render-"+strings.TrimSuffix(base, ext)+".tmp"+ext)

	staged := out
	staged.Path = tmpPath
	args, err := BuildArgs(t, staged)
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "encode", "build arguments", "", err)
	}

	logger := logging.WithContext(ctx, f.logger)
	logger.Info("encoding output",
		logging.String("output", target),
		logging.Dimensions("resolution", t.Plan.Resolution.Width, t.Plan.Resolution.Height),
		logging.Seconds("duration_seconds", t.Duration()),
		logging.Int("caption_pages", len(t.VisiblePages())),
	)
	logger.Debug("ffmpeg command", logging.String("binary", f.binary), logging.String("args", strings.Join(args, " ")))

	started := time.Now()
	if err := f.run(ctx, f.binary, args...); err != nil {
		_ = os.Remove(tmpPath)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "encode", "ffmpeg", "encoding failed", err)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "encode", "ffmpeg", "output file missing", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return Result{}, services.Wrap(services.ErrResource, "encode", "finalize output", target, err)
	}

	result := Result{
		Path:     target,
		Bytes:    info.Size(),
		Duration: t.Duration(),
		Elapsed:  time.Since(started),
	}
	logger.Info("output written",
		logging.String("output", target),
		logging.Int64("bytes", result.Bytes),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, tail(string(output), 2000))
	}
	return nil
}

// tail keeps the end of ffmpeg's output, where the failure reason is printed.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
