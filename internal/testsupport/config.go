package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"stackreel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "history.db")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Archive.Dir = filepath.Join(base, "archive")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCaptions toggles caption overlays.
func WithCaptions(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Captions.Enabled = enabled
	}
}

// WithLimit overrides the output duration limit.
func WithLimit(seconds float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Encoder.LimitSeconds = seconds
	}
}

// StubFFmpegScript answers -version and lists the drawtext filter, which is
// all doctor and preflight ask of ffmpeg.
const StubFFmpegScript = `#!/bin/sh
case "$1" in
  -version) echo "ffmpeg version 7.1-test" ;;
  *) echo " T.. drawtext          V->V       Draw text on top of video frames." ;;
esac
`

// WithStubFFmpeg writes script as bin/ffmpeg and bin/ffprobe under the test
// directory and points the encoder config at them. An empty script uses
// StubFFmpegScript.
func WithStubFFmpeg(script string) ConfigOption {
	return func(b *configBuilder) {
		if script == "" {
			script = StubFFmpegScript
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range []string{"ffmpeg", "ffprobe"} {
			if err := os.WriteFile(filepath.Join(binDir, name), []byte(script), 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		b.cfg.Encoder.FFmpegBinary = filepath.Join(binDir, "ffmpeg")
		b.cfg.Encoder.FFprobeBinary = filepath.Join(binDir, "ffprobe")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
