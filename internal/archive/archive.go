package archive

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	draptolib "github.com/five82/drapto"

	"stackreel/internal/logging"
	"stackreel/internal/services"
)

// Archiver writes an archival copy of a rendered file and returns its path.
type Archiver interface {
	Archive(ctx context.Context, inputPath string) (string, error)
}

type encodeFunc func(ctx context.Context, inputPath, outputDir string, rep draptolib.Reporter) error

// Drapto archives renders with the drapto AV1 encoder.
type Drapto struct {
	dir    string
	logger *slog.Logger
	encode encodeFunc
}

// NewDrapto returns an archiver writing into dir.
func NewDrapto(dir string, logger *slog.Logger) *Drapto {
	return &Drapto{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "archive"),
		encode: libraryEncode,
	}
}

// WithEncoder overrides the drapto call (used in tests).
func (d *Drapto) WithEncoder(fn func(ctx context.Context, inputPath, outputDir string, rep draptolib.Reporter) error) {
	if d == nil || fn == nil {
		return
	}
	d.encode = fn
}

// Archive encodes inputPath into the archive directory as <stem>.mkv.
func (d *Drapto) Archive(ctx context.Context, inputPath string) (string, error) {
	if d == nil {
		return "", nil
	}
	if strings.TrimSpace(inputPath) == "" {
		return "", services.Wrap(services.ErrConfiguration, "archive", "drapto", "input path required", nil)
	}
	if strings.TrimSpace(d.dir) == "" {
		return "", services.Wrap(services.ErrConfiguration, "archive", "drapto", "archive.dir is not set", nil)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrResource, "archive", "create dir", d.dir, err)
	}

	logger := logging.WithContext(ctx, d.logger)
	logger.Info("archiving render", logging.String("input", inputPath), logging.String("archive_dir", d.dir))
	if err := d.encode(ctx, inputPath, d.dir, newLogReporter(logger)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", services.Wrap(services.ErrExternalTool, "archive", "drapto encode",
			"AV1 archival encode failed; the primary output is unaffected", err)
	}

	out := OutputPath(d.dir, inputPath)
	if _, err := os.Stat(out); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", services.Wrap(services.ErrExternalTool, "archive", "drapto encode", "encoder produced no output at "+out, err)
		}
		return "", services.Wrap(services.ErrResource, "archive", "stat output", out, err)
	}
	logger.Info("archive written", logging.String("archive_path", out))
	return out, nil
}

// OutputPath returns where drapto places the encode of inputPath.
func OutputPath(dir, inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(strings.TrimSpace(dir), stem+".mkv")
}

func libraryEncode(ctx context.Context, inputPath, outputDir string, rep draptolib.Reporter) error {
	encoder, err := draptolib.New(draptolib.WithResponsive())
	if err != nil {
		return err
	}
	_, err = encoder.EncodeWithReporter(ctx, inputPath, outputDir, rep)
	return err
}

var _ Archiver = (*Drapto)(nil)
