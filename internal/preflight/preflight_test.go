package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stackreel/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckReadableFile(t *testing.T) {
	dir := t.TempDir()
	font := filepath.Join(dir, "font.ttf")
	if err := os.WriteFile(font, []byte("ttf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckReadableFile("font", font); !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
	if r := CheckReadableFile("font", dir); r.Passed {
		t.Fatal("expected failure for directory")
	}
	if r := CheckReadableFile("font", filepath.Join(dir, "missing.ttf")); r.Passed {
		t.Fatal("expected failure for missing file")
	}
}

func stubFilters(t *testing.T, out string, err error) {
	t.Helper()
	prev := filterRunner
	filterRunner = func(context.Context, string) ([]byte, error) { return []byte(out), err }
	t.Cleanup(func() { filterRunner = prev })
}

func TestCheckFilter(t *testing.T) {
	listing := "Filters:\n T.C drawtext          V->V       Draw text on top of video frames using libfreetype library.\n ... vstack            N->V       Stack video inputs vertically.\n"
	tests := []struct {
		name   string
		out    string
		err    error
		filter string
		pass   bool
	}{
		{name: "present", out: listing, filter: "drawtext", pass: true},
		{name: "absent", out: listing, filter: "subtitles"},
		{name: "command fails", err: errors.New("exit status 1"), filter: "drawtext"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubFilters(t, tt.out, tt.err)
			if got := CheckFilter(context.Background(), "ffmpeg", tt.filter); got.Passed != tt.pass {
				t.Fatalf("passed = %v, want %v (%s)", got.Passed, tt.pass, got.Detail)
			}
		})
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func minimalConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.WorkDir = base
	cfg.Paths.OutputDir = base
	cfg.Paths.LogDir = base
	cfg.Paths.HistoryDB = filepath.Join(base, "history.db")
	cfg.Captions.Enabled = false
	return &cfg
}

func TestRunAll_MinimalConfig(t *testing.T) {
	results := RunAll(context.Background(), minimalConfig(t))
	// work, output, log and history directories
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if Failed(results) {
		t.Fatalf("unexpected failure: %+v", results)
	}
}

func TestRunAll_CaptionsAddFilterAndFontChecks(t *testing.T) {
	stubFilters(t, " T.C drawtext V->V Draw text\n", nil)
	cfg := minimalConfig(t)
	cfg.Captions.Enabled = true
	cfg.Captions.FontFile = filepath.Join(t.TempDir(), "missing.ttf")
	cfg.Archive.Enabled = true
	cfg.Archive.Dir = t.TempDir()

	results := RunAll(context.Background(), cfg)
	names := map[string]Result{}
	for _, r := range results {
		names[r.Name] = r
	}
	if !names["FFmpeg drawtext filter"].Passed {
		t.Fatalf("drawtext check missing or failed: %+v", results)
	}
	if r, ok := names["Caption font"]; !ok || r.Passed {
		t.Fatalf("expected failing font check, got %+v", r)
	}
	if _, ok := names["Archive directory"]; !ok {
		t.Fatal("expected archive directory check")
	}
	if !Failed(results) {
		t.Fatal("Failed should report the missing font")
	}
}
