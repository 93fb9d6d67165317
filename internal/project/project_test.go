package project_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"stackreel/internal/project"
	"stackreel/internal/services"
	"stackreel/internal/testsupport"
)

const sampleProject = `
output = "final.mp4"
audio = "out.mp3"
subtitles = "out.vtt"
corrected_text = "transcript.txt"

[[sources]]
path = "source/a.mp4"
weight = 39
zoom = 1.5

[[sources]]
path = "/abs/b.mp4"
weight = 60
start_offset = 2.5
`

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteText(t, dir, "reel.toml", sampleProject)

	p, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Name != "reel" {
		t.Fatalf("expected name from file, got %q", p.Name)
	}
	if p.Output != filepath.Join(dir, "final.mp4") || p.Subtitles != filepath.Join(dir, "out.vtt") {
		t.Fatalf("paths not resolved: %+v", p)
	}
	if p.Sources[0].Path != filepath.Join(dir, "source", "a.mp4") || p.Sources[1].Path != "/abs/b.mp4" {
		t.Fatalf("unexpected source paths %+v", p.Sources)
	}
	if p.Sources[0].Zoom != 1.5 || p.Sources[1].Zoom != 1 || p.Sources[1].StartOffset != 2.5 {
		t.Fatalf("unexpected source settings %+v", p.Sources)
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := project.Decode([]byte("output = \"a.mp4\"\nwieght = 3\n"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestValidateCompanionFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := testsupport.NewConfig(t, testsupport.WithCaptions(true))
	cfg.Captions.Reconcile = true

	path := testsupport.WriteText(t, dir, "reel.toml", sampleProject)
	p, err := project.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	err = p.Validate(cfg)
	if !errors.Is(err, services.ErrConfiguration) || !strings.Contains(err.Error(), "subtitles") {
		t.Fatalf("expected missing subtitles error, got %v", err)
	}

	testsupport.WriteText(t, dir, "out.vtt", "WEBVTT\n")
	err = p.Validate(cfg)
	if !errors.Is(err, services.ErrConfiguration) || !strings.Contains(err.Error(), "corrected_text") {
		t.Fatalf("expected missing corrected text error, got %v", err)
	}

	testsupport.WriteText(t, dir, "transcript.txt", "Hi.")
	if err := p.Validate(cfg); err != nil {
		t.Fatalf("expected valid project, got %v", err)
	}

	cfg.Captions.Enabled = false
	p.Subtitles = ""
	if err := p.Validate(cfg); err != nil {
		t.Fatalf("captions disabled should not need subtitles: %v", err)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	tests := map[string]string{
		"no sources": "output = \"a.mp4\"\naudio = \"a.mp3\"\n",
		"no output":  "audio = \"a.mp3\"\n[[sources]]\npath = \"a.mp4\"\n",
		"no audio":   "output = \"a.mp4\"\n[[sources]]\npath = \"a.mp4\"\n",
		"negative":   "output = \"a.mp4\"\naudio = \"a.mp3\"\nlimit_seconds = -1.0\n[[sources]]\npath = \"a.mp4\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := project.Decode([]byte(body))
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if err := p.Validate(nil); !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestLimitAndRatioOverrides(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p, err := project.Decode([]byte("aspect = \"16:9\"\nlimit_seconds = 0.0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Limit(cfg); got != 0 {
		t.Fatalf("expected explicit zero limit, got %v", got)
	}
	ratio, err := p.TargetRatio(cfg)
	if err != nil || ratio <= 1 {
		t.Fatalf("expected landscape ratio, got %v (%v)", ratio, err)
	}

	plain := &project.Project{}
	if got := plain.Limit(cfg); got != cfg.Encoder.LimitSeconds {
		t.Fatalf("expected config limit, got %v", got)
	}
	ratio, err = plain.TargetRatio(cfg)
	if err != nil || ratio != 9.0/16.0 {
		t.Fatalf("expected config ratio, got %v (%v)", ratio, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := project.Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, services.ErrResource) {
		t.Fatalf("expected ErrResource, got %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	body := `{"name":"reel","output":"out/reel.mp4","audio":"/abs/voice.m4a","sources":[{"path":"a.mp4","weight":9}]}`
	p, err := project.DecodeJSON([]byte(body), "/work")
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if p.Output != filepath.Join("/work", "out/reel.mp4") || p.Audio != "/abs/voice.m4a" {
		t.Fatalf("unexpected paths: %+v", p)
	}
	if p.Sources[0].Path != "/work/a.mp4" || p.Sources[0].Zoom != 1 {
		t.Fatalf("unexpected source: %+v", p.Sources[0])
	}

	_, err = project.DecodeJSON([]byte(`{"output":"x","bogus":1}`), "/work")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("unknown field error = %v, want ErrConfiguration", err)
	}
}
