package main

import (
	"fmt"
	"strings"
	"testing"

	"stackreel/internal/deps"
	"stackreel/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "FFmpeg:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "FFmpeg", Available: true, Version: "ffmpeg version 7.1"},
		{Name: "FFprobe", Available: false},
		{Name: "Drapto", Available: false, Optional: true, Detail: "not configured"},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "[OK] Ready (ffmpeg version 7.1)") {
		t.Fatalf("unexpected ready line %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR] not available") {
		t.Fatalf("unexpected missing line %q", lines[1])
	}
	if !strings.Contains(lines[2], "[WARN] not configured") {
		t.Fatalf("unexpected optional line %q", lines[2])
	}
	if !strings.Contains(lines[3], "FFprobe, Drapto") {
		t.Fatalf("unexpected summary line %q", lines[3])
	}
	if !missingRequired(statuses) {
		t.Fatal("expected missing required dependency")
	}
}

func TestCheckLines(t *testing.T) {
	lines := checkLines([]preflight.Result{
		{Name: "Work directory", Passed: true, Detail: "/tmp (read/write ok)"},
		{Name: "Caption font", Detail: "/nope (error: missing)"},
	}, false)
	if !strings.Contains(lines[0], "[OK]") || !strings.Contains(lines[1], "[ERROR]") {
		t.Fatalf("unexpected lines %v", lines)
	}
}

func TestStatusReportSeparatesSections(t *testing.T) {
	var buf strings.Builder
	report := newStatusReport(&buf)
	report.section("One", []string{"a"})
	report.section("Two", []string{"b"})
	want := "== One ==\n---------\na\n\n== Two ==\n---------\nb\n"
	if buf.String() != want {
		t.Fatalf("report mismatch\n got: %q\nwant: %q", buf.String(), want)
	}
}
