package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"stackreel/internal/history"
	"stackreel/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "encode", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"encode", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarkerDefaultsToExternalTool(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestFailureStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want history.Status
	}{
		{"configuration", services.Wrap(services.ErrConfiguration, "layout", "plan", "ratio", nil), history.StatusRejected},
		{"insufficient", services.Wrap(services.ErrInsufficientSource, "layout", "plan", "tiny", nil), history.StatusRejected},
		{"reconciliation", services.Wrap(services.ErrReconciliation, "captions", "reconcile", "drift", nil), history.StatusRejected},
		{"resource", services.Wrap(services.ErrResource, "media", "open", "missing", errors.New("io")), history.StatusFailed},
		{"nil", nil, history.StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.FailureStatus(tc.err); got != tc.want {
				t.Fatalf("FailureStatus() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestStageOfFindsWrappedError(t *testing.T) {
	inner := services.Wrap(services.ErrResource, "open", "probe", "a.mp4", errors.New("no such file"))
	outer := fmt.Errorf("render demo: %w", inner)
	if got := services.StageOf(outer); got != "open" {
		t.Fatalf("StageOf() = %q, want open", got)
	}
	if got := services.StageOf(errors.New("plain")); got != "" {
		t.Fatalf("StageOf(plain) = %q", got)
	}
	if !errors.Is(outer, services.ErrResource) {
		t.Fatal("marker lost through fmt wrapping")
	}
}
