package history

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a render.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	// StatusRejected marks renders stopped by invalid input rather than a tool failure.
	StatusRejected Status = "rejected"
)

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusRunning, StatusSucceeded, StatusFailed, StatusRejected}
}

// ParseStatus resolves a status name case-insensitively.
func ParseStatus(value string) (Status, bool) {
	v := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, s := range Statuses() {
		if s == v {
			return s, true
		}
	}
	return "", false
}

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusRejected
}

// Render is one recorded render run.
type Render struct {
	ID              int64     `json:"id"`
	SessionID       string    `json:"session_id"`
	Project         string    `json:"project"`
	Output          string    `json:"output"`
	Status          Status    `json:"status"`
	Stage           string    `json:"stage,omitempty"`
	Resolution      string    `json:"resolution,omitempty"`
	DurationSeconds float64   `json:"duration_seconds,omitempty"`
	Sources         int       `json:"sources"`
	Pages           int       `json:"pages"`
	Warnings        []string  `json:"warnings,omitempty"`
	ErrorMessage    string    `json:"error,omitempty"`
	OutputBytes     int64     `json:"output_bytes,omitempty"`
	ArchivePath     string    `json:"archive_path,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at,omitempty"`
}

// Elapsed returns the wall time of a finished render, or zero while running.
func (r Render) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome carries the fields written when a render finishes.
type Outcome struct {
	Status          Status
	Stage           string
	Resolution      string
	DurationSeconds float64
	Pages           int
	Warnings        []string
	Err             error
	OutputBytes     int64
	ArchivePath     string
}

// ListOptions filters List results.
type ListOptions struct {
	Statuses []Status
	Limit    int
}
