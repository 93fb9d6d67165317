package services

import (
	"errors"
	"strings"

	"stackreel/internal/history"
)

// Failure classes. Every error returned from a render carries one of these.
var (
	ErrConfiguration      = errors.New("configuration error")
	ErrInsufficientSource = errors.New("insufficient source")
	ErrResource           = errors.New("resource error")
	ErrReconciliation     = errors.New("reconciliation error")
	ErrExternalTool       = errors.New("external tool error")
)

// Error is a classified failure raised at a named stage and operation.
type Error struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Marker.Error())
	b.WriteString(": ")
	b.WriteString(e.detail())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

func (e *Error) detail() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Stage, e.Operation, e.Message} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// Wrap classifies err with marker and the stage and operation that raised it.
// A nil marker means ErrExternalTool.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrExternalTool
	}
	return &Error{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Err:       err,
	}
}

// StageOf returns the stage of the outermost classified error in err's chain.
func StageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// FailureStatus maps a render error to the history status persisted for the run.
// Input problems the user must fix are rejected; everything else failed.
func FailureStatus(err error) history.Status {
	switch {
	case errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrInsufficientSource),
		errors.Is(err, ErrReconciliation):
		return history.StatusRejected
	default:
		return history.StatusFailed
	}
}
