package layout

import (
	"fmt"

	"stackreel/internal/services"
)

// InsufficientSourceError reports a composition the sources cannot fill.
type InsufficientSourceError struct {
	Clip      string
	Reason    string
	Attempted Size
	Fallback  Size
}

func (e *InsufficientSourceError) Error() string {
	msg := "insufficient source"
	if e.Clip != "" {
		msg += fmt.Sprintf(" %q", e.Clip)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Attempted != (Size{}) {
		msg += fmt.Sprintf(" (attempted %s", e.Attempted)
		if e.Fallback != (Size{}) {
			msg += fmt.Sprintf(", fallback %s", e.Fallback)
		}
		msg += ")"
	}
	return msg
}

func (e *InsufficientSourceError) Is(target error) bool {
	return target == services.ErrInsufficientSource
}

func configError(operation, message string) error {
	return services.Wrap(services.ErrConfiguration, "plan", operation, message, nil)
}
