package provider

import (
	"errors"
	"fmt"
)

// Error is an upstream provider failure. Status carries the upstream HTTP
// status when one was observed; it is 0 for transport-level failures. Callers
// branch on Status, never on message text.
type Error struct {
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("provider: %s: upstream status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("provider: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusOf extracts the upstream status hint from err, or 0.
func StatusOf(err error) int {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Status
	}
	return 0
}
