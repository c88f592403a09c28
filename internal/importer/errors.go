package importer

import (
	"errors"
	"fmt"
	"strings"
)

var ErrStackNotFound = errors.New("source stack not found")

// StatusFailedError is returned when the service reports a terminal failure.
type StatusFailedError struct {
	Operation string
	Reason    string
}

func (e StatusFailedError) Error() string {
	reason := strings.TrimSpace(e.Reason)
	if reason == "" {
		return fmt.Sprintf("%s failed", e.Operation)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, reason)
}

// StatusTimeoutError is returned when polling ran out of attempts.
type StatusTimeoutError struct {
	Operation string
	Attempts  int
}

func (e StatusTimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %d attempt(s)", e.Operation, e.Attempts)
}
