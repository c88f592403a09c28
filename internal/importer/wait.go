package importer

import (
	"context"
	"time"
)

const (
	statusSuccess    = "Success"
	statusFailed     = "Failed"
	statusPending    = "Pending"
	statusInProgress = "InProgress"

	// deadlineMargin is kept free before the invocation deadline so a timeout
	// is still reported in the response body.
	deadlineMargin = 5 * time.Second
)

// statusCheck returns the current status and, for failures, the service message.
type statusCheck func(ctx context.Context) (status string, reason string, err error)

func (i *Importer) waitFor(ctx context.Context, operation string, check statusCheck) error {
	for attempt := 1; attempt <= i.settings.MaxAttempts; attempt++ {
		status, reason, err := check(ctx)
		if err != nil {
			return err
		}
		switch status {
		case statusSuccess:
			return nil
		case statusFailed:
			return StatusFailedError{Operation: operation, Reason: reason}
		case statusPending, statusInProgress:
			i.log.Debug("waiting for status", "operation", operation, "status", status, "attempt", attempt)
		default:
			i.log.Warn("unexpected status", "operation", operation, "status", status, "attempt", attempt)
		}
		if attempt == i.settings.MaxAttempts {
			break
		}
		if !fitsDeadline(ctx, i.settings.PollInterval) {
			i.log.Warn("stopping before invocation deadline", "operation", operation, "attempt", attempt)
			return StatusTimeoutError{Operation: operation, Attempts: attempt}
		}
		if err := i.sleep(ctx, i.settings.PollInterval); err != nil {
			return err
		}
	}
	return StatusTimeoutError{Operation: operation, Attempts: i.settings.MaxAttempts}
}

// fitsDeadline reports whether sleeping d still leaves deadlineMargin before
// the context deadline. Contexts without a deadline always fit.
func fitsDeadline(ctx context.Context, d time.Duration) bool {
	deadline, ok := ctx.Deadline()
	if !ok {
		return true
	}
	return time.Until(deadline)-deadlineMargin > d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
