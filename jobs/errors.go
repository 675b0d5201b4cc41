package jobs

import (
	"fmt"
	"time"
)

// TimeoutError reports that an operation did not reach a terminal state
// before the wait deadline.
type TimeoutError struct {
	OperationID string
	Elapsed     time.Duration
	Timeout     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %s did not finish within %s (waited %s)", e.OperationID, e.Timeout, e.Elapsed)
}

// FailedError reports an operation that ended in the failed state. Detail
// carries the server-reported reason.
type FailedError struct {
	OperationID string
	Detail      string
}

func (e *FailedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("operation %s failed", e.OperationID)
	}
	return fmt.Sprintf("operation %s failed: %s", e.OperationID, e.Detail)
}

// CancelledError reports an operation that ended in the cancelled state.
type CancelledError struct {
	OperationID string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("operation %s was cancelled", e.OperationID)
}
