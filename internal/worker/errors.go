package worker

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnavailable completes every call that was pending when the worker
	// process died. Fail-fast: a known-dead worker must not leave callers
	// waiting out their individual timeouts.
	ErrUnavailable = errors.New("worker: process exited while call was pending")

	// ErrClosed completes pending calls when the client is shut down, and
	// rejects calls made afterwards.
	ErrClosed = errors.New("worker: client closed")
)

// TimeoutError reports that no reply arrived within the call deadline.
type TimeoutError struct {
	Method  string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("worker: call %q timed out after %s", e.Method, e.Elapsed.Round(time.Millisecond))
}

// StartupError reports that the worker process could not be spawned at all,
// as opposed to dying later. Callers see it immediately rather than as a
// timeout.
type StartupError struct {
	Command string
	Err     error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("worker: failed to start %q: %v", e.Command, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }
