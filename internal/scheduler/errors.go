package scheduler

import "errors"

var (
	// ErrAlreadyRunning is returned by Start on a running scheduler.
	ErrAlreadyRunning = errors.New("scheduler: already running")

	// ErrShutdownTimeout is returned by Stop when in-flight work outlives
	// the shutdown grace period.
	ErrShutdownTimeout = errors.New("scheduler: in-flight work did not finish within grace period")
)
