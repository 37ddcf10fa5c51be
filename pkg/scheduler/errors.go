package scheduler

import "errors"

var (
	// ErrSchedulerClosed is returned when starting a closed scheduler.
	ErrSchedulerClosed = errors.New("scheduler is closed")

	// ErrInvalidInterval is returned when the tick interval is <= 0.
	ErrInvalidInterval = errors.New("invalid tick interval: must be > 0")

	// ErrNilTickFunc is returned when no tick callback is provided.
	ErrNilTickFunc = errors.New("tick callback cannot be nil")
)
