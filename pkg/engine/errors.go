package engine

import "errors"

var (
	// ErrNilClient is returned when no snapshot client is provided.
	ErrNilClient = errors.New("snapshot client cannot be nil")

	// ErrEngineClosed is returned when using a closed engine.
	ErrEngineClosed = errors.New("engine is closed")

	// ErrEngineRunning is returned when starting an already-running engine.
	ErrEngineRunning = errors.New("engine is already running")

	// ErrEngineNotRunning is returned when stopping a stopped engine.
	ErrEngineNotRunning = errors.New("engine is not running")

	// ErrStaleSnapshot is returned when a fetch completes after a newer
	// fetch has been issued; the result is discarded.
	ErrStaleSnapshot = errors.New("stale snapshot discarded")
)
