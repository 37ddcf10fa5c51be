package config

import "errors"

var (
	// ErrConfigNotFound is returned when the config file doesn't exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidYAML is returned when the config file has invalid YAML.
	ErrInvalidYAML = errors.New("invalid YAML in configuration file")

	// ErrNoBaseURL is returned when no backend URL is configured.
	ErrNoBaseURL = errors.New("api.base_url cannot be empty")

	// ErrInvalidFullInterval is returned for a non-positive full refresh interval.
	ErrInvalidFullInterval = errors.New("monitoring.full_interval must be > 0")

	// ErrInvalidSessionsInterval is returned for a non-positive sessions refresh interval.
	ErrInvalidSessionsInterval = errors.New("monitoring.sessions_interval must be > 0")

	// ErrInvalidDisplayMode is returned for an unknown display mode.
	ErrInvalidDisplayMode = errors.New("invalid display mode: must be dashboard, simple, or json")

	// ErrInvalidPageSize is returned for a non-positive page size.
	ErrInvalidPageSize = errors.New("display.page_size must be > 0")

	// ErrInvalidLogLevel is returned for an unknown log level.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned for an unknown log format.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrWatcherClosed is returned when starting a closed watcher.
	ErrWatcherClosed = errors.New("config watcher is closed")

	// ErrAlreadyWatching is returned when the watcher is already running.
	ErrAlreadyWatching = errors.New("config watcher already started")
)
