package prefs

import "errors"

var (
	// ErrNilPreferences is returned when saving a nil preferences value.
	ErrNilPreferences = errors.New("preferences cannot be nil")

	// ErrStoreClosed is returned when using a closed store.
	ErrStoreClosed = errors.New("preferences store is closed")
)
