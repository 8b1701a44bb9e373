package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrStoreUnconfigured is returned by write paths of the no-op store
	// that backs the app when no database DSN is configured. Read paths
	// stay renderable (empty results) instead of failing.
	ErrStoreUnconfigured = errors.New("store not configured")
)
