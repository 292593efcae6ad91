package db

import "errors"

var (
	// ErrNotFound marks a lookup or delete of an id the store does not hold.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable wraps transient backend failures. It is the only
	// store error callers may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
