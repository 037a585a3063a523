package repository

import "errors"

var (
	// ErrUnexpectedStatus is the cause recorded for non-200 responses.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrFetchTimeout is returned when a request exceeds its deadline.
	ErrFetchTimeout = errors.New("fetch timed out")
	// ErrStoreUnavailable wraps failures talking to the visited store.
	ErrStoreUnavailable = errors.New("visited store unavailable")
)
