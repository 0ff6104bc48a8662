package store

import "errors"

var (
	// ErrNotFound indicates the referenced document does not exist
	ErrNotFound = errors.New("document not found")

	// ErrUnavailable indicates the store could not be reached or a write
	// was not acknowledged
	ErrUnavailable = errors.New("store unavailable")

	// ErrPermissionDenied indicates the store rejected the operation
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTxRetryExhausted indicates a transaction kept conflicting after
	// all internal retries
	ErrTxRetryExhausted = errors.New("transaction retries exhausted")
)

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailable checks if an error is a store availability error.
// Exhausted transaction retries surface as unavailability: the caller can
// only try again later.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTxRetryExhausted)
}

// IsPermissionDenied checks if an error is an authorization rejection
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}
