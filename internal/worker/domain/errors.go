package domain

import "errors"

var (
	// ErrAlreadyClaimed is returned when the notification is missing or not pending
	ErrAlreadyClaimed = errors.New("notification already claimed or not in pending status")

	// ErrRejected is returned when the receiving endpoint refuses the notification outright
	ErrRejected = errors.New("notification rejected by receiver")

	// ErrMaxRetriesExceeded is returned when a notification has used all its delivery attempts
	ErrMaxRetriesExceeded = errors.New("max delivery attempts exceeded")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
