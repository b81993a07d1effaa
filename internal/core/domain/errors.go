package domain

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrMetricNotFound = errors.New("analytics entry not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrInvalidInput   = errors.New("invalid input")

	// ErrRequestInFlight means another request holding the same idempotency
	// key has not finished yet.
	ErrRequestInFlight = errors.New("request with this idempotency key is in progress")
)

// InputError describes a request that failed field validation. It matches
// ErrInvalidInput under errors.Is.
type InputError struct {
	Message string
}

// InvalidInput returns an *InputError carrying msg.
func InvalidInput(msg string) error {
	return &InputError{Message: msg}
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Message
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
