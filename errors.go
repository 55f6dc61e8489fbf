package memorial

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or decoded value failed validation.
	ErrValidation = errors.New("validation error")

	// ErrEmptyInput indicates a send was attempted with blank input.
	ErrEmptyInput = errors.New("empty input")

	// ErrBusy indicates a send was attempted while another is in flight.
	ErrBusy = errors.New("send already in flight")

	// ErrNoSession indicates there is no current session to send into.
	ErrNoSession = errors.New("no current session")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)
