package contribution

import "errors"

// Sentinel errors for contribution operations, checked with errors.Is().
var (
	// ErrNotFound indicates the moderation target id is not in the
	// pending set. Reported to the caller, never fatal.
	ErrNotFound = errors.New("contribution not found")

	// ErrInvalidPayload indicates a submission without a question or
	// answer.
	ErrInvalidPayload = errors.New("invalid contribution payload")
)
