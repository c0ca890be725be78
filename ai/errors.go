package ai

import "errors"

var (
	// ErrEmptyCompletion is returned when a completion service returns no choices.
	ErrEmptyCompletion = errors.New("completion returned no choices")

	// ErrInvalidMaxAttempts is returned when RetryWithBackoff is called with maxAttempts <= 0.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrUnknownProvider is returned when the configured completion provider is not supported.
	ErrUnknownProvider = errors.New("unknown completion provider")
)
