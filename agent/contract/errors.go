package contract

import "errors"

var (
	// ErrCompletion wraps completion-service failures (unreachable, timeout,
	// malformed payload). Turns failing with it are safe to retry.
	ErrCompletion = errors.New("completion service failed")

	ErrValidation   = errors.New("validation failed")
	ErrEmptyMessage = errors.New("message is required")
	ErrUnknownFlag  = errors.New("unknown feature flag")
	ErrNoLeads      = errors.New("no leads to export")
)
