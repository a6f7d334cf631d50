package apperr

import "errors"

// Sentinel errors shared across the lifecycle engines. Services wrap these
// with fmt.Errorf("...: %w", ...) so callers can match with errors.Is and
// the HTTP layer can map them to status codes.
var (
	// ErrNotFound - a referenced subscription, offer, payment or
	// notification does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState - an operation was attempted against a terminal or
	// disallowed state (for example confirming a non-PENDING payment).
	ErrInvalidState = errors.New("invalid state")

	// ErrDuplicateSubscription - the customer already holds a subscription
	// to the same offer.
	ErrDuplicateSubscription = errors.New("duplicate subscription")

	// ErrValidation - malformed or missing request fields.
	ErrValidation = errors.New("validation failed")

	// ErrMessaging - a publish failed after the producer exhausted its
	// retries. The triggering operation must fail loudly.
	ErrMessaging = errors.New("messaging failure")

	// ErrConflict - a version-checked write lost the race to a concurrent
	// writer. Safe to retry against fresh state.
	ErrConflict = errors.New("concurrent modification")
)
