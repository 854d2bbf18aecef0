package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the deterministic failure modes of the graph engine.
// They are surfaced verbatim to the facade, which maps them to stable
// external codes; nothing in this core retries them.
var (
	// ErrNotFound indicates a referenced account id does not exist.
	ErrNotFound = errors.New("account not found")

	// ErrSelfFollow indicates follower and followee are the same account.
	ErrSelfFollow = errors.New("cannot follow yourself")

	// ErrDuplicateHandle indicates the handle is owned by another account.
	ErrDuplicateHandle = errors.New("handle already taken")
)

// InvalidFieldError reports a malformed field on create or update. The field
// name uses the external (JSON) spelling.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewInvalidField builds an InvalidFieldError.
func NewInvalidField(field, reason string) error {
	return &InvalidFieldError{Field: field, Reason: reason}
}

// IsInvalidField reports whether err is (or wraps) an InvalidFieldError.
func IsInvalidField(err error) bool {
	var ife *InvalidFieldError
	return errors.As(err, &ife)
}
