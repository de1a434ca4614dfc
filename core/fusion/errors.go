package fusion

import (
	"errors"
	"fmt"
)

// ErrInput is matched by every *InputError via errors.Is.
var ErrInput = errors.New("invalid input")

// InputError rejects a request before any scanning or search happens.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Is(target error) bool { return target == ErrInput }

func inputErr(field, format string, a ...any) *InputError {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, a...)}
}

// NewInputError builds an *InputError for callers outside this package.
func NewInputError(field, format string, a ...any) error { return inputErr(field, format, a...) }
