package quiz

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching. Every InvalidStateError matches
// ErrInvalidState and every InvalidInputError matches ErrInvalidInput.
var (
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidStateError is returned when an operation is illegal for the
// session's current phase. The session is left unchanged.
type InvalidStateError struct {
	Op    string
	Phase Phase
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("quiz: %s not allowed in phase %s", e.Op, e.Phase)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// InvalidInputError is returned for out-of-range or malformed input.
// The session, if any, is left unchanged.
type InvalidInputError struct {
	Op     string
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("quiz: %s: invalid %s: %s", e.Op, e.Field, e.Reason)
	}
	return fmt.Sprintf("quiz: invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }
