package valkit

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the sentinel every configuration error wraps.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentError records a rejected constructor or setter argument and
// the operation that rejected it.
type InvalidArgumentError struct {
	Op  string
	Msg string
}

// Error implements the error interface
func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// Unwrap returns ErrInvalidArgument
func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// NewInvalidArgumentError creates an InvalidArgumentError with a formatted message.
func NewInvalidArgumentError(op, format string, args ...any) *InvalidArgumentError {
	return &InvalidArgumentError{
		Op:  op,
		Msg: fmt.Sprintf(format, args...),
	}
}

// IsInvalidArgument reports whether err is a configuration error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
