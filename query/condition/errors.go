package condition

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a builder receives a structurally
	// wrong value: an unsupported literal type, a nil node, an empty list.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidCondition is returned when an operand has the right shape but
	// a value type the operation cannot accept.
	ErrInvalidCondition = errors.New("invalid condition")
)

// Error describes a rejected construction step.
type Error struct {
	Op     string
	Err    error
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("condition %s: %v: %s", e.Op, e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalidArgument(op, format string, args ...any) error {
	return &Error{Op: op, Err: ErrInvalidArgument, Detail: fmt.Sprintf(format, args...)}
}

func invalidCondition(op, format string, args ...any) error {
	return &Error{Op: op, Err: ErrInvalidCondition, Detail: fmt.Sprintf(format, args...)}
}
