package engine

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeNotAFuture indicates a value that is not a registered future
	// was passed where a future handle is required.
	ErrCodeNotAFuture ErrorCode = "NOT_A_FUTURE"

	// ErrCodeReleased indicates an operation on a future whose record was
	// explicitly released back to the arena.
	ErrCodeReleased ErrorCode = "RELEASED"

	// ErrCodeBadOperand indicates an operand that cannot be coerced into
	// a pending value.
	ErrCodeBadOperand ErrorCode = "BAD_OPERAND"

	// ErrCodeBadDescriptor indicates a defineProperty operand that is not
	// a property descriptor.
	ErrCodeBadDescriptor ErrorCode = "BAD_DESCRIPTOR"
)

// Error is a structured engine error. Deferred operation failures are
// not wrapped in Error: whatever error settled the chain propagates
// unchanged to every downstream consumer.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Op names the intercepted operation, when one is involved.
	Op OpKind

	// Key is the property key, for property operations.
	Key string
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Key != "":
		return fmt.Sprintf("future: %s %s %q: %s", e.Code, e.Op, e.Key, e.Message)
	case e.Op != "":
		return fmt.Sprintf("future: %s %s: %s", e.Code, e.Op, e.Message)
	default:
		return fmt.Sprintf("future: %s: %s", e.Code, e.Message)
	}
}

// Is matches another *Error by code, so callers can test categories with
// errors.Is(err, &Error{Code: ErrCodeNotAFuture}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// ErrNotAFuture is the sentinel for errors.Is checks.
var ErrNotAFuture = &Error{Code: ErrCodeNotAFuture, Message: "value is not a future"}

// ErrReleased is the sentinel for errors.Is checks.
var ErrReleased = &Error{Code: ErrCodeReleased, Message: "future was released"}
