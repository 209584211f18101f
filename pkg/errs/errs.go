// Package errs defines the failure kinds reported by the capture pipeline.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInvalidArgument Kind = iota + 1
	KindResourceUnavailable
	KindIOFailure
	KindCollisionExhausted
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrIOFailure           = errors.New("io failure")
	// ErrCollisionExhausted is never returned by the namer, whose search is unbounded.
	ErrCollisionExhausted = errors.New("collision exhausted")
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindResourceUnavailable:
		return "ResourceUnavailable"
	case KindIOFailure:
		return "IOFailure"
	case KindCollisionExhausted:
		return "CollisionExhausted"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindResourceUnavailable:
		return ErrResourceUnavailable
	case KindIOFailure:
		return ErrIOFailure
	case KindCollisionExhausted:
		return ErrCollisionExhausted
	}
	return nil
}

// Error carries the kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind.sentinel())
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func newError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Invalid reports an InvalidArgument failure with a formatted message.
func Invalid(op, format string, args ...interface{}) error {
	return newError(KindInvalidArgument, op, fmt.Errorf(format, args...))
}

// Unavailable reports a ResourceUnavailable failure.
func Unavailable(op string, err error) error {
	return newError(KindResourceUnavailable, op, err)
}

// IO wraps a filesystem or process failure.
func IO(op string, err error) error {
	return newError(KindIOFailure, op, err)
}

// KindOf returns the kind of the first *Error in the chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
