package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies why a ledger operation was rejected.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindStore
)

// Sentinels for errors.Is. Every *Error matches exactly one of them.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("store failure")
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindConflict:
		return ErrConflict
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrStore
	}
}

// Error is returned by every failing ledger operation. Field names the
// offending input when one can be singled out.
type Error struct {
	Kind  Kind
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the kind of a ledger error, or KindStore for any other error.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindStore
}

func validationError(field, format string, args ...any) error {
	return &Error{Kind: KindValidation, Field: field, Err: fmt.Errorf(format, args...)}
}

func conflictError(field, format string, args ...any) error {
	return &Error{Kind: KindConflict, Field: field, Err: fmt.Errorf(format, args...)}
}

func notFoundError(field, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Field: field, Err: fmt.Errorf(format, args...)}
}

func storeError(op string, err error) error {
	return &Error{Kind: KindStore, Err: fmt.Errorf("failed to %s: %w", op, err)}
}
