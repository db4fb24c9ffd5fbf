// Package errs provides the structured error taxonomy for the canvas engine.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies the category of an error.
type Kind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindDecode indicates a malformed or unreadable image source.
	KindDecode
	// KindFilterUnsupported indicates every filter strategy failed for a drawable.
	KindFilterUnsupported
	// KindDimensionConflict indicates an import whose size differs from the canvas.
	KindDimensionConflict
	// KindResizeBounds indicates a dimension that had to be clamped.
	KindResizeBounds
	// KindPersistence indicates a save or load failure in the persistence adapter.
	KindPersistence
	// KindBusy indicates a drawable already being mutated elsewhere.
	KindBusy
	// KindState indicates an operation not allowed in the current engine state.
	KindState
	// KindNotFound indicates a missing layer, preset or image reference.
	KindNotFound
	// KindInvalid indicates invalid caller input.
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindFilterUnsupported:
		return "filter-unsupported"
	case KindDimensionConflict:
		return "dimension-conflict"
	case KindResizeBounds:
		return "resize-bounds"
	case KindPersistence:
		return "persistence"
	case KindBusy:
		return "busy"
	case KindState:
		return "state"
	case KindNotFound:
		return "not-found"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Error is a categorised engine error.
type Error struct {
	// Op is the operation that failed (e.g. "importer.Import").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s [%s]", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error.
func E(op string, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Errorf builds an *Error with a formatted message as its cause.
func Errorf(op string, kind Kind, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
