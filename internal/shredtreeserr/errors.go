// Package shredtreeserr defines the error taxonomy shared by every
// shredtrees package: a small set of Kinds the CLI tools translate into
// exit codes, wrapped so errors.Is/errors.As keep working across package
// boundaries.
package shredtreeserr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error for exit-code mapping and programmatic checks.
type Kind int

const (
	// Unknown covers errors that did not originate in this taxonomy.
	Unknown Kind = iota
	// MalformedInput marks a SHIF-A or SCF-B stream that violates its framing grammar.
	MalformedInput
	// Incompatible marks inputs that cannot be combined, e.g. shreds produced with different hash methods.
	Incompatible
	// MatchesMismatch marks a report whose declared Matches count disagrees with its clique block count.
	MatchesMismatch
	// MissingFile marks a file referenced by a report that could not be read for extraction.
	MissingFile
	// IOError marks any other filesystem or stream failure.
	IOError
)

func (k Kind) String() string {
	switch k {
	case MalformedInput:
		return "MalformedInput"
	case Incompatible:
		return "Incompatible"
	case MatchesMismatch:
		return "MatchesMismatch"
	case MissingFile:
		return "MissingFile"
	case IOError:
		return "IOError"
	default:
		return "Unknown"
	}
}

// Error is the typed error shredtrees packages return for any domain
// failure; Unwrap exposes the underlying cause, if any.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// New builds an Error of the given Kind carrying msg, with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds an Error of the given Kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given Kind around an existing error.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Msg: err.Error(), Err: err}
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// ExitCode maps err's Kind to the process exit code the CLI tools use. A
// non-taxonomy error always maps to 1.
func ExitCode(err error) int {
	var se *Error
	if errors.As(err, &se) {
		switch se.Kind {
		case MalformedInput:
			return 3
		case Incompatible:
			return 4
		case MatchesMismatch:
			return 5
		case MissingFile:
			return 6
		case IOError:
			return 7
		}
	}
	return 1
}
