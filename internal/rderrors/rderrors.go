// Package rderrors holds the typed error taxonomy used across ddreduce. Its
// Error type can be created with an optional wrapped cause and is compatible
// with errors.Is/errors.As via Unwrap.
package rderrors

import "fmt"

// Kind identifies which category of failure an Error represents. See spec §7
// for the full taxonomy and its propagation policy.
type Kind int

const (
	// KindBuildDriverIO is a failure spawning or reading from the build
	// driver subprocess. Fatal for the run.
	KindBuildDriverIO Kind = iota

	// KindDiagnosticParse is malformed oracle input, such as a location line
	// with no preceding error line. Fatal for the run.
	KindDiagnosticParse

	// KindMissingErrorLocation is a master error with no attached location.
	// Fatal for the run.
	KindMissingErrorLocation

	// KindErrorSourceNotFound is an unreadable source file named by a
	// diagnostic. Fatal for the run.
	KindErrorSourceNotFound

	// KindSyntaxParse is a starting file that is not syntactically valid.
	// Fatal for the run.
	KindSyntaxParse

	// KindRegenerationFailure is a graph in an unreconstructible shape. Local
	// recoverable: the searcher treats it as a rejected candidate.
	KindRegenerationFailure

	// KindRemoveRoot is an attempt to remove the graph's root vertex, or a
	// vertex that is not in the graph. The searcher never asks for either;
	// if one occurs it treats the candidate as rejected.
	KindRemoveRoot
)

func (k Kind) String() string {
	switch k {
	case KindBuildDriverIO:
		return "BuildDriverIO"
	case KindDiagnosticParse:
		return "DiagnosticParse"
	case KindMissingErrorLocation:
		return "MissingErrorLocation"
	case KindErrorSourceNotFound:
		return "ErrorSourceNotFound"
	case KindSyntaxParse:
		return "SyntaxParse"
	case KindRegenerationFailure:
		return "RegenerationFailure"
	case KindRemoveRoot:
		return "RemoveRoot"
	default:
		return "Unknown"
	}
}

// Recoverable returns whether an error of this Kind should be treated as a
// rejected candidate by the searcher rather than aborting the run.
func (k Kind) Recoverable() bool {
	return k == KindRegenerationFailure
}

// Error is a typed error carrying a Kind, a human-readable message, and an
// optional wrapped cause. Error should not be constructed directly; use New
// or Wrap.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

// New creates an Error of the given kind with the given message.
func New(kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, a ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...)}
}

// Wrap creates an Error of the given kind with the given message, wrapping
// cause so that errors.Is/errors.As can see through to it.
func Wrap(kind Kind, cause error, msg string) error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

// Wrapf creates an Error of the given kind wrapping cause, with a formatted
// message.
func Wrapf(kind Kind, cause error, format string, a ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, a...), cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.cause.Error())
	}
	return e.msg
}

// Unwrap gives the cause Error wraps, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the error's Kind.
func (e *Error) Kind() Kind {
	return e.kind
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, and whether
// one was found.
func KindOf(err error) (Kind, bool) {
	var rerr *Error
	for err != nil {
		if k, ok := err.(*Error); ok {
			rerr = k
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if rerr == nil {
		return 0, false
	}
	return rerr.kind, true
}

// Is reports whether err is (or wraps) a rderrors.Error of the same Kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// MismatchedShape creates a KindRegenerationFailure error for a graph vertex
// that cannot be coerced into the shape required by its position (spec §4.4
// coercion rules).
func MismatchedShape(kindName string) error {
	return Newf(KindRegenerationFailure, "MismatchedShape: %s cannot appear in statement position", kindName)
}
