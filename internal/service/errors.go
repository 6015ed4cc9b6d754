package service

import "fmt"

// Kind classifies an operation failure independently of any transport.
// The HTTP boundary maps kinds to status codes.
type Kind int

const (
	// KindBadInput means a required field is missing or malformed
	KindBadInput Kind = iota + 1
	// KindUnauthenticated means the operation requires a session and none is present
	KindUnauthenticated
	// KindForbidden means the caller is authenticated but not permitted
	KindForbidden
	// KindNotFound means a referenced entity does not exist
	KindNotFound
	// KindConflict means a uniqueness or toggle-state violation
	KindConflict
	// KindMismatch means two client-supplied values that must agree do not
	KindMismatch
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindBadInput:
		return "bad_input"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// Error is a classified operation failure
type Error struct {
	Kind    Kind
	Op      string
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

// errf builds a classified error
func errf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from an error, 0 for unclassified errors
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return 0
}
