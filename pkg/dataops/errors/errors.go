// Package errors provides the structured condition type and error codes for
// the data operation layer. This is a leaf package with no internal
// dependencies so that the validation gate, the engines and the tests can all
// import it without cycles.
//
// A Condition is deliberately not a boolean failure: it carries the complete
// offending subject set for the check that produced it. Callers rely on
// receiving every failing subject in one round trip, never just the first.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies a validation or operation failure.
type ErrorCode int

const (
	// ErrNotAUser indicates a principal unknown to the identity directory.
	ErrNotAUser ErrorCode = iota + 1

	// ErrDoesNotExist indicates a path that is absent from the grid.
	ErrDoesNotExist

	// ErrAlreadyExists indicates a destination path that is already taken.
	ErrAlreadyExists

	// ErrNotReadable indicates the user lacks read permission on a path.
	ErrNotReadable

	// ErrNotWritable indicates the user lacks write permission on a path.
	ErrNotWritable

	// ErrNotOwner indicates the user does not own a path.
	ErrNotOwner

	// ErrNotAFolder indicates a directory operation on a non-directory.
	ErrNotAFolder

	// ErrNotAFile indicates a file operation on a non-file.
	ErrNotAFile

	// ErrNotAuthorized indicates an operation forbidden by policy, such as
	// deleting a user's own home directory.
	ErrNotAuthorized

	// ErrIncompleteRename indicates a rename whose underlying move left a
	// partial result behind.
	ErrIncompleteRename

	// ErrInvalidMetadataPayload indicates a malformed AVU request.
	ErrInvalidMetadataPayload

	// ErrTicketDoesNotExist indicates a transfer ticket that is unknown.
	ErrTicketDoesNotExist

	// ErrTicketAlreadyExists indicates a transfer ticket key collision.
	ErrTicketAlreadyExists
)

// String returns the wire-stable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrNotAUser:
		return "NotAUser"
	case ErrDoesNotExist:
		return "DoesNotExist"
	case ErrAlreadyExists:
		return "AlreadyExists"
	case ErrNotReadable:
		return "NotReadable"
	case ErrNotWritable:
		return "NotWritable"
	case ErrNotOwner:
		return "NotOwner"
	case ErrNotAFolder:
		return "NotAFolder"
	case ErrNotAFile:
		return "NotAFile"
	case ErrNotAuthorized:
		return "NotAuthorized"
	case ErrIncompleteRename:
		return "IncompleteRename"
	case ErrInvalidMetadataPayload:
		return "InvalidMetadataPayload"
	case ErrTicketDoesNotExist:
		return "TicketDoesNotExist"
	case ErrTicketAlreadyExists:
		return "TicketAlreadyExists"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Condition is a structured validation failure.
//
// Subjects is the minimal offending subset for the failed predicate: for a
// set-valued check such as "all paths exist" it enumerates exactly the
// elements that fail, computed by filtering the input set.
type Condition struct {
	// Code classifies the failure.
	Code ErrorCode

	// Subjects lists every offending user or path.
	Subjects []string

	// Message is an optional human-readable elaboration.
	Message string

	// Err is the underlying backend error, when one triggered the condition.
	Err error
}

// Error implements the error interface.
func (c *Condition) Error() string {
	var b strings.Builder
	b.WriteString(c.Code.String())

	if len(c.Subjects) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(c.Subjects, ", "))
	}
	if c.Message != "" {
		b.WriteString(" (")
		b.WriteString(c.Message)
		b.WriteString(")")
	}
	if c.Err != nil {
		b.WriteString(": ")
		b.WriteString(c.Err.Error())
	}
	return b.String()
}

// Unwrap exposes the underlying backend error for errors.Is/errors.As.
func (c *Condition) Unwrap() error {
	return c.Err
}

// ============================================================================
// Factories
// ============================================================================

// New creates a Condition with the given code and offending subjects.
func New(code ErrorCode, subjects ...string) *Condition {
	return &Condition{Code: code, Subjects: subjects}
}

// Wrap creates a Condition that carries a backend error. Used when a backend
// failure is surfaced with the code of the precondition that would have
// caught it.
func Wrap(code ErrorCode, err error, subjects ...string) *Condition {
	return &Condition{Code: code, Subjects: subjects, Err: err}
}

// NewNotAUser creates a NotAUser condition listing every unknown principal.
func NewNotAUser(users ...string) *Condition {
	return New(ErrNotAUser, users...)
}

// NewDoesNotExist creates a DoesNotExist condition listing every absent path.
func NewDoesNotExist(paths ...string) *Condition {
	return New(ErrDoesNotExist, paths...)
}

// NewAlreadyExists creates an AlreadyExists condition listing every occupied
// destination.
func NewAlreadyExists(paths ...string) *Condition {
	return New(ErrAlreadyExists, paths...)
}

// NewNotReadable creates a NotReadable condition for the given paths.
func NewNotReadable(paths ...string) *Condition {
	return New(ErrNotReadable, paths...)
}

// NewNotWritable creates a NotWritable condition for the given paths.
func NewNotWritable(paths ...string) *Condition {
	return New(ErrNotWritable, paths...)
}

// NewNotOwner creates a NotOwner condition listing every path the user does
// not own.
func NewNotOwner(paths ...string) *Condition {
	return New(ErrNotOwner, paths...)
}

// NewNotAFolder creates a NotAFolder condition for the given path.
func NewNotAFolder(path string) *Condition {
	return New(ErrNotAFolder, path)
}

// NewNotAFile creates a NotAFile condition for the given path.
func NewNotAFile(path string) *Condition {
	return New(ErrNotAFile, path)
}

// NewNotAuthorized creates a NotAuthorized condition.
func NewNotAuthorized(subject, reason string) *Condition {
	return &Condition{Code: ErrNotAuthorized, Subjects: []string{subject}, Message: reason}
}

// NewIncompleteRename creates an IncompleteRename condition.
func NewIncompleteRename(source, dest string) *Condition {
	return &Condition{
		Code:     ErrIncompleteRename,
		Subjects: []string{source, dest},
		Message:  "move reported a partial result",
	}
}

// NewInvalidMetadataPayload creates an InvalidMetadataPayload condition.
func NewInvalidMetadataPayload(reason string) *Condition {
	return &Condition{Code: ErrInvalidMetadataPayload, Message: reason}
}

// NewTicketDoesNotExist creates a TicketDoesNotExist condition.
func NewTicketDoesNotExist(ticket string) *Condition {
	return New(ErrTicketDoesNotExist, ticket)
}

// NewTicketAlreadyExists creates a TicketAlreadyExists condition.
func NewTicketAlreadyExists(ticket string) *Condition {
	return New(ErrTicketAlreadyExists, ticket)
}

// ============================================================================
// Helpers
// ============================================================================

// AsCondition extracts a *Condition from an error tree, or nil. Trees built
// with errors.Join are traversed, so a condition raised by one pair of a
// batch operation is still classified.
func AsCondition(err error) *Condition {
	var c *Condition
	if errors.As(err, &c) {
		return c
	}
	return nil
}

// CodeOf returns the error code of a Condition in the chain, or 0.
func CodeOf(err error) ErrorCode {
	if c := AsCondition(err); c != nil {
		return c.Code
	}
	return 0
}

// HasCode reports whether the error chain contains a Condition with the
// given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsDoesNotExist reports whether err is a DoesNotExist condition.
func IsDoesNotExist(err error) bool { return HasCode(err, ErrDoesNotExist) }

// IsAlreadyExists reports whether err is an AlreadyExists condition.
func IsAlreadyExists(err error) bool { return HasCode(err, ErrAlreadyExists) }

// IsNotAUser reports whether err is a NotAUser condition.
func IsNotAUser(err error) bool { return HasCode(err, ErrNotAUser) }

// IsNotAuthorized reports whether err is a NotAuthorized condition.
func IsNotAuthorized(err error) bool { return HasCode(err, ErrNotAuthorized) }
