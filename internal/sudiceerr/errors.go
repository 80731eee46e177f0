// Package sudiceerr carries the user-facing error tier of the toolchain:
// recoverable problems with a program that a frontend or a checker caller
// can report to a user, as opposed to invariant violations (which the
// checker and interpreter raise as plain panics instead, so they can never
// be silently swallowed by code that only handles *Error).
package sudiceerr

import "fmt"

// Kind distinguishes the pipeline stage that raised an Error.
type Kind string

const (
	ParseError Kind = "ParseError"
	CheckError Kind = "CheckError"
)

// Span is a source location, threaded through from the lexer token that
// produced the offending instruction. Frontends that don't track spans may
// leave it zero-valued.
type Span struct {
	Line   int
	Column int
}

// Error is a recoverable, reportable problem with a sudice program.
type Error struct {
	Kind    Kind
	Message string
	Span    Span
}

func (e *Error) Error() string {
	if e.Span.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d, column %d)", e.Kind, e.Message, e.Span.Line, e.Span.Column)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewCheckError reports a statically-detected unsound program, such as a
// drop that would remove more dice than a roll could produce.
func NewCheckError(message string) *Error {
	return &Error{Kind: CheckError, Message: message}
}

// NewParseError reports a malformed source expression.
func NewParseError(message string, span Span) *Error {
	return &Error{Kind: ParseError, Message: message, Span: span}
}

// WithSpan attaches a source location to an existing error.
func (e *Error) WithSpan(span Span) *Error {
	e.Span = span
	return e
}
