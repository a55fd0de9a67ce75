package object

import (
	"fmt"
	"strings"
)

// ErrorKind classifies interpreter failures.
type ErrorKind string

const (
	ReferenceMissing      ErrorKind = "ReferenceMissing"
	UnknownNodeKind       ErrorKind = "UnknownNodeKind"
	MatchFailure          ErrorKind = "MatchFailure"
	ContinueTargetInvalid ErrorKind = "ContinueTargetInvalid"
	ModuleNotFound        ErrorKind = "ModuleNotFound"
	TypeMismatch          ErrorKind = "TypeMismatch"
	InvalidModule         ErrorKind = "InvalidModule"
	ImportCycle           ErrorKind = "ImportCycle"
	InternalFault         ErrorKind = "InternalFault"
	DepthExceeded         ErrorKind = "DepthExceeded"
	Cancelled             ErrorKind = "Cancelled"
)

// Sentinels for errors.Is.
var (
	ErrReferenceMissing      = &Error{Kind: ReferenceMissing}
	ErrUnknownNodeKind       = &Error{Kind: UnknownNodeKind}
	ErrMatchFailure          = &Error{Kind: MatchFailure}
	ErrContinueTargetInvalid = &Error{Kind: ContinueTargetInvalid}
	ErrModuleNotFound        = &Error{Kind: ModuleNotFound}
	ErrTypeMismatch          = &Error{Kind: TypeMismatch}
	ErrInvalidModule         = &Error{Kind: InvalidModule}
	ErrImportCycle           = &Error{Kind: ImportCycle}
	ErrInternalFault         = &Error{Kind: InternalFault}
	ErrDepthExceeded         = &Error{Kind: DepthExceeded}
	ErrCancelled             = &Error{Kind: Cancelled}
)

// StackFrame for error stack traces
type StackFrame struct {
	Name   string
	Source string
	Line   int
	Column int
}

// Error is an interpreter failure.
type Error struct {
	Kind       ErrorKind
	Message    string
	Source     string
	Line       int
	Column     int
	StackTrace []StackFrame
	Cause      error
}

func NewError(kind ErrorKind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// WrapError creates an error of the given kind caused by err.
func WrapError(kind ErrorKind, err error, format string, a ...interface{}) *Error {
	e := NewError(kind, format, a...)
	e.Cause = err
	return e
}

func (e *Error) Error() string {
	var result string
	switch {
	case e.Line > 0 && e.Source != "":
		result = fmt.Sprintf("%s at %s:%d:%d: %s", e.Kind, e.Source, e.Line, e.Column, e.Message)
	case e.Line > 0:
		result = fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Column, e.Message)
	default:
		result = fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Cause != nil {
		result += ": " + e.Cause.Error()
	}
	return result
}

// Inspect renders the error together with its stack trace, innermost first.
func (e *Error) Inspect() string {
	result := e.Error()
	if len(e.StackTrace) > 0 {
		var sb strings.Builder
		sb.WriteString(result)
		sb.WriteString("\nStack trace:")
		for i := len(e.StackTrace) - 1; i >= 0; i-- {
			frame := e.StackTrace[i]
			fmt.Fprintf(&sb, "\n  at %s (%s:%d:%d)", frame.Name, frame.Source, frame.Line, frame.Column)
		}
		result = sb.String()
	}
	return result
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind, so the package sentinels work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Catchable reports whether guest try/catch may observe the error.
func (e *Error) Catchable() bool {
	switch e.Kind {
	case InternalFault, DepthExceeded, Cancelled:
		return false
	}
	return true
}

// Thrown carries a value raised by a guest throw statement.
type Thrown struct {
	Value Object
}

func (t *Thrown) Error() string {
	if t.Value == nil {
		return "uncaught exception: undefined"
	}
	return "uncaught exception: " + t.Value.Inspect()
}
