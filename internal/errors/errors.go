// Package errors implements spec.md §7's error taxonomy as a single Go
// error type that serves two roles at once: a parse/compile-time
// diagnostic carrying a source span (the teacher's SentraError's original
// job) and, via AsValue, the runtime Error value of §3/§4.E that gets
// pushed onto the VM stack. Keeping one type for both avoids translating
// between a "compiler error" and a "runtime error" representation at the
// lexer/parser/compiler boundary.
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"calc/internal/value"
)

// SourceLocation is a position in source text.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// StackFrame is one call-stack entry, attached to a runtime error once
// the VM has unwound past it (Environment in spec.md §4.J terms).
type StackFrame struct {
	Function string
	File     string
	Line     int
	Column   int
}

// CalcError is this module's error type. Kind mirrors value.ErrorKind
// exactly (spec.md §7's seven-member taxonomy), so a CalcError raised
// during lexing/parsing/compiling and an Error value raised at runtime
// by NEWERROR/a failed operation share one vocabulary.
type CalcError struct {
	Kind      value.ErrorKind
	Code      int
	Message   string
	Location  SourceLocation
	CallStack []StackFrame
	Source    string // the source line the error occurred on, if known
	cause     error
}

func New(kind value.ErrorKind, code int, message string, file string, line, column int) *CalcError {
	return &CalcError{
		Kind:     kind,
		Code:     code,
		Message:  message,
		Location: SourceLocation{File: file, Line: line, Column: column},
	}
}

// Wrap attaches an external error (an os/database/sql failure) as this
// CalcError's causal chain via pkg/errors, the one place in the codebase
// an external error must be preserved rather than re-rendered purely as
// a taxonomy code — spec.md's Resource error kind (§7) is the only kind
// that ever originates outside this module's own arithmetic/VM logic.
func Wrap(cause error, kind value.ErrorKind, code int, message string) *CalcError {
	return &CalcError{
		Kind:    kind,
		Code:    code,
		Message: message,
		cause:   pkgerrors.Wrap(cause, message),
	}
}

func (e *CalcError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s\n", e.Kind, e.Message))

	if e.Location.File != "" {
		sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n", e.Location.File, e.Location.Line, e.Location.Column))
		if e.Source != "" {
			sb.WriteString(fmt.Sprintf("\n  %d | %s\n", e.Location.Line, e.Source))
			sb.WriteString(strings.Repeat(" ", len(fmt.Sprintf("  %d | ", e.Location.Line))))
			if e.Location.Column > 0 {
				sb.WriteString(strings.Repeat(" ", e.Location.Column-1))
			}
			sb.WriteString("^\n")
		}
	}

	if len(e.CallStack) > 0 {
		sb.WriteString("\nCall Stack:\n")
		for _, frame := range e.CallStack {
			if frame.Function != "" {
				sb.WriteString(fmt.Sprintf("  at %s (%s:%d:%d)\n", frame.Function, frame.File, frame.Line, frame.Column))
			} else {
				sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n", frame.File, frame.Line, frame.Column))
			}
		}
	}

	if e.cause != nil {
		sb.WriteString(fmt.Sprintf("\ncaused by: %v\n", e.cause))
	}

	return sb.String()
}

func (e *CalcError) Unwrap() error { return e.cause }
func (e *CalcError) Cause() error  { return e.cause }

func (e *CalcError) WithSource(source string) *CalcError {
	e.Source = source
	return e
}

func (e *CalcError) WithStack(stack []StackFrame) *CalcError {
	e.CallStack = stack
	return e
}

func (e *CalcError) AddStackFrame(function, file string, line, column int) *CalcError {
	e.CallStack = append(e.CallStack, StackFrame{Function: function, File: file, Line: line, Column: column})
	return e
}

// AsValue renders this CalcError as the runtime Error value of §3/§4.E,
// the form a TRY region's catch variable and ISERR/ERRNO actually see.
func (e *CalcError) AsValue() value.Value {
	return value.NewError(e.Kind, e.Code, e.Message)
}
