// internal/errors/errors.go
package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	SyntaxError       ErrorType = "SyntaxError"
	RuntimeError      ErrorType = "RuntimeError"
	TypeError         ErrorType = "TypeError"
	ReferenceError    ErrorType = "ReferenceError"
	DivisionByZero    ErrorType = "DivisionByZero"
	InvalidOperation  ErrorType = "InvalidOperation"
	UserThrown        ErrorType = "UserThrown"
	ImportError       ErrorType = "ImportError"
)

// SourceLocation represents a location in source code
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// NovaError represents an error with source location information
type NovaError struct {
	Type      ErrorType
	Message   string
	Location  SourceLocation
	CallStack []StackFrame
	Source    string // The source line where error occurred

	// Thrown holds the original user value for UserThrown errors so
	// catch clauses can rebuild the error object from it.
	Thrown interface{}
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
	Column   int
}

// Error implements the error interface
func (e *NovaError) Error() string {
	var sb strings.Builder

	// Error type and message
	sb.WriteString(fmt.Sprintf("%s: %s", e.Type, e.Message))

	// Location information
	if e.Location.File != "" {
		sb.WriteString(fmt.Sprintf("\n  at %s:%d:%d\n",
			e.Location.File, e.Location.Line, e.Location.Column))

		// Show source line if available
		if e.Source != "" {
			sb.WriteString(fmt.Sprintf("\n  %d | %s\n", e.Location.Line, e.Source))
			// Add error indicator
			sb.WriteString(fmt.Sprintf("  %s", strings.Repeat(" ", len(fmt.Sprintf("%d | ", e.Location.Line)))))
			if e.Location.Column > 0 {
				sb.WriteString(strings.Repeat(" ", e.Location.Column-1))
			}
			sb.WriteString("^\n")
		}
	}

	// Stack trace
	if len(e.CallStack) > 0 {
		sb.WriteString("\nCall Stack:\n")
		for _, frame := range e.CallStack {
			if frame.Function != "" {
				sb.WriteString(fmt.Sprintf("  at %s (%s:%d:%d)\n",
					frame.Function, frame.File, frame.Line, frame.Column))
			} else {
				sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n",
					frame.File, frame.Line, frame.Column))
			}
		}
	}

	return sb.String()
}

// New creates an error of an arbitrary type without location information.
func New(errType ErrorType, message string) *NovaError {
	return &NovaError{Type: errType, Message: message}
}

// Newf creates an error of an arbitrary type with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *NovaError {
	return &NovaError{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// NewSyntaxError creates a new syntax error
func NewSyntaxError(message string, file string, line, column int) *NovaError {
	return &NovaError{
		Type:    SyntaxError,
		Message: message,
		Location: SourceLocation{
			File:   file,
			Line:   line,
			Column: column,
		},
	}
}

// NewRuntimeError creates a new runtime error
func NewRuntimeError(message string, file string, line, column int) *NovaError {
	return &NovaError{
		Type:    RuntimeError,
		Message: message,
		Location: SourceLocation{
			File:   file,
			Line:   line,
			Column: column,
		},
	}
}

// At attaches a source location to the error.
func (e *NovaError) At(file string, line, column int) *NovaError {
	e.Location = SourceLocation{File: file, Line: line, Column: column}
	return e
}

// WithSource adds source code context to the error
func (e *NovaError) WithSource(source string) *NovaError {
	e.Source = source
	return e
}

// WithStack adds a call stack to the error
func (e *NovaError) WithStack(stack []StackFrame) *NovaError {
	e.CallStack = stack
	return e
}

// AddStackFrame adds a single stack frame
func (e *NovaError) AddStackFrame(function, file string, line, column int) *NovaError {
	e.CallStack = append(e.CallStack, StackFrame{
		Function: function,
		File:     file,
		Line:     line,
		Column:   column,
	})
	return e
}
