// Package diagnostics collects and renders compiler-style reports for
// nova check.
package diagnostics

import (
	"fmt"
	"strings"

	"nova/internal/errors"
)

type Level int

const (
	Error Level = iota
	Warning
	Info
	Hint
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "hint"
	}
}

// Error codes used by check.
const (
	CodeSyntaxError       = "E0001"
	CodeUndefinedVariable = "E0002"
	CodeTypeMismatch      = "E0003"
	CodeInvalidOperation  = "E0004"
	CodeDivisionByZero    = "E0005"
	CodeIndexOutOfBounds  = "E0006"
	CodeUndefinedFunction = "E0007"
	CodeArgumentMismatch  = "E0008"
	CodeUndefinedClass    = "E0009"

	CodeUnusedVariable    = "W0001"
	CodeUnreachableCode   = "W0002"
	CodeDeprecatedFeature = "W0003"
)

type Diagnostic struct {
	Level    Level
	Code     string
	Message  string
	Location errors.SourceLocation
	Help     string
}

func NewError(message string, loc errors.SourceLocation) Diagnostic {
	return Diagnostic{Level: Error, Message: message, Location: loc}
}

func NewWarning(message string, loc errors.SourceLocation) Diagnostic {
	return Diagnostic{Level: Warning, Message: message, Location: loc}
}

func (d Diagnostic) WithCode(code string) Diagnostic {
	d.Code = code
	return d
}

func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

// String renders one report:
//
//	error[E0001]: Expect ')' after arguments
//	  --> script.nova:3:12
//	  help: ...
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Level.String())
	if d.Code != "" {
		fmt.Fprintf(&b, "[%s]", d.Code)
	}
	fmt.Fprintf(&b, ": %s\n", d.Message)
	fmt.Fprintf(&b, "  --> %s\n", formatLocation(d.Location))
	if d.Help != "" {
		fmt.Fprintf(&b, "  help: %s\n", d.Help)
	}
	return b.String()
}

func formatLocation(loc errors.SourceLocation) string {
	if loc.File != "" {
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Column)
	}
	return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
}

// Engine accumulates reports for one check run.
type Engine struct {
	diagnostics []Diagnostic
	errorCount  int
	warnCount   int
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Report(d Diagnostic) {
	switch d.Level {
	case Error:
		e.errorCount++
	case Warning:
		e.warnCount++
	}
	e.diagnostics = append(e.diagnostics, d)
}

func (e *Engine) Error(message string, loc errors.SourceLocation) {
	e.Report(NewError(message, loc))
}

func (e *Engine) Warning(message string, loc errors.SourceLocation) {
	e.Report(NewWarning(message, loc))
}

func (e *Engine) HasErrors() bool   { return e.errorCount > 0 }
func (e *Engine) ErrorCount() int   { return e.errorCount }
func (e *Engine) WarningCount() int { return e.warnCount }
func (e *Engine) All() []Diagnostic { return e.diagnostics }

func (e *Engine) Clear() {
	e.diagnostics = nil
	e.errorCount = 0
	e.warnCount = 0
}

// Render writes every report plus a summary line when anything was
// reported.
func (e *Engine) Render() string {
	var b strings.Builder
	for _, d := range e.diagnostics {
		b.WriteString(d.String())
	}
	if e.errorCount > 0 || e.warnCount > 0 {
		fmt.Fprintf(&b, "\nSummary: %d errors, %d warnings\n", e.errorCount, e.warnCount)
	}
	return b.String()
}

// FromNovaError converts a scan, parse or runtime fault into a coded
// diagnostic.
func FromNovaError(err *errors.NovaError) Diagnostic {
	d := NewError(err.Message, err.Location)
	switch err.Type {
	case errors.SyntaxError:
		d = d.WithCode(CodeSyntaxError)
	case errors.ReferenceError:
		d = d.WithCode(CodeUndefinedVariable)
	case errors.TypeError:
		d = d.WithCode(CodeTypeMismatch)
	case errors.DivisionByZero:
		d = d.WithCode(CodeDivisionByZero)
	case errors.InvalidOperation:
		d = d.WithCode(CodeInvalidOperation)
	}
	return d
}
