package errors

import (
	"strings"
	"testing"
)

func TestErrorWithoutLocation(t *testing.T) {
	err := New(TypeError, "Type mismatch")
	if got := err.Error(); got != "TypeError: Type mismatch" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNewfFormatsMessage(t *testing.T) {
	err := Newf(ReferenceError, "Undefined variable '%s'", "x")
	if err.Message != "Undefined variable 'x'" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestErrorRendersLocationAndCaret(t *testing.T) {
	err := NewSyntaxError("Expect ')' after arguments", "script.nova", 3, 10).
		WithSource("print(1, 2")

	got := err.Error()
	if !strings.Contains(got, "SyntaxError: Expect ')' after arguments") {
		t.Errorf("missing header:\n%s", got)
	}
	if !strings.Contains(got, "at script.nova:3:10") {
		t.Errorf("missing location:\n%s", got)
	}
	if !strings.Contains(got, "3 | print(1, 2") {
		t.Errorf("missing source line:\n%s", got)
	}

	// caret sits under column 10
	var caretLine string
	for _, line := range strings.Split(got, "\n") {
		if strings.HasSuffix(line, "^") {
			caretLine = line
		}
	}
	if caretLine == "" {
		t.Fatalf("no caret line:\n%s", got)
	}
	if got, want := strings.Index(caretLine, "^"), len("  3 | ")+9; got != want {
		t.Errorf("caret at byte %d, want %d:\n%s", got, want, caretLine)
	}
}

func TestErrorRendersCallStack(t *testing.T) {
	err := NewRuntimeError("boom", "script.nova", 8, 1).
		AddStackFrame("inner", "script.nova", 8, 1).
		AddStackFrame("", "script.nova", 12, 5)

	got := err.Error()
	if !strings.Contains(got, "Call Stack:") {
		t.Errorf("missing stack header:\n%s", got)
	}
	if !strings.Contains(got, "at inner (script.nova:8:1)") {
		t.Errorf("missing named frame:\n%s", got)
	}
	if !strings.Contains(got, "at script.nova:12:5") {
		t.Errorf("missing anonymous frame:\n%s", got)
	}
}

func TestAtAttachesLocation(t *testing.T) {
	err := New(ImportError, "Module not found: util").At("main.nova", 1, 1)
	if err.Location.File != "main.nova" || err.Location.Line != 1 {
		t.Errorf("Location = %+v", err.Location)
	}
}
