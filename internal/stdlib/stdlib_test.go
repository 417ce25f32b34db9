package stdlib

import (
	"testing"

	"nova/internal/interp"
	"nova/internal/lexer"
	"nova/internal/parser"
)

// newInterp builds an interpreter with every stdlib group installed.
func newInterp(t *testing.T) *interp.Interpreter {
	t.Helper()
	i := interp.New()
	RegisterAll(i)
	return i
}

func run(t *testing.T, i *interp.Interpreter, source string) interp.Value {
	t.Helper()
	tokens, err := lexer.NewScanner(source).ScanTokens()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	program, err := parser.NewParser(tokens).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v, err := i.Run(program)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return v
}

func runErr(t *testing.T, i *interp.Interpreter, source string) error {
	t.Helper()
	tokens, err := lexer.NewScanner(source).ScanTokens()
	if err != nil {
		return err
	}
	program, err := parser.NewParser(tokens).Parse()
	if err != nil {
		return err
	}
	_, err = i.Run(program)
	return err
}

func interpEqual(a, b interp.Value) bool {
	return interp.ValuesEqual(a, b)
}

func wantNumber(t *testing.T, v interp.Value, want float64) {
	t.Helper()
	n, ok := v.(float64)
	if !ok {
		t.Fatalf("value = %v (%T), want number", v, v)
	}
	if n != want {
		t.Errorf("value = %v, want %v", n, want)
	}
}

func wantString(t *testing.T, v interp.Value, want string) {
	t.Helper()
	s, ok := v.(string)
	if !ok {
		t.Fatalf("value = %v (%T), want string", v, v)
	}
	if s != want {
		t.Errorf("value = %q, want %q", s, want)
	}
}

func wantBool(t *testing.T, v interp.Value, want bool) {
	t.Helper()
	b, ok := v.(bool)
	if !ok {
		t.Fatalf("value = %v (%T), want bool", v, v)
	}
	if b != want {
		t.Errorf("value = %v, want %v", b, want)
	}
}
