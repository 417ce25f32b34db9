package interp

import (
	"fmt"
	"strings"
	"testing"

	novaerrors "nova/internal/errors"
)

// stubResolver serves module sources from a map, keyed by import path.
type stubResolver struct {
	modules map[string]string
}

func (r *stubResolver) Resolve(path string) (string, string, error) {
	source, ok := r.modules[path]
	if !ok {
		return "", "", fmt.Errorf("Module not found: %s", path)
	}
	return source, "/stub/" + path, nil
}

func runWithModules(t *testing.T, modules map[string]string, source string) (Value, error) {
	t.Helper()
	i := New()
	i.SetResolver(&stubResolver{modules: modules})
	return runIn(t, i, source)
}

func TestImportBindsExports(t *testing.T) {
	modules := map[string]string{
		"mathx": `
			let pi = 3.14159
			fn square(x) { x * x }
		`,
	}
	v, err := runWithModules(t, modules, `
		import "mathx"
		mathx.square(5)
	`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if v != float64(25) {
		t.Errorf("mathx.square(5) = %v", v)
	}
}

func TestImportAlias(t *testing.T) {
	modules := map[string]string{"lib/strings": `fn shout(s) { upper(s) }`}
	v, err := runWithModules(t, modules, `
		import "lib/strings" as str
		str.shout("hey")
	`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if v != "HEY" {
		t.Errorf("str.shout = %v", v)
	}
}

func TestImportSanitizedName(t *testing.T) {
	modules := map[string]string{"lib/util.nova": `let answer = 42`}
	v, err := runWithModules(t, modules, `
		import "lib/util.nova"
		lib_util.answer
	`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if v != float64(42) {
		t.Errorf("lib_util.answer = %v", v)
	}
}

func TestImportExcludesNatives(t *testing.T) {
	modules := map[string]string{"m": `let x = 1`}
	v, err := runWithModules(t, modules, `
		import "m"
		m.println
	`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if v != nil {
		t.Errorf("native binding leaked into exports: %v", v)
	}
}

func TestImportCached(t *testing.T) {
	modules := map[string]string{"counter": `let n = now()`}
	v, err := runWithModules(t, modules, `
		import "counter" as a
		import "counter" as b
		a.n == b.n
	`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if v != true {
		t.Errorf("a.n == b.n = %v", v)
	}
}

func TestImportCircular(t *testing.T) {
	modules := map[string]string{
		"a": `import "b"`,
		"b": `import "a"`,
	}
	_, err := runWithModules(t, modules, `import "a"`)
	if err == nil {
		t.Fatal("expected circular import error")
	}
	ne, ok := err.(*novaerrors.NovaError)
	if !ok || ne.Type != novaerrors.ImportError {
		t.Errorf("error = %v, want ImportError", err)
	}
	if !strings.Contains(err.Error(), "Circular import") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestImportWithoutResolver(t *testing.T) {
	i := New()
	_, err := runIn(t, i, `import "anything"`)
	if err == nil {
		t.Fatal("expected error without a resolver")
	}
	if !strings.Contains(err.Error(), "Module not found") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestImportClassesAndState(t *testing.T) {
	modules := map[string]string{
		"shapes": `
			class Rect {
				constructor(w, h) {
					this.w = w
					this.h = h
				}
				fn area() { this.w * this.h }
			}
		`,
	}
	v, err := runWithModules(t, modules, `
		import "shapes"
		let r = new shapes.Rect(3, 4)
		r.area()
	`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if v != float64(12) {
		t.Errorf("r.area() = %v", v)
	}
}
