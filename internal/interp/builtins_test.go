// internal/interp/builtins_test.go
package interp

import (
	"bytes"
	"path/filepath"
	"os"
	"testing"

	"nova/internal/errors"
)

func TestConversionNatives(t *testing.T) {
	wantString(t, "type(42)", "number")
	wantString(t, "type(\"x\")", "string")
	wantString(t, "type([1])", "array")
	wantString(t, "type(null)", "null")
	wantString(t, "str(1.5)", "1.5")
	wantString(t, "str([1, 2])", "[1, 2]")
	wantNumber(t, "num(\"3.5\")", 3.5)
	wantNumber(t, "num(true)", 1)
	wantBool(t, "bool([])", false)
	wantBool(t, "bool(\"x\")", true)
	wantError(t, "num(\"abc\")", errors.InvalidOperation, "Cannot convert string to number")
}

func TestStringNatives(t *testing.T) {
	wantString(t, `upper("nova")`, "NOVA")
	wantString(t, `lower("NoVa")`, "nova")
	wantString(t, `trim("  x  ")`, "x")
	wantString(t, `substr("language", 4, 3)`, "uag")
	wantString(t, `join(split("a,b,c", ","), "-")`, "a-b-c")
	wantBool(t, `contains("interpreter", "terp")`, true)
	wantBool(t, `contains([1, 2, 3], 2)`, true)
	wantBool(t, `contains([1, 2, 3], 9)`, false)
	wantString(t, `reverse("abc")`, "cba")
	wantNumber(t, `reverse([1, 2, 3])[0]`, 3)
}

func TestMathNatives(t *testing.T) {
	wantNumber(t, "abs(-4)", 4)
	wantNumber(t, "sqrt(16)", 4)
	wantNumber(t, "pow(2, 8)", 256)
	wantError(t, "sqrt(-1)", errors.InvalidOperation, "sqrt() of negative number")
	wantError(t, `abs("x")`, errors.TypeError, "requires a number")
}

func TestSortNative(t *testing.T) {
	wantNumber(t, "sort([3, 1, 2])[0]", 1)
	wantString(t, `sort(["pear", "apple"])[0]`, "apple")
	wantError(t, `sort([1, "a"])`, errors.TypeError, "sort requires")
	// sort clones its argument
	wantNumber(t, "let a = [2, 1] sort(a) a[0]", 2)
}

func TestObjectNatives(t *testing.T) {
	wantString(t, `keys({b: 1, a: 2})[0]`, "a")
	wantNumber(t, `values({b: 1, a: 2})[1]`, 1)
	wantNumber(t, `len(keys({x: 1, y: 2}))`, 2)
}

func TestJSONNatives(t *testing.T) {
	wantNumber(t, `json_parse("{\"a\": [1, 2]}").a[1]`, 2)
	wantBool(t, `json_parse("true")`, true)
	wantString(t, `json_stringify([1, "x", null])`, `[1,"x",null]`)
	wantString(t, `json_parse(json_stringify({msg: "hi"})).msg`, "hi")
	wantError(t, `json_parse("{oops")`, errors.InvalidOperation, "Invalid JSON")
}

func TestRegexNatives(t *testing.T) {
	wantBool(t, `regex_match("^n.va$", "nova")`, true)
	wantBool(t, `regex_match("^x", "nova")`, false)
	wantString(t, `regex_find("[0-9]+", "port 8080 open")`, "8080")
	wantBool(t, `regex_find("[0-9]+", "no digits") == null`, true)
	wantNumber(t, `len(regex_find_all("[aeiou]", "interpreter"))`, 4)
	wantString(t, `regex_replace("[0-9]", "a1b2", "#")`, "a#b#")
	wantNumber(t, `len(regex_split(",\\s*", "a, b,c"))`, 3)
	wantError(t, `regex_match("(", "x")`, errors.InvalidOperation, "Invalid regex")
}

func TestFileNatives(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	i := New()
	i.SetOutput(&bytes.Buffer{})

	src := `write_file("` + path + `", "hello") read_file("` + path + `")`
	v, err := runIn(t, i, src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if v != "hello" {
		t.Errorf("read back %v, want hello", v)
	}
	if data, _ := os.ReadFile(path); string(data) != "hello" {
		t.Errorf("file content %q", data)
	}

	wantBool(t, `exists("`+path+`")`, true)
	wantBool(t, `exists("`+filepath.Join(dir, "missing")+`")`, false)
	wantError(t, `read_file("`+filepath.Join(dir, "missing")+`")`, errors.RuntimeError, "Cannot read file")
}

func TestPrintWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	i := New()
	i.SetOutput(&buf)
	if _, err := runIn(t, i, `print("hi") println(42)`); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hi\n42\n" {
		t.Errorf("output = %q", buf.String())
	}
}
