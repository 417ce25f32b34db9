// internal/interp/interp_test.go
package interp

import (
	"bytes"
	"strings"
	"testing"

	"nova/internal/errors"
	"nova/internal/lexer"
	"nova/internal/parser"
)

func runSource(t *testing.T, source string) (Value, error) {
	t.Helper()
	tokens, err := lexer.NewScanner(source).ScanTokens()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	program, err := parser.NewParserWithSource(tokens, source, "test.nova").Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	i := New()
	i.SetOutput(&bytes.Buffer{})
	return i.Run(program)
}

func runIn(t *testing.T, i *Interpreter, source string) (Value, error) {
	t.Helper()
	tokens, err := lexer.NewScanner(source).ScanTokens()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	program, err := parser.NewParserWithSource(tokens, source, "test.nova").Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return i.Run(program)
}

func evalOK(t *testing.T, source string) Value {
	t.Helper()
	v, err := runSource(t, source)
	if err != nil {
		t.Fatalf("run %q: %v", source, err)
	}
	return v
}

func wantNumber(t *testing.T, source string, want float64) {
	t.Helper()
	v := evalOK(t, source)
	n, ok := v.(float64)
	if !ok || n != want {
		t.Errorf("run %q = %v (%T), want %v", source, v, v, want)
	}
}

func wantString(t *testing.T, source, want string) {
	t.Helper()
	v := evalOK(t, source)
	s, ok := v.(string)
	if !ok || s != want {
		t.Errorf("run %q = %v (%T), want %q", source, v, v, want)
	}
}

func wantBool(t *testing.T, source string, want bool) {
	t.Helper()
	v := evalOK(t, source)
	b, ok := v.(bool)
	if !ok || b != want {
		t.Errorf("run %q = %v (%T), want %v", source, v, v, want)
	}
}

func wantError(t *testing.T, source string, errType errors.ErrorType, msgPart string) {
	t.Helper()
	_, err := runSource(t, source)
	if err == nil {
		t.Fatalf("run %q: expected error", source)
	}
	ne, ok := err.(*errors.NovaError)
	if !ok {
		t.Fatalf("run %q: error %v is %T, want *NovaError", source, err, err)
	}
	if errType != "" && ne.Type != errType {
		t.Errorf("run %q: error type %s, want %s", source, ne.Type, errType)
	}
	if msgPart != "" && !strings.Contains(ne.Message, msgPart) {
		t.Errorf("run %q: message %q does not contain %q", source, ne.Message, msgPart)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"2 + 3", 5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"10 % 3", 1},
		{"2 ** 10", 1024},
		{"2 ** 3 ** 2", 512},
		{"-5 + 3", -2},
		{"1_000 + 24", 1024},
	}
	for _, tt := range tests {
		wantNumber(t, tt.source, tt.want)
	}
}

func TestDivisionByZero(t *testing.T) {
	wantError(t, "1 / 0", errors.DivisionByZero, "Division by zero")
	wantError(t, "1 % 0", errors.DivisionByZero, "Division by zero")
}

func TestBitwise(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"5 & 3", 1},
		{"5 | 3", 7},
		{"5 ^ 3", 6},
		{"1 << 3", 8},
		{"16 >> 2", 4},
		{"~0", -1},
		{"6.7 & 3", 2}, // operands truncate to int64
	}
	for _, tt := range tests {
		wantNumber(t, tt.source, tt.want)
	}
}

func TestStringsAndConcat(t *testing.T) {
	wantString(t, `"foo" + "bar"`, "foobar")
	wantString(t, `"n=" + 42`, "n=42")
	wantString(t, `1 + "x"`, "1x")
	wantString(t, `"v:" + true`, "v:true")
	wantString(t, `"pi=" + 3.5`, "pi=3.5")
	// integral numbers stringify without a decimal point
	wantString(t, `"n=" + 2.0`, "n=2")
	wantError(t, `"a" < "b"`, errors.InvalidOperation, "Cannot apply")
	wantError(t, `"a" - "b"`, errors.InvalidOperation, "Cannot apply")
}

func TestComparisons(t *testing.T) {
	wantBool(t, "3 < 5", true)
	wantBool(t, "3 >= 5", false)
	wantBool(t, "3 == 3", true)
	wantBool(t, `"a" == "a"`, true)
	wantBool(t, `"a" != "b"`, true)
	wantBool(t, "1 == \"1\"", false)
	wantBool(t, "[1, 2] == [1, 2]", true)
	wantBool(t, "{a: 1} == {a: 1}", true)
	wantBool(t, "{a: 1} == {a: 2}", false)
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`if 0 { "t" } else { "f" }`, "f"},
		{`if "" { "t" } else { "f" }`, "f"},
		{`if [] { "t" } else { "f" }`, "f"},
		{`if {} { "t" } else { "f" }`, "f"},
		{`if null { "t" } else { "f" }`, "f"},
		{`if 0.5 { "t" } else { "f" }`, "t"},
		{`if "x" { "t" } else { "f" }`, "t"},
		{`if [0] { "t" } else { "f" }`, "t"},
	}
	for _, tt := range tests {
		wantString(t, tt.source, tt.want)
	}
}

func TestLogicalOperators(t *testing.T) {
	wantBool(t, "1 and 2", true)
	wantBool(t, `0 or ""`, false)
	wantBool(t, "true and false", false)
	wantBool(t, "!0", true)
	wantBool(t, "not \"\"", true)
	wantNumber(t, "null ?? 2", 2)
	wantNumber(t, "0 ?? 2", 0)
}

func TestVariables(t *testing.T) {
	wantNumber(t, "let x = 10 x + 5", 15)
	wantNumber(t, "let x = 1 x = x + 1 x", 2)
	wantNumber(t, "let x = 1 x += 4 x", 5)
	wantError(t, "y + 1", errors.ReferenceError, "Undefined variable: y")
	wantError(t, "y = 1", errors.ReferenceError, "Undefined variable: y")
}

func TestBlocksShareScope(t *testing.T) {
	// Blocks do not open a new scope.
	wantNumber(t, "let x = 1 { x = 2 } x", 2)
	wantNumber(t, "{ let a = 7 a } a", 7)
	// Block value is its last expression statement.
	wantNumber(t, "{ 1 2 3 }", 3)
}

func TestFunctionsAndClosures(t *testing.T) {
	wantNumber(t, "fn add(a, b) { return a + b } add(2, 3)", 5)
	wantNumber(t, "fn double(x) x * 2 double(21)", 42)
	wantNumber(t, `
		fn outer() {
			let x = 10
			fn inner() { x + 5 }
			inner()
		}
		outer()`, 15)
	// Closures share their defining frame by reference.
	wantNumber(t, `
		fn make_counter() {
			let n = 0
			fn inc() { n = n + 1 n }
			inc
		}
		let c = make_counter()
		c()
		c()`, 2)
	wantNumber(t, `
		fn factorial(n) {
			if n <= 1 { return 1 }
			n * factorial(n - 1)
		}
		factorial(5)`, 120)
	// Lambdas
	wantNumber(t, "let f = x => x * 3 f(7)", 21)
	wantNumber(t, "let add = (a, b) => a + b add(4, 5)", 9)
}

func TestReturnUnwindsToCallBoundary(t *testing.T) {
	wantNumber(t, "fn f() { if true { return 1 } 2 } f()", 1)
	wantNumber(t, `
		fn find(items, target) {
			for x in items {
				if x == target { return x * 10 }
			}
			-1
		}
		find([1, 2, 3], 2)`, 20)
	wantNumber(t, "fn f() { return } f() == null 1", 1)
}

func TestArityChecks(t *testing.T) {
	wantError(t, "fn f(a) { a } f(1, 2)", errors.InvalidOperation, "expects 1 arguments, got 2")
	wantError(t, "len(1, 2)", errors.InvalidOperation, "expects 1 arguments, got 2")
	wantError(t, "5(1)", errors.TypeError, "Cannot call non-function")
}

func TestWhile(t *testing.T) {
	wantNumber(t, `
		let sum = 0
		let i = 1
		while i <= 5 {
			sum = sum + i
			i = i + 1
		}
		sum`, 15)
	wantNumber(t, `
		let n = 0
		while true {
			n = n + 1
			if n == 3 { break }
		}
		n`, 3)
	wantNumber(t, `
		let total = 0
		let i = 0
		while i < 5 {
			i = i + 1
			if i % 2 == 0 { continue }
			total = total + i
		}
		total`, 9)
}

func TestForLoop(t *testing.T) {
	wantNumber(t, `
		let sum = 0
		for x in [1, 2, 3, 4] { sum = sum + x }
		sum`, 10)
	wantString(t, `
		let out = ""
		for ch in "abc" { out = out + ch + "." }
		out`, "a.b.c.")
	wantError(t, "for x in 5 { x }", errors.TypeError, "Can only iterate")
}

func TestForLoopVariableBinding(t *testing.T) {
	// A prior binding is restored after the loop.
	wantNumber(t, "let i = 99 for i in [1, 2, 3] { i } i", 99)
	// Without a prior binding the variable stays defined.
	wantNumber(t, "for j in [1, 2] { j } j", 2)
}

func TestSignalsEscapeTopLevel(t *testing.T) {
	wantError(t, "break", errors.InvalidOperation, "Break outside loop")
	wantError(t, "continue", errors.InvalidOperation, "Continue outside loop")
	wantError(t, "return 1", errors.InvalidOperation, "Return outside function")
}

func TestArrays(t *testing.T) {
	wantNumber(t, "let a = [1, 2, 3] a[1]", 2)
	wantNumber(t, "let m = [[1, 2], [3, 4]] m[1][0]", 3)
	wantError(t, "[1, 2][5]", errors.InvalidOperation, "Array index out of bounds")
	wantError(t, "[1, 2][-1]", errors.InvalidOperation, "Array index out of bounds")
	wantNumber(t, "len([1, 2, 3])", 3)
	// push clones; the source array is untouched
	wantNumber(t, "let a = [1] let b = push(a, 2) len(a) + len(b)", 3)
	wantNumber(t, "pop([1, 2, 9])", 9)
	wantBool(t, "pop([]) == null", true)
}

func TestObjects(t *testing.T) {
	wantString(t, `let p = {name: "nova", kind: "lang"} p.name`, "nova")
	wantString(t, `let p = {name: "nova"} p["name"]`, "nova")
	wantBool(t, "let p = {a: 1} p.missing == null", true)
	wantNumber(t, "let p = {a: 1} p.a = 5 p.a", 5)
	wantNumber(t, "len({a: 1, b: 2})", 2)
}

func TestIndexAssignmentFaultsWithoutMutating(t *testing.T) {
	wantError(t, "let a = [1, 2] a[0] = 9", errors.InvalidOperation, "Index assignment not yet implemented")
	wantNumber(t, `
		let a = [1, 2]
		try { a[0] = 9 } catch (e) { }
		a[0]`, 1)
}

func TestStringIndexing(t *testing.T) {
	wantString(t, `"hello"[1]`, "e")
	wantError(t, `"hi"[5]`, errors.InvalidOperation, "String index out of bounds")
	wantNumber(t, `len("héllo")`, 5)
}

func TestStringInterpolation(t *testing.T) {
	wantString(t, `let a = 2 let b = 3 f"${a} + ${b} = ${a + b}"`, "2 + 3 = 5")
	wantString(t, `f"plain"`, "plain")
	wantString(t, `let name = "nova" f"hi ${name}!"`, "hi nova!")
	wantString(t, `f"n=${1.0 + 1.0}"`, "n=2")
}

func TestClasses(t *testing.T) {
	wantNumber(t, `
		class Point {
			fn constructor(x, y) {
				this.x = x
				this.y = y
			}
			fn sum() { this.x + this.y }
		}
		let p = new Point(3, 4)
		p.sum()`, 7)
	wantNumber(t, `
		class Counter {
			fn constructor() { this.n = 0 }
			fn incr() { this.n = this.n + 1 }
		}
		let c = Counter()
		c.incr()
		c.incr()
		c.n`, 2)
	wantError(t, "new Missing()", errors.ReferenceError, "Undefined variable: Missing")
	wantError(t, "let x = 5 new x()", errors.TypeError, "Cannot instantiate non-class")
	wantError(t, `
		class A { fn m() { 1 } }
		let a = new A()
		a.nope()`, errors.InvalidOperation, "Method 'nope' not found")
}

func TestInstancesAreByReference(t *testing.T) {
	wantNumber(t, `
		class Box { fn constructor(v) { this.v = v } }
		let a = new Box(1)
		let b = a
		b.v = 42
		a.v`, 42)
}

func TestThisInNestedCalls(t *testing.T) {
	// A helper called inside a method still sees the receiver.
	wantNumber(t, `
		fn helper() { this.x * 2 }
		class C {
			fn constructor() { this.x = 21 }
			fn go() { helper() }
		}
		let c = new C()
		c.go()`, 42)
	wantError(t, "this", errors.InvalidOperation, "'this' used outside class method")
}

func TestStaticMethods(t *testing.T) {
	wantNumber(t, `
		class MathUtil {
			static fn square(x) { x * x }
		}
		MathUtil.square(6)`, 36)
	wantError(t, `
		class C { fn m() { 1 } }
		C.m()`, errors.InvalidOperation, "Static method 'm' not found")
	// Statics never see an instance receiver.
	wantError(t, `
		class C { static fn s() { this.x } }
		C.s()`, errors.InvalidOperation, "'this' used outside class method")
}

func TestInheritance(t *testing.T) {
	wantString(t, `
		class Animal {
			fn constructor(name) { this.name = name }
			fn speak() { this.name + " makes a sound" }
		}
		class Dog extends Animal {
			fn speak() { this.name + " barks" }
		}
		let d = new Dog("rex")
		d.speak()`, "rex barks")
	// Methods resolve through the superclass chain.
	wantString(t, `
		class Animal {
			fn constructor(name) { this.name = name }
			fn describe() { "I am " + this.name }
		}
		class Cat extends Animal { }
		let c = new Cat("tom")
		c.describe()`, "I am tom")
	wantError(t, "class D extends Nope { }", errors.ReferenceError, "Undefined superclass")
	wantError(t, "let x = 1 class D extends x { }", errors.TypeError, "Superclass must be a class")
}

func TestSuper(t *testing.T) {
	wantString(t, `
		class Animal {
			fn speak() { "generic sound" }
		}
		class Dog extends Animal {
			fn speak() { super.speak() + " and barking" }
		}
		new Dog().speak()`, "generic sound and barking")
	wantNumber(t, `
		class Base {
			fn constructor(a) { this.a = a }
		}
		class Derived extends Base {
			fn constructor(a, b) {
				super(a)
				this.b = b
			}
		}
		let d = new Derived(3, 4)
		d.a + d.b`, 7)
	wantError(t, "super.x()", errors.InvalidOperation, "'super' used outside")
}

func TestThrowAndCatch(t *testing.T) {
	wantString(t, `
		try { throw "boom" } catch (e) { e.message }`, "boom")
	wantString(t, `
		try { throw "boom" } catch (e) { e.type }`, "UserThrown")
	wantString(t, `
		try { 1 / 0 } catch (e) { e.type }`, "DivisionByZero")
	wantString(t, `
		try { missing_var } catch (e) { e.type }`, "ReferenceError")
	// Thrown non-strings stringify into the message.
	wantString(t, `
		try { throw 42 } catch (e) { e.message }`, "42")
	wantError(t, `throw "unhandled"`, errors.UserThrown, "unhandled")
}

func TestCatchVariableScoping(t *testing.T) {
	// A prior binding of the catch variable is restored.
	wantNumber(t, `
		let e = 5
		try { throw "x" } catch (e) { }
		e`, 5)
	// Without a prior binding the variable stays defined.
	wantString(t, `
		try { throw "kept" } catch (err) { }
		err.message`, "kept")
}

func TestFinally(t *testing.T) {
	// finally runs for side effects on both paths
	wantNumber(t, `
		let log = 0
		try { 1 } finally { log = log + 1 }
		log`, 1)
	wantNumber(t, `
		let log = 0
		try { throw "x" } catch (e) { } finally { log = log + 1 }
		log`, 1)
	// finally value is discarded
	wantNumber(t, `try { 7 } finally { 99 }`, 7)
	// finally runs before an uncaught error propagates
	wantError(t, `
		let n = 0
		try { throw "up" } finally { n = 1 }`, errors.UserThrown, "up")
}

func TestSignalsPassThroughTry(t *testing.T) {
	wantNumber(t, `
		fn f() {
			try { return 1 } catch (e) { return 2 }
		}
		f()`, 1)
	wantNumber(t, `
		let n = 0
		while true {
			try { break } catch (e) { }
			n = 1
		}
		n`, 0)
}

func TestAwait(t *testing.T) {
	wantNumber(t, "await promise_resolve(5)", 5)
	wantError(t, `await promise_reject("nope")`, errors.RuntimeError, "nope")
	wantError(t, "await promise_pending()", errors.RuntimeError, "pending promise")
	wantError(t, "await 5", errors.TypeError, "Cannot await non-promise")
}

func TestAsyncFunctions(t *testing.T) {
	wantString(t, `async fn f() { 1 } type(f())`, "promise")
	wantNumber(t, "async fn f() { return 6 * 7 } await f()", 42)
	// A throwing async body settles into a rejected promise.
	wantError(t, `
		async fn f() { throw "async boom" }
		await f()`, errors.RuntimeError, "async boom")
}

func TestIfExpressionValue(t *testing.T) {
	wantNumber(t, "let v = if 1 < 2 { 10 } else { 20 } v", 10)
	wantBool(t, "(if false { 1 }) == null", true)
	wantNumber(t, "let w = while false { 1 } 0", 0)
}
