// internal/interp/value.go
package interp

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"nova/internal/parser"
)

// Value is a Nova runtime value. Concrete representations:
//
//	nil               null
//	float64           number
//	string            string
//	bool              boolean
//	*Array            array
//	*Object           object
//	*Function         user function / lambda / method
//	*NativeFunction   built-in function
//	*Class            class
//	*Instance         class instance
//	*Set              set handle
//	*Promise          async placeholder
type Value interface{}

type Array struct {
	Elements []Value
}

type Object struct {
	Fields map[string]Value
}

type Function struct {
	Name    string // empty for lambdas
	Params  []string
	Body    parser.Expr
	Closure *Environment
	IsAsync bool
}

// NativeFunction is a built-in resolved through the environment like
// any other binding. Arity -1 means variadic.
type NativeFunction struct {
	Name  string
	Arity int
	Fn    func(args []Value) (Value, error)
}

type Class struct {
	Name        string
	Superclass  *Class
	Constructor *Function
	Methods     map[string]*Function
	Statics     map[string]*Function
}

// Instance fields are shared by reference: every holder of the same
// instance sees field writes.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

type Set struct {
	items map[string]Value
}

func NewSet() *Set {
	return &Set{items: make(map[string]Value)}
}

func (s *Set) Add(v Value)      { s.items[setKey(v)] = v }
func (s *Set) Remove(v Value)   { delete(s.items, setKey(v)) }
func (s *Set) Has(v Value) bool { _, ok := s.items[setKey(v)]; return ok }
func (s *Set) Len() int         { return len(s.items) }

// Values returns the members in a stable order.
func (s *Set) Values() []Value {
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Value, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.items[k])
	}
	return out
}

func setKey(v Value) string {
	return TypeName(v) + ":" + FormatValue(v)
}

type PromiseState int

const (
	PromisePending PromiseState = iota
	PromiseResolved
	PromiseRejected
)

type Promise struct {
	State   PromiseState
	Value   Value  // resolved value
	Message string // rejection message
}

// Truthy reports Nova truthiness: false, null, 0, "", empty array and
// empty object are falsy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	case *Array:
		return len(val.Elements) > 0
	case *Object:
		return len(val.Fields) > 0
	default:
		return true
	}
}

func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "null"
	case float64:
		return "number"
	case string:
		return "string"
	case bool:
		return "boolean"
	case *Array:
		return "array"
	case *Object:
		return "object"
	case *Function, *NativeFunction:
		return "function"
	case *Class:
		return "class"
	case *Instance:
		return "instance"
	case *Set:
		return "set"
	case *Promise:
		return "promise"
	default:
		return "unknown"
	}
}

// FormatValue renders a value the way print shows it. Integral
// numbers print without a decimal point.
func FormatValue(v Value) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(val)
	case string:
		return val
	case *Array:
		parts := make([]string, len(val.Elements))
		for i, el := range val.Elements {
			parts[i] = quoteStrings(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Object:
		keys := make([]string, 0, len(val.Fields))
		for k := range val.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + quoteStrings(val.Fields[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Function:
		if val.Name != "" {
			return "<fn " + val.Name + ">"
		}
		return "<fn>"
	case *NativeFunction:
		return "<native fn " + val.Name + ">"
	case *Class:
		return "<class " + val.Name + ">"
	case *Instance:
		return "<" + val.Class.Name + " instance>"
	case *Set:
		parts := make([]string, 0, val.Len())
		for _, el := range val.Values() {
			parts = append(parts, quoteStrings(el))
		}
		return "set{" + strings.Join(parts, ", ") + "}"
	case *Promise:
		switch val.State {
		case PromiseResolved:
			return "<promise resolved>"
		case PromiseRejected:
			return "<promise rejected>"
		default:
			return "<promise pending>"
		}
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// quoteStrings formats nested values inside containers, quoting
// strings so ["a"] does not print as [a].
func quoteStrings(v Value) string {
	if s, ok := v.(string); ok {
		return "\"" + s + "\""
	}
	return FormatValue(v)
}

// ValuesEqual implements ==. Primitives, arrays and objects compare
// structurally; functions, classes, instances, sets and promises
// compare by identity.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case *Array:
		bv, ok := b.(*Array)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !ValuesEqual(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv, ok := b.(*Object)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for k, v := range av.Fields {
			other, present := bv.Fields[k]
			if !present || !ValuesEqual(v, other) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
