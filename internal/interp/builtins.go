// internal/interp/builtins.go
package interp

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"nova/internal/errors"
)

// RegisterCoreFunctions installs the built-in surface every program
// and module starts with.
func RegisterCoreFunctions(i *Interpreter) {
	register := func(name string, arity int, fn func(args []Value) (Value, error)) {
		i.Register(&NativeFunction{Name: name, Arity: arity, Fn: fn})
	}

	// io / core
	register("print", 1, func(args []Value) (Value, error) {
		i.Println(args[0])
		return nil, nil
	})
	register("println", 1, func(args []Value) (Value, error) {
		i.Println(args[0])
		return nil, nil
	})
	register("input", 1, func(args []Value) (Value, error) {
		fmt.Fprint(i.stdout, FormatValue(args[0]))
		line, err := i.ReadLine()
		if err != nil {
			return nil, errors.Newf(errors.RuntimeError, "Cannot read input: %v", err)
		}
		return strings.TrimSpace(line), nil
	})
	register("type", 1, func(args []Value) (Value, error) {
		return TypeName(args[0]), nil
	})
	register("str", 1, func(args []Value) (Value, error) {
		return FormatValue(args[0]), nil
	})
	register("num", 1, func(args []Value) (Value, error) {
		switch v := args[0].(type) {
		case float64:
			return v, nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, errors.New(errors.InvalidOperation, "Cannot convert string to number")
			}
			return n, nil
		case bool:
			if v {
				return 1.0, nil
			}
			return 0.0, nil
		}
		return nil, errors.New(errors.TypeError, "Cannot convert value to number")
	})
	register("bool", 1, func(args []Value) (Value, error) {
		return Truthy(args[0]), nil
	})
	register("len", 1, func(args []Value) (Value, error) {
		switch v := args[0].(type) {
		case string:
			return float64(len([]rune(v))), nil
		case *Array:
			return float64(len(v.Elements)), nil
		case *Object:
			return float64(len(v.Fields)), nil
		case *Set:
			return float64(v.Len()), nil
		}
		return nil, errors.New(errors.TypeError, "len can only be applied to strings and arrays")
	})

	// arrays: clone-then-return, the argument is never mutated
	register("push", 2, func(args []Value) (Value, error) {
		arr, ok := args[0].(*Array)
		if !ok {
			return nil, errors.New(errors.TypeError, "push can only be applied to arrays")
		}
		out := &Array{Elements: make([]Value, len(arr.Elements), len(arr.Elements)+1)}
		copy(out.Elements, arr.Elements)
		out.Elements = append(out.Elements, args[1])
		return out, nil
	})
	register("pop", 1, func(args []Value) (Value, error) {
		arr, ok := args[0].(*Array)
		if !ok {
			return nil, errors.New(errors.TypeError, "pop can only be applied to arrays")
		}
		if len(arr.Elements) == 0 {
			return nil, nil
		}
		return arr.Elements[len(arr.Elements)-1], nil
	})
	register("reverse", 1, func(args []Value) (Value, error) {
		switch v := args[0].(type) {
		case *Array:
			out := &Array{Elements: make([]Value, len(v.Elements))}
			for i, el := range v.Elements {
				out.Elements[len(v.Elements)-1-i] = el
			}
			return out, nil
		case string:
			runes := []rune(v)
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			return string(runes), nil
		}
		return nil, errors.New(errors.TypeError, "reverse can only be applied to arrays and strings")
	})
	register("sort", 1, func(args []Value) (Value, error) {
		arr, ok := args[0].(*Array)
		if !ok {
			return nil, errors.New(errors.TypeError, "sort can only be applied to arrays")
		}
		out := &Array{Elements: make([]Value, len(arr.Elements))}
		copy(out.Elements, arr.Elements)
		var sortErr error
		sort.SliceStable(out.Elements, func(a, b int) bool {
			switch av := out.Elements[a].(type) {
			case float64:
				if bv, ok := out.Elements[b].(float64); ok {
					return av < bv
				}
			case string:
				if bv, ok := out.Elements[b].(string); ok {
					return av < bv
				}
			}
			sortErr = errors.New(errors.TypeError, "sort requires an array of numbers or strings")
			return false
		})
		if sortErr != nil {
			return nil, sortErr
		}
		return out, nil
	})

	// objects
	register("keys", 1, func(args []Value) (Value, error) {
		obj, ok := args[0].(*Object)
		if !ok {
			return nil, errors.New(errors.TypeError, "keys can only be applied to objects")
		}
		names := make([]string, 0, len(obj.Fields))
		for k := range obj.Fields {
			names = append(names, k)
		}
		sort.Strings(names)
		out := &Array{Elements: make([]Value, 0, len(names))}
		for _, k := range names {
			out.Elements = append(out.Elements, k)
		}
		return out, nil
	})
	register("values", 1, func(args []Value) (Value, error) {
		obj, ok := args[0].(*Object)
		if !ok {
			return nil, errors.New(errors.TypeError, "values can only be applied to objects")
		}
		names := make([]string, 0, len(obj.Fields))
		for k := range obj.Fields {
			names = append(names, k)
		}
		sort.Strings(names)
		out := &Array{Elements: make([]Value, 0, len(names))}
		for _, k := range names {
			out.Elements = append(out.Elements, obj.Fields[k])
		}
		return out, nil
	})

	// json
	register("json_parse", 1, func(args []Value) (Value, error) {
		s, ok := args[0].(string)
		if !ok {
			return nil, errors.New(errors.TypeError, "json_parse requires a string")
		}
		var raw interface{}
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return nil, errors.Newf(errors.InvalidOperation, "Invalid JSON: %v", err)
		}
		return fromJSON(raw), nil
	})
	register("json_stringify", 1, func(args []Value) (Value, error) {
		data, err := json.Marshal(toJSON(args[0]))
		if err != nil {
			return nil, errors.Newf(errors.InvalidOperation, "Cannot serialize value: %v", err)
		}
		return string(data), nil
	})

	// files
	register("read_file", 1, func(args []Value) (Value, error) {
		path, ok := args[0].(string)
		if !ok {
			return nil, errors.New(errors.TypeError, "read_file requires a string path")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Newf(errors.RuntimeError, "Cannot read file '%s': %v", path, err)
		}
		return string(data), nil
	})
	register("write_file", 2, func(args []Value) (Value, error) {
		path, ok := args[0].(string)
		if !ok {
			return nil, errors.New(errors.TypeError, "write_file requires a string path")
		}
		content, ok := args[1].(string)
		if !ok {
			content = FormatValue(args[1])
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, errors.Newf(errors.RuntimeError, "Cannot write file '%s': %v", path, err)
		}
		return nil, nil
	})
	register("exists", 1, func(args []Value) (Value, error) {
		path, ok := args[0].(string)
		if !ok {
			return nil, errors.New(errors.TypeError, "exists requires a string path")
		}
		_, err := os.Stat(path)
		return err == nil, nil
	})

	// math
	register("abs", 1, numberFn("abs", math.Abs))
	register("sin", 1, numberFn("sin", math.Sin))
	register("cos", 1, numberFn("cos", math.Cos))
	register("sqrt", 1, func(args []Value) (Value, error) {
		n, ok := args[0].(float64)
		if !ok {
			return nil, errors.New(errors.TypeError, "sqrt() requires a number")
		}
		if n < 0 {
			return nil, errors.New(errors.InvalidOperation, "sqrt() of negative number")
		}
		return math.Sqrt(n), nil
	})
	register("pow", 2, func(args []Value) (Value, error) {
		base, ok1 := args[0].(float64)
		exp, ok2 := args[1].(float64)
		if !ok1 || !ok2 {
			return nil, errors.New(errors.TypeError, "pow() requires numbers")
		}
		return math.Pow(base, exp), nil
	})

	// strings
	register("substr", 3, func(args []Value) (Value, error) {
		s, ok := args[0].(string)
		if !ok {
			return nil, errors.New(errors.TypeError, "substr requires a string")
		}
		start, ok1 := args[1].(float64)
		length, ok2 := args[2].(float64)
		if !ok1 || !ok2 {
			return nil, errors.New(errors.TypeError, "substr requires numeric start and length")
		}
		runes := []rune(s)
		from := int(start)
		if from < 0 || from > len(runes) {
			return nil, errors.New(errors.InvalidOperation, "String index out of bounds")
		}
		to := from + int(length)
		if to > len(runes) {
			to = len(runes)
		}
		if to < from {
			to = from
		}
		return string(runes[from:to]), nil
	})
	register("upper", 1, stringFn("upper", strings.ToUpper))
	register("lower", 1, stringFn("lower", strings.ToLower))
	register("trim", 1, stringFn("trim", strings.TrimSpace))
	register("split", 2, func(args []Value) (Value, error) {
		s, ok1 := args[0].(string)
		sep, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, errors.New(errors.TypeError, "split requires two strings")
		}
		parts := strings.Split(s, sep)
		out := &Array{Elements: make([]Value, 0, len(parts))}
		for _, p := range parts {
			out.Elements = append(out.Elements, p)
		}
		return out, nil
	})
	register("join", 2, func(args []Value) (Value, error) {
		arr, ok1 := args[0].(*Array)
		sep, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, errors.New(errors.TypeError, "join requires an array and a string")
		}
		parts := make([]string, 0, len(arr.Elements))
		for _, el := range arr.Elements {
			parts = append(parts, FormatValue(el))
		}
		return strings.Join(parts, sep), nil
	})
	register("contains", 2, func(args []Value) (Value, error) {
		switch v := args[0].(type) {
		case string:
			sub, ok := args[1].(string)
			if !ok {
				return nil, errors.New(errors.TypeError, "contains on a string requires a string needle")
			}
			return strings.Contains(v, sub), nil
		case *Array:
			for _, el := range v.Elements {
				if ValuesEqual(el, args[1]) {
					return true, nil
				}
			}
			return false, nil
		}
		return nil, errors.New(errors.TypeError, "contains can only be applied to strings and arrays")
	})

	// time
	register("now", 0, func(args []Value) (Value, error) {
		return float64(time.Now().UnixMilli()), nil
	})
	register("sleep", 1, func(args []Value) (Value, error) {
		ms, ok := args[0].(float64)
		if !ok {
			return nil, errors.New(errors.TypeError, "sleep requires a number of milliseconds")
		}
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return nil, nil
	})

	// regex
	register("regex_match", 2, regexFn(func(re *regexp.Regexp, s string, _ []Value) (Value, error) {
		return re.MatchString(s), nil
	}))
	register("regex_find", 2, regexFn(func(re *regexp.Regexp, s string, _ []Value) (Value, error) {
		m := re.FindString(s)
		if m == "" && !re.MatchString(s) {
			return nil, nil
		}
		return m, nil
	}))
	register("regex_find_all", 2, regexFn(func(re *regexp.Regexp, s string, _ []Value) (Value, error) {
		out := &Array{}
		for _, m := range re.FindAllString(s, -1) {
			out.Elements = append(out.Elements, m)
		}
		return out, nil
	}))
	register("regex_split", 2, regexFn(func(re *regexp.Regexp, s string, _ []Value) (Value, error) {
		out := &Array{}
		for _, p := range re.Split(s, -1) {
			out.Elements = append(out.Elements, p)
		}
		return out, nil
	}))
	register("regex_replace", 3, func(args []Value) (Value, error) {
		pattern, ok1 := args[0].(string)
		s, ok2 := args[1].(string)
		repl, ok3 := args[2].(string)
		if !ok1 || !ok2 || !ok3 {
			return nil, errors.New(errors.TypeError, "regex_replace requires three strings")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, errors.Newf(errors.InvalidOperation, "Invalid regex '%s': %v", pattern, err)
		}
		return re.ReplaceAllString(s, repl), nil
	})

	// promises
	register("promise_resolve", 1, func(args []Value) (Value, error) {
		return &Promise{State: PromiseResolved, Value: args[0]}, nil
	})
	register("promise_reject", 1, func(args []Value) (Value, error) {
		msg, ok := args[0].(string)
		if !ok {
			msg = FormatValue(args[0])
		}
		return &Promise{State: PromiseRejected, Message: msg}, nil
	})
	register("promise_pending", 0, func(args []Value) (Value, error) {
		return &Promise{State: PromisePending}, nil
	})
}

func numberFn(name string, fn func(float64) float64) func(args []Value) (Value, error) {
	return func(args []Value) (Value, error) {
		n, ok := args[0].(float64)
		if !ok {
			return nil, errors.Newf(errors.TypeError, "%s() requires a number", name)
		}
		return fn(n), nil
	}
}

func stringFn(name string, fn func(string) string) func(args []Value) (Value, error) {
	return func(args []Value) (Value, error) {
		s, ok := args[0].(string)
		if !ok {
			return nil, errors.Newf(errors.TypeError, "%s requires a string", name)
		}
		return fn(s), nil
	}
}

func regexFn(fn func(re *regexp.Regexp, s string, args []Value) (Value, error)) func(args []Value) (Value, error) {
	return func(args []Value) (Value, error) {
		pattern, ok1 := args[0].(string)
		s, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, errors.New(errors.TypeError, "regex functions require string arguments")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, errors.Newf(errors.InvalidOperation, "Invalid regex '%s': %v", pattern, err)
		}
		return fn(re, s, args)
	}
}

// fromJSON converts decoded JSON into runtime values.
func fromJSON(raw interface{}) Value {
	switch v := raw.(type) {
	case nil:
		return nil
	case bool:
		return v
	case float64:
		return v
	case string:
		return v
	case []interface{}:
		arr := &Array{Elements: make([]Value, 0, len(v))}
		for _, el := range v {
			arr.Elements = append(arr.Elements, fromJSON(el))
		}
		return arr
	case map[string]interface{}:
		obj := &Object{Fields: make(map[string]Value, len(v))}
		for k, el := range v {
			obj.Fields[k] = fromJSON(el)
		}
		return obj
	}
	return nil
}

// toJSON converts runtime values to a JSON-encodable shape. Values
// with no JSON form serialize as their printed representation.
func toJSON(v Value) interface{} {
	switch val := v.(type) {
	case nil, bool, float64, string:
		return val
	case *Array:
		out := make([]interface{}, 0, len(val.Elements))
		for _, el := range val.Elements {
			out = append(out, toJSON(el))
		}
		return out
	case *Object:
		out := make(map[string]interface{}, len(val.Fields))
		for k, el := range val.Fields {
			out[k] = toJSON(el)
		}
		return out
	case *Instance:
		out := make(map[string]interface{}, len(val.Fields))
		for k, el := range val.Fields {
			out[k] = toJSON(el)
		}
		return out
	default:
		return FormatValue(v)
	}
}
