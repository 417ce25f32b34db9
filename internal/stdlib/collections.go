package stdlib

import (
	"nova/internal/errors"
	"nova/internal/interp"
)

// RegisterCollectionFunctions installs the set_* natives. Set handles
// mutate in place, unlike the array natives.
func RegisterCollectionFunctions(i *interp.Interpreter) {
	register := func(name string, arity int, fn func(args []interp.Value) (interp.Value, error)) {
		i.Register(&interp.NativeFunction{Name: name, Arity: arity, Fn: fn})
	}

	setArg := func(name string, v interp.Value) (*interp.Set, error) {
		s, ok := v.(*interp.Set)
		if !ok {
			return nil, errors.Newf(errors.TypeError, "%s requires a set", name)
		}
		return s, nil
	}

	register("set_from", 1, func(args []interp.Value) (interp.Value, error) {
		arr, ok := args[0].(*interp.Array)
		if !ok {
			return nil, errors.New(errors.TypeError, "set_from requires an array")
		}
		s := interp.NewSet()
		for _, el := range arr.Elements {
			s.Add(el)
		}
		return s, nil
	})

	register("set_add", 2, func(args []interp.Value) (interp.Value, error) {
		s, err := setArg("set_add", args[0])
		if err != nil {
			return nil, err
		}
		s.Add(args[1])
		return s, nil
	})

	register("set_has", 2, func(args []interp.Value) (interp.Value, error) {
		s, err := setArg("set_has", args[0])
		if err != nil {
			return nil, err
		}
		return s.Has(args[1]), nil
	})

	register("set_remove", 2, func(args []interp.Value) (interp.Value, error) {
		s, err := setArg("set_remove", args[0])
		if err != nil {
			return nil, err
		}
		s.Remove(args[1])
		return s, nil
	})

	register("set_values", 1, func(args []interp.Value) (interp.Value, error) {
		s, err := setArg("set_values", args[0])
		if err != nil {
			return nil, err
		}
		return &interp.Array{Elements: s.Values()}, nil
	})

	register("set_len", 1, func(args []interp.Value) (interp.Value, error) {
		s, err := setArg("set_len", args[0])
		if err != nil {
			return nil, err
		}
		return float64(s.Len()), nil
	})

	register("set_union", 2, func(args []interp.Value) (interp.Value, error) {
		a, err := setArg("set_union", args[0])
		if err != nil {
			return nil, err
		}
		b, err := setArg("set_union", args[1])
		if err != nil {
			return nil, err
		}
		out := interp.NewSet()
		for _, v := range a.Values() {
			out.Add(v)
		}
		for _, v := range b.Values() {
			out.Add(v)
		}
		return out, nil
	})

	register("set_intersect", 2, func(args []interp.Value) (interp.Value, error) {
		a, err := setArg("set_intersect", args[0])
		if err != nil {
			return nil, err
		}
		b, err := setArg("set_intersect", args[1])
		if err != nil {
			return nil, err
		}
		out := interp.NewSet()
		for _, v := range a.Values() {
			if b.Has(v) {
				out.Add(v)
			}
		}
		return out, nil
	})
}
