package stdlib

import (
	"time"

	"nova/internal/errors"
	"nova/internal/interp"
)

// RegisterDatetimeFunctions installs the datetime_* natives. Times
// cross into scripts as objects or millisecond timestamps.
func RegisterDatetimeFunctions(i *interp.Interpreter) {
	register := func(name string, arity int, fn func(args []interp.Value) (interp.Value, error)) {
		i.Register(&interp.NativeFunction{Name: name, Arity: arity, Fn: fn})
	}

	register("datetime_now", 0, func(args []interp.Value) (interp.Value, error) {
		return timeObject(time.Now()), nil
	})

	register("datetime_iso", 1, func(args []interp.Value) (interp.Value, error) {
		t, err := timestampArg("datetime_iso", args[0])
		if err != nil {
			return nil, err
		}
		return t.UTC().Format(time.RFC3339), nil
	})

	register("datetime_add", 3, func(args []interp.Value) (interp.Value, error) {
		t, err := timestampArg("datetime_add", args[0])
		if err != nil {
			return nil, err
		}
		amount, ok1 := args[1].(float64)
		unit, ok2 := args[2].(string)
		if !ok1 || !ok2 {
			return nil, errors.New(errors.TypeError, "datetime_add requires a number amount and string unit")
		}
		n := int(amount)
		switch unit {
		case "seconds":
			t = t.Add(time.Duration(n) * time.Second)
		case "minutes":
			t = t.Add(time.Duration(n) * time.Minute)
		case "hours":
			t = t.Add(time.Duration(n) * time.Hour)
		case "days":
			t = t.AddDate(0, 0, n)
		case "months":
			t = t.AddDate(0, n, 0)
		case "years":
			t = t.AddDate(n, 0, 0)
		default:
			return nil, errors.Newf(errors.InvalidOperation, "datetime_add: unknown unit '%s'", unit)
		}
		return float64(t.UnixMilli()), nil
	})

	register("datetime_diff", 2, func(args []interp.Value) (interp.Value, error) {
		a, err := timestampArg("datetime_diff", args[0])
		if err != nil {
			return nil, err
		}
		b, err := timestampArg("datetime_diff", args[1])
		if err != nil {
			return nil, err
		}
		return float64(a.Sub(b).Milliseconds()), nil
	})
}

func timeObject(t time.Time) *interp.Object {
	return &interp.Object{Fields: map[string]interp.Value{
		"year":      float64(t.Year()),
		"month":     float64(t.Month()),
		"day":       float64(t.Day()),
		"hour":      float64(t.Hour()),
		"minute":    float64(t.Minute()),
		"second":    float64(t.Second()),
		"weekday":   t.Weekday().String(),
		"timestamp": float64(t.UnixMilli()),
	}}
}

// timestampArg accepts a millisecond timestamp or a datetime_now
// object.
func timestampArg(name string, v interp.Value) (time.Time, error) {
	switch val := v.(type) {
	case float64:
		return time.UnixMilli(int64(val)), nil
	case *interp.Object:
		if ts, ok := val.Fields["timestamp"].(float64); ok {
			return time.UnixMilli(int64(ts)), nil
		}
	}
	return time.Time{}, errors.Newf(errors.TypeError, "%s requires a timestamp or datetime object", name)
}
