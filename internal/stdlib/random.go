package stdlib

import (
	"time"

	"github.com/google/uuid"

	"nova/internal/errors"
	"nova/internal/interp"
)

// rng is a xorshift64* generator. Scripts get deterministic sequences
// after rand_seed, which the process-global source cannot offer.
type rng struct {
	state uint64
}

func newRNG() *rng {
	r := &rng{}
	r.seed(uint64(time.Now().UnixNano()))
	return r
}

func (r *rng) seed(s uint64) {
	if s == 0 {
		s = 0x9e3779b97f4a7c15
	}
	r.state = s
}

func (r *rng) next() uint64 {
	x := r.state
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	r.state = x
	return x * 0x2545f4914f6cdd1d
}

// float returns a value in [0, 1).
func (r *rng) float() float64 {
	return float64(r.next()>>11) / float64(1<<53)
}

// intn returns a value in [0, n).
func (r *rng) intn(n int64) int64 {
	return int64(r.next() % uint64(n))
}

// RegisterRandomFunctions installs the rand_* natives and uuid().
func RegisterRandomFunctions(i *interp.Interpreter) {
	gen := newRNG()
	register := func(name string, arity int, fn func(args []interp.Value) (interp.Value, error)) {
		i.Register(&interp.NativeFunction{Name: name, Arity: arity, Fn: fn})
	}

	register("rand_seed", 1, func(args []interp.Value) (interp.Value, error) {
		n, ok := args[0].(float64)
		if !ok {
			return nil, errors.New(errors.TypeError, "rand_seed requires a number")
		}
		gen.seed(uint64(int64(n)))
		return nil, nil
	})

	register("rand_float", 0, func(args []interp.Value) (interp.Value, error) {
		return gen.float(), nil
	})

	register("rand_int", 2, func(args []interp.Value) (interp.Value, error) {
		min, ok1 := args[0].(float64)
		max, ok2 := args[1].(float64)
		if !ok1 || !ok2 {
			return nil, errors.New(errors.TypeError, "rand_int requires two numbers")
		}
		lo, hi := int64(min), int64(max)
		if lo > hi {
			return nil, errors.New(errors.InvalidOperation, "rand_int: min greater than max")
		}
		return float64(lo + gen.intn(hi-lo+1)), nil
	})

	register("rand_choice", 1, func(args []interp.Value) (interp.Value, error) {
		arr, ok := args[0].(*interp.Array)
		if !ok {
			return nil, errors.New(errors.TypeError, "rand_choice requires an array")
		}
		if len(arr.Elements) == 0 {
			return nil, errors.New(errors.InvalidOperation, "rand_choice: empty array")
		}
		return arr.Elements[gen.intn(int64(len(arr.Elements)))], nil
	})

	register("rand_shuffle", 1, func(args []interp.Value) (interp.Value, error) {
		arr, ok := args[0].(*interp.Array)
		if !ok {
			return nil, errors.New(errors.TypeError, "rand_shuffle requires an array")
		}
		out := make([]interp.Value, len(arr.Elements))
		copy(out, arr.Elements)
		for n := len(out) - 1; n > 0; n-- {
			j := gen.intn(int64(n + 1))
			out[n], out[j] = out[j], out[n]
		}
		return &interp.Array{Elements: out}, nil
	})

	register("uuid", 0, func(args []interp.Value) (interp.Value, error) {
		return uuid.NewString(), nil
	})
}
