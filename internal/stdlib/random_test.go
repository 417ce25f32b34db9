package stdlib

import "testing"

func TestRandSeedIsDeterministic(t *testing.T) {
	a := newInterp(t)
	b := newInterp(t)
	seq := `
		rand_seed(42)
		let xs = [rand_float(), rand_float(), rand_int(1, 100)]
		xs
	`
	got := run(t, a, seq)
	want := run(t, b, seq)
	if !interpEqual(got, want) {
		t.Errorf("sequences differ: %v vs %v", got, want)
	}
}

func TestRandIntBounds(t *testing.T) {
	i := newInterp(t)
	run(t, i, `rand_seed(7)`)
	for iter := 0; iter < 100; iter++ {
		v := run(t, i, `rand_int(3, 5)`)
		n, ok := v.(float64)
		if !ok || n < 3 || n > 5 {
			t.Fatalf("rand_int(3, 5) = %v", v)
		}
		if n != float64(int64(n)) {
			t.Fatalf("rand_int returned non-integer %v", n)
		}
	}
	if err := runErr(t, i, `rand_int(5, 3)`); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestRandChoiceAndShuffle(t *testing.T) {
	i := newInterp(t)
	wantBool(t, run(t, i, `
		rand_seed(1)
		let items = [10, 20, 30]
		contains(items, rand_choice(items))
	`), true)
	if err := runErr(t, i, `rand_choice([])`); err == nil {
		t.Error("expected error for empty array")
	}

	// shuffle returns a permutation and leaves the input alone
	wantBool(t, run(t, i, `
		let xs = [1, 2, 3, 4, 5]
		let ys = rand_shuffle(xs)
		sort(ys) == xs and xs == [1, 2, 3, 4, 5]
	`), true)
}

func TestUUID(t *testing.T) {
	i := newInterp(t)
	wantNumber(t, run(t, i, `len(uuid())`), 36)
	wantBool(t, run(t, i, `uuid() == uuid()`), false)
}
