package stdlib

import (
	"testing"

	"nova/internal/module"
)

// These run the bundled std/ modules through the real loader.

func TestStdMath(t *testing.T) {
	i := newInterp(t)
	i.SetResolver(module.NewLoader("../.."))

	run(t, i, `import "math" as m`)
	wantNumber(t, run(t, i, `m.min(3, 7)`), 3)
	wantNumber(t, run(t, i, `m.max(3, 7)`), 7)
	wantNumber(t, run(t, i, `m.clamp(12, 0, 10)`), 10)
	wantNumber(t, run(t, i, `m.floor(3.7)`), 3)
	wantNumber(t, run(t, i, `m.floor(-3.5)`), -4)
	wantNumber(t, run(t, i, `m.ceil(3.2)`), 4)
	wantNumber(t, run(t, i, `m.round(2.5)`), 3)
	wantNumber(t, run(t, i, `m.sum([1, 2, 3, 4])`), 10)
	wantNumber(t, run(t, i, `m.mean([2, 4, 6])`), 4)
}

func TestStdStrings(t *testing.T) {
	i := newInterp(t)
	i.SetResolver(module.NewLoader("../.."))

	run(t, i, `import "strings" as s`)
	wantBool(t, run(t, i, `s.starts_with("nova", "no")`), true)
	wantBool(t, run(t, i, `s.ends_with("nova", "va")`), true)
	wantBool(t, run(t, i, `s.starts_with("no", "nova")`), false)
	wantString(t, run(t, i, `s.repeat("ab", 3)`), "ababab")
	wantString(t, run(t, i, `s.pad_left("7", 3, "0")`), "007")
	wantString(t, run(t, i, `s.reverse_string("abc")`), "cba")
}
