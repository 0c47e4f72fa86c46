package layout_test

import (
	"errors"
	"testing"

	"sierra2casm/internal/layout"
	"sierra2casm/internal/sierra"
)

func TestBuiltinSizes(t *testing.T) {
	reg := layout.Builtin()
	cases := map[string]int{
		"felt":                            1,
		"GasBuiltin":                      1,
		"Array<felt>":                     2,
		"Tuple":                           0,
		"Tuple<felt, Array<felt>>":        3,
		"Tuple<Tuple<felt>, Tuple>":       1,
		"Deferred<Tuple<felt, felt>>":     2,
		"Tuple<GasBuiltin, System, felt>": 3,
	}
	for src, want := range cases {
		ty, err := sierra.ParseType(src)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		got, err := reg.Size(ty)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", src, err)
		}
		if got != want {
			t.Errorf("%s: size %d, want %d", src, got, want)
		}
	}
}

func TestUnknownType(t *testing.T) {
	_, err := layout.Builtin().Size(sierra.MustParseType("Tuple<felt, Mystery>"))
	var lerr *layout.Error
	if !errors.As(err, &lerr) || lerr.Kind != layout.ErrUnknownType {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestProviderArgErrorsPropagate(t *testing.T) {
	_, err := layout.Builtin().Size(sierra.MustParseType("Array<felt, felt>"))
	if !errors.Is(err, sierra.ErrWrongNumberOfTypeArgs) {
		t.Fatalf("expected WrongNumberOfTypeArgs, got %v", err)
	}
	_, err = layout.Builtin().Size(sierra.MustParseType("Tuple<3>"))
	if !errors.Is(err, sierra.ErrUnsupportedTypeArg) {
		t.Fatalf("expected UnsupportedTypeArg, got %v", err)
	}
}

func TestRecursiveProviderReportsCycle(t *testing.T) {
	reg := layout.Builtin().With("Loop", layout.ProviderFunc(func(_ []sierra.TemplateArg, types layout.Sizer) (layout.TypeInfo, error) {
		return types.Info(sierra.MustParseType("Tuple<felt, Loop>"))
	}))
	_, err := reg.Size(sierra.AsType("Loop"))
	var lerr *layout.Error
	if !errors.As(err, &lerr) || lerr.Kind != layout.ErrRecursiveType {
		t.Fatalf("expected recursive type error, got %v", err)
	}
	if len(lerr.Cycle) != 3 {
		t.Fatalf("expected cycle Loop -> Tuple -> Loop, got %v", lerr.Cycle)
	}
}

func TestWithDoesNotMutateOriginal(t *testing.T) {
	base := layout.Builtin()
	ext := base.With("Pair", layout.FixedSize(2))
	if base.Known("Pair") {
		t.Fatalf("With must not mutate the receiver")
	}
	if !ext.Known("Pair") {
		t.Fatalf("extended registry must know Pair")
	}
}
