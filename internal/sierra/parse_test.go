package sierra

import "testing"

func TestParseTemplateArg(t *testing.T) {
	arg, err := ParseTemplateArg("-3")
	if err != nil || arg.Kind != ArgValue || arg.Value != -3 {
		t.Fatalf("got %v, %v", arg, err)
	}

	ty, err := ParseType("Tuple<felt, Array<felt>, Tuple<>>")
	if err == nil {
		t.Fatalf("empty argument list must be rejected, got %v", ty)
	}

	ty, err = ParseType(" Tuple< felt ,Array<felt> > ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := AsTuple([]TemplateArg{TypeArg(FeltType()), TypeArg(ArrayType(FeltType()))})
	if !ty.Equal(want) {
		t.Fatalf("got %s, want %s", ty, want)
	}
	if ty.String() != "Tuple<felt, Array<felt>>" {
		t.Fatalf("unexpected canonical form %q", ty.String())
	}
}

func TestParseTypeErrors(t *testing.T) {
	for _, src := range []string{"", "Tuple<felt", "Tuple<felt;", "5", "felt>"} {
		if _, err := ParseType(src); err == nil {
			t.Errorf("%q: expected error", src)
		}
	}
}

func TestParseNormalizesIdentifiers(t *testing.T) {
	composed, err := ParseType("caf\u00e9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decomposed, err := ParseType("cafe\u0301")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !composed.Equal(decomposed) {
		t.Fatalf("NFC forms must intern equal: %q vs %q", composed.Name, decomposed.Name)
	}
}

func TestAssignableToDeferred(t *testing.T) {
	g := GasBuiltinType()
	if !g.AssignableTo(AsDeferred(g)) {
		t.Fatalf("materialized value must bind a deferred parameter")
	}
	if AsDeferred(g).AssignableTo(g) {
		t.Fatalf("deferred value must not bind a materialized parameter")
	}
}
