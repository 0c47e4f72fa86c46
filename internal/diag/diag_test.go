package diag

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"sierra2casm/internal/compiler"
	"sierra2casm/internal/invocations"
	"sierra2casm/internal/layout"
	"sierra2casm/internal/sierra"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{
			name: "invocation wins over wrapped sierra error",
			err: &invocations.InvocationError{
				Kind: invocations.InvalidReferenceExpression,
				Err:  sierra.Errorf(sierra.KindLocationsNonConsecutive, "gap"),
			},
			want: InvInvalidReferenceExpression,
		},
		{
			name: "compiler sentinel inside statement error",
			err:  &compiler.Error{Function: "f", Statement: 2, Err: fmt.Errorf("%w: x", compiler.ErrTypeMismatch)},
			want: CmpTypeMismatch,
		},
		{"gas budget", fmt.Errorf("wrap: %w", compiler.ErrGasBudget), GasBudget},
		{"layout", &layout.Error{Kind: layout.ErrUnknownType, Type: sierra.AsType("Foo")}, SigUnknownType},
		{"sierra", sierra.Errorf(sierra.KindWrongNumberOfTypeArgs, "want 1"), SigWrongNumberOfTypeArgs},
		{"unknown", errors.New("plain"), UnknownCode},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got.ID(), tc.want.ID())
		}
	}
}

func TestFromErrorLocations(t *testing.T) {
	err := errors.Join(
		&compiler.Error{Function: "withdraw", Statement: 3, Err: &invocations.InvocationError{
			Kind: invocations.InvalidGenericArg, Libfunc: "get_gas", Detail: "cost must be positive",
		}},
		&compiler.Error{Function: "withdraw", Statement: -1, Err: compiler.ErrGasCycle},
	)
	diags := FromError("prog.toml", err)
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics", len(diags))
	}
	got := FormatShortDiagnostics(diags, true)
	want := "error GAS4001 prog.toml:withdraw cycle in statement graph\n" +
		"error INV2003 prog.toml:withdraw#3 get_gas: invalid generic argument: cost must be positive\n" +
		"note INV2003 prog.toml:withdraw#3 while lowering get_gas"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(8)
	loc := func(fn string, st int) Location { return Location{File: "p", Function: fn, Statement: st} }
	b.Add(NewError(CmpTypeMismatch, loc("b", 1), "x"))
	b.Add(New(SevWarning, CmpBadTarget, loc("a", 4), "y"))
	b.Add(NewError(CmpBadTarget, loc("a", 4), "z"))
	b.Add(NewError(CmpTypeMismatch, loc("b", 1), "x"))
	b.Dedup()
	b.Sort()
	items := b.Items()
	if len(items) != 3 {
		t.Fatalf("dedup left %d items", len(items))
	}
	if items[0].Message != "z" || items[1].Message != "y" || items[2].Primary.Function != "b" {
		t.Fatalf("order: %+v", items)
	}
	if !b.HasErrors() {
		t.Fatalf("HasErrors = false")
	}
	small := NewBag(1)
	small.Add(items[0])
	if small.Add(items[1]) {
		t.Fatalf("limit ignored")
	}
}

func TestPrettyWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	d := NewError(InvUnknownLibfunc, Location{File: "p.toml", Function: "main", Statement: 0}, "unknown libfunc: felt_sqrt").
		WithNote(FileLocation("p.toml"), "see `sierra2casm libfuncs`")
	if err := Pretty(&buf, []Diagnostic{d}, false); err != nil {
		t.Fatal(err)
	}
	want := "error[INV2004]: unknown libfunc: felt_sqrt\n" +
		"  --> p.toml: fn main: statement 0\n" +
		"  note: see `sierra2casm libfuncs`\n"
	if buf.String() != want {
		t.Fatalf("got %q", buf.String())
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("escape codes in colorless output")
	}
}

func TestCodeIDs(t *testing.T) {
	if SigWrongNumberOfTypeArgs.ID() != "SIG1001" || IOLoadFailed.ID() != "IO5001" || LowMalformedCFG.ID() != "LOW6001" {
		t.Fatalf("ids drifted")
	}
	if Code(9999).Title() != "Unknown error" {
		t.Fatalf("unknown title")
	}
}
