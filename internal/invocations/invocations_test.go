package invocations

import (
	"errors"
	"testing"

	"sierra2casm/internal/casm"
	"sierra2casm/internal/extensions"
	"sierra2casm/internal/sierra"
)

func fp(off int16) casm.CellRef { return casm.CellRef{Register: casm.FP, Offset: off} }
func ap(off int16) casm.CellRef { return casm.CellRef{Register: casm.AP, Offset: off} }

func deref(c casm.CellRef) ReferenceExpression { return FromCell(casm.Deref(c)) }

func compile(t *testing.T, inv Invocation) CompiledInvocation {
	t.Helper()
	out, err := Compile(DefaultContext(), inv)
	if err != nil {
		t.Fatalf("%s: %v", inv.Libfunc, err)
	}
	return out
}

func next() []BranchTarget { return []BranchTarget{FallthroughTarget()} }

func TestCallContract(t *testing.T) {
	out := compile(t, Invocation{
		Libfunc: extensions.CallContract,
		Refs: []ReferenceExpression{
			deref(ap(-5)),
			deref(fp(-3)),
			deref(ap(-3)),
			FromCells(casm.Deref(ap(-2)), casm.Deref(ap(-1))),
		},
		Branches: []BranchTarget{FallthroughTarget(), StatementTarget(7)},
	})

	want := []string{
		"[ap + 0] = " + callContractSelector.String() + ", ap++",
		"[ap + -1] = [[fp + -3] + 0]",
		"[ap + -6] = [[fp + -3] + 1]",
		"[ap + -4] = [[fp + -3] + 2]",
		"[ap + -3] = [[fp + -3] + 3]",
		"[ap + -2] = [[fp + -3] + 4]",
		"%{ syscall_handler.syscall(syscall_ptr=[fp + -3]) %}\n[ap + 0] = [[fp + -3] + 6], ap++",
		"jmp rel 0 if [ap + -1] != 0",
	}
	if len(out.Instructions) != len(want) {
		t.Fatalf("got %d instructions:\n%s", len(out.Instructions), casm.Format(out.Instructions))
	}
	for i, w := range want {
		if got := out.Instructions[i].String(); got != w {
			t.Errorf("instruction %d: got %q, want %q", i, got, w)
		}
	}
	if len(out.Relocations) != 1 || out.Relocations[0] != (Relocation{Instruction: 7, Target: 7}) {
		t.Fatalf("relocations = %+v", out.Relocations)
	}
	if len(out.Results) != 2 {
		t.Fatalf("got %d branches", len(out.Results))
	}

	gas := FromCell(casm.DoubleDeref(fp(-3), 5))
	system := FromCell(casm.BinOp(casm.OpAdd, fp(-3), casm.ImmOperandInt(9)))
	result := FromCells(casm.DoubleDeref(fp(-3), 7), casm.DoubleDeref(fp(-3), 8))
	success := []ReferenceExpression{gas, system, result}
	failure := []ReferenceExpression{gas, system, deref(ap(-1)), result}
	for i, want := range [][]ReferenceExpression{success, failure} {
		br := out.Results[i]
		if br.ApChange != 2 {
			t.Errorf("branch %d: ap change %d, want 2", i, br.ApChange)
		}
		if len(br.Refs) != len(want) {
			t.Fatalf("branch %d: %d refs, want %d", i, len(br.Refs), len(want))
		}
		for j := range want {
			if !br.Refs[j].Equal(want[j]) {
				t.Errorf("branch %d ref %d: got %s, want %s", i, j, br.Refs[j], want[j])
			}
		}
	}
}

func TestCallContractRejectsBadSystem(t *testing.T) {
	_, err := Compile(DefaultContext(), Invocation{
		Libfunc: extensions.CallContract,
		Refs: []ReferenceExpression{
			deref(ap(-5)),
			FromCell(casm.ImmediateInt(3)),
			deref(ap(-3)),
			FromCells(casm.Deref(ap(-2)), casm.Deref(ap(-1))),
		},
		Branches: []BranchTarget{FallthroughTarget(), StatementTarget(7)},
	})
	if !errors.Is(err, ErrInvalidReferenceExpression) {
		t.Fatalf("expected InvalidReferenceExpression, got %v", err)
	}
}

func TestGetGas(t *testing.T) {
	out := compile(t, Invocation{
		Libfunc:  extensions.GetGas,
		Args:     []sierra.TemplateArg{sierra.ValueArg(5)},
		Refs:     []ReferenceExpression{deref(ap(-1))},
		Branches: []BranchTarget{StatementTarget(4), FallthroughTarget()},
	})
	if len(out.Instructions) != 2 || out.Instructions[0].Kind != casm.InstrAddAp || out.Instructions[1].Kind != casm.InstrJnz {
		t.Fatalf("instructions:\n%s", casm.Format(out.Instructions))
	}
	if h := out.Instructions[0].Hints; len(h) != 1 || h[0].Kind != casm.HintTestLessThanOrEqual || h[0].Dst != ap(0) {
		t.Fatalf("hints = %+v", h)
	}
	if len(out.Relocations) != 1 || out.Relocations[0] != (Relocation{Instruction: 1, Target: 4}) {
		t.Fatalf("relocations = %+v", out.Relocations)
	}
	if out.Size() != 4 {
		t.Fatalf("size = %d, want 4", out.Size())
	}
	success, fail := out.Results[0], out.Results[1]
	if success.ApChange != 1 || !success.Refs[0].Equal(FromCell(casm.BinOp(casm.OpAdd, ap(-2), casm.ImmOperandInt(-5)))) {
		t.Fatalf("success = %+v", success)
	}
	if fail.ApChange != 1 || !fail.Refs[0].Equal(deref(ap(-2))) {
		t.Fatalf("failure = %+v", fail)
	}
}

func TestGetGasBranchTargets(t *testing.T) {
	_, err := Compile(DefaultContext(), Invocation{
		Libfunc:  extensions.GetGas,
		Args:     []sierra.TemplateArg{sierra.ValueArg(5)},
		Refs:     []ReferenceExpression{deref(ap(-1))},
		Branches: []BranchTarget{FallthroughTarget(), StatementTarget(4)},
	})
	if err == nil {
		t.Fatalf("expected error for swapped branch targets")
	}
}

func TestContractAddressConst(t *testing.T) {
	for _, c := range []int64{0, -1} {
		_, err := Compile(DefaultContext(), Invocation{
			Libfunc:  extensions.ContractAddressConst,
			Args:     []sierra.TemplateArg{sierra.ValueArg(c)},
			Branches: next(),
		})
		if !errors.Is(err, ErrInvalidGenericArg) {
			t.Errorf("address %d: expected InvalidGenericArg, got %v", c, err)
		}
	}
	out := compile(t, Invocation{
		Libfunc:  extensions.ContractAddressConst,
		Args:     []sierra.TemplateArg{sierra.ValueArg(42)},
		Branches: next(),
	})
	if len(out.Instructions) != 0 || !out.Results[0].Refs[0].Equal(FromCell(casm.ImmediateInt(42))) {
		t.Fatalf("got %+v", out)
	}
}

func TestReferenceOnlyLowerings(t *testing.T) {
	felt := sierra.FeltType()
	arr := sierra.ArrayType(felt)
	cases := []struct {
		name string
		inv  Invocation
		want []ReferenceExpression
	}{
		{
			name: "refund_gas",
			inv: Invocation{
				Libfunc: extensions.RefundGas,
				Args:    []sierra.TemplateArg{sierra.ValueArg(3)},
				Refs:    []ReferenceExpression{deref(fp(-3))},
			},
			want: []ReferenceExpression{FromCell(casm.BinOp(casm.OpAdd, fp(-3), casm.ImmOperandInt(3)))},
		},
		{
			name: "tuple_pack",
			inv: Invocation{
				Libfunc: extensions.TuplePack,
				Args:    []sierra.TemplateArg{sierra.TypeArg(felt), sierra.TypeArg(felt)},
				Refs:    []ReferenceExpression{deref(ap(-2)), deref(ap(-1))},
			},
			want: []ReferenceExpression{FromCells(casm.Deref(ap(-2)), casm.Deref(ap(-1)))},
		},
		{
			name: "tuple_unpack",
			inv: Invocation{
				Libfunc: extensions.TupleUnpack,
				Args:    []sierra.TemplateArg{sierra.TypeArg(felt), sierra.TypeArg(arr)},
				Refs:    []ReferenceExpression{FromCells(casm.Deref(fp(-5)), casm.Deref(fp(-4)), casm.Deref(fp(-3)))},
			},
			want: []ReferenceExpression{deref(fp(-5)), FromCells(casm.Deref(fp(-4)), casm.Deref(fp(-3)))},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.inv.Branches = next()
			out := compile(t, tc.inv)
			if len(out.Instructions) != 0 || len(out.Results) != 1 || out.Results[0].ApChange != 0 {
				t.Fatalf("got %+v", out)
			}
			refs := out.Results[0].Refs
			if len(refs) != len(tc.want) {
				t.Fatalf("got %d refs, want %d", len(refs), len(tc.want))
			}
			for i := range refs {
				if !refs[i].Equal(tc.want[i]) {
					t.Errorf("ref %d: got %s, want %s", i, refs[i], tc.want[i])
				}
			}
		})
	}
}

func TestReferenceOnlyRejectsScatteredCells(t *testing.T) {
	felt := sierra.FeltType()
	_, err := Compile(DefaultContext(), Invocation{
		Libfunc:  extensions.TuplePack,
		Args:     []sierra.TemplateArg{sierra.TypeArg(felt), sierra.TypeArg(felt)},
		Refs:     []ReferenceExpression{deref(ap(-3)), deref(ap(-1))},
		Branches: next(),
	})
	if !errors.Is(err, ErrInvalidReferenceExpression) {
		t.Fatalf("expected InvalidReferenceExpression, got %v", err)
	}
	if !errors.Is(err, sierra.ErrLocationsNonConsecutive) {
		t.Fatalf("expected the sierra cause to be kept, got %v", err)
	}
}

func TestStoreTemp(t *testing.T) {
	arr := sierra.ArrayType(sierra.FeltType())
	out := compile(t, Invocation{
		Libfunc:  extensions.StoreTemp,
		Args:     []sierra.TemplateArg{sierra.TypeArg(arr)},
		Refs:     []ReferenceExpression{FromCells(casm.Deref(fp(-4)), casm.BinOp(casm.OpAdd, ap(-1), casm.ImmOperandInt(2)))},
		Branches: next(),
	})
	want := []string{"[ap + 0] = [fp + -4], ap++", "[ap + 0] = [ap + -2] + 2, ap++"}
	for i, w := range want {
		if got := out.Instructions[i].String(); got != w {
			t.Errorf("instruction %d: got %q, want %q", i, got, w)
		}
	}
	br := out.Results[0]
	if br.ApChange != 2 || !br.Refs[0].Equal(FromCells(casm.Deref(ap(-2)), casm.Deref(ap(-1)))) {
		t.Fatalf("got %+v", br)
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile(DefaultContext(), Invocation{Libfunc: "felt_add", Branches: next()})
	if !errors.Is(err, ErrUnknownLibfunc) {
		t.Fatalf("expected UnknownLibfunc, got %v", err)
	}
	_, err = Compile(DefaultContext(), Invocation{
		Libfunc:  extensions.RefundGas,
		Args:     []sierra.TemplateArg{sierra.ValueArg(1)},
		Branches: next(),
	})
	if !errors.Is(err, ErrWrongNumberOfArguments) {
		t.Fatalf("expected WrongNumberOfArguments, got %v", err)
	}
	_, err = Compile(DefaultContext(), Invocation{
		Libfunc:  extensions.RefundGas,
		Args:     []sierra.TemplateArg{sierra.ValueArg(0)},
		Refs:     []ReferenceExpression{deref(fp(-3))},
		Branches: next(),
	})
	if !errors.Is(err, ErrInvalidGenericArg) || !errors.Is(err, sierra.ErrUnsupportedTypeArg) {
		t.Fatalf("expected InvalidGenericArg wrapping UnsupportedTypeArg, got %v", err)
	}
}
