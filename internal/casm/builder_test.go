package casm

import (
	"testing"
)

func fp(off int16) CellRef { return CellRef{Register: FP, Offset: off} }
func ap(off int16) CellRef { return CellRef{Register: AP, Offset: off} }

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestBuilderLabels(t *testing.T) {
	b := NewBuilder()
	x := b.AddVar(Deref(fp(-3)))
	tmp := b.TempVar(x)
	b.JumpIfNonZero("Done", tmp)
	b.Jump("Exit")
	b.Label("Done")
	u := b.TempVar(b.Const(FeltFromInt64(7)))
	res := b.Build()

	if len(res.Instructions) != 4 {
		t.Fatalf("got %d instructions:\n%s", len(res.Instructions), Format(res.Instructions))
	}
	if off, _ := res.Instructions[1].Target.Imm.Int64(); off != 4 {
		t.Fatalf("jnz offset = %d, want 4", off)
	}
	if len(res.Awaiting) != 1 || res.Awaiting[0] != (Relocation{Instruction: 2, Label: "Exit"}) {
		t.Fatalf("awaiting = %+v", res.Awaiting)
	}
	exit := res.Branches["Exit"]
	if exit.ApChange != 1 || !exit.Value(tmp).Equal(Deref(ap(-1))) || !exit.Value(x).Equal(Deref(fp(-3))) {
		t.Fatalf("exit state: ap %d, tmp %s, x %s", exit.ApChange, exit.Value(tmp), exit.Value(x))
	}
	ft, ok := res.Branches[Fallthrough]
	if !ok {
		t.Fatalf("missing fallthrough branch")
	}
	if ft.ApChange != 2 || !ft.Value(tmp).Equal(Deref(ap(-2))) || !ft.Value(u).Equal(Deref(ap(-1))) {
		t.Fatalf("fallthrough state: ap %d, tmp %s, u %s", ft.ApChange, ft.Value(tmp), ft.Value(u))
	}
	if got := res.BranchLabels(); len(got) != 2 || got[0] != "Exit" || got[1] != Fallthrough {
		t.Fatalf("labels = %v", got)
	}
}

func TestBuilderBuffer(t *testing.T) {
	b := NewBuilder()
	sys := b.AddVar(Deref(fp(-4)))
	v := b.AddVar(Deref(ap(-1)))
	orig := b.Alias(sys)
	b.AssertToBuffer(v, sys)
	r := b.LetFromBuffer(sys)
	b.Hint(HintSystemCall, orig)
	tv := b.TempVarFromBuffer(sys)
	res := b.Build()

	if len(res.Instructions) != 2 {
		t.Fatalf("got %d instructions", len(res.Instructions))
	}
	if got := res.Instructions[0].String(); got != "[ap + -1] = [[fp + -4] + 0]" {
		t.Fatalf("assert = %q", got)
	}
	second := res.Instructions[1]
	if len(second.Hints) != 1 || !second.Hints[0].System.Equal(Deref(fp(-4))) {
		t.Fatalf("hints = %+v", second.Hints)
	}
	if !second.Res.Equal(DoubleDeref(fp(-4), 2)) || !second.IncAp {
		t.Fatalf("tempvar = %s", second)
	}
	ft := res.Branches[Fallthrough]
	if !ft.Value(sys).Equal(BinOp(OpAdd, fp(-4), ImmOperandInt(3))) {
		t.Fatalf("sys = %s", ft.Value(sys))
	}
	if !ft.Value(r).Equal(DoubleDeref(fp(-4), 1)) || !ft.Value(tv).Equal(Deref(ap(-1))) || !ft.Value(v).Equal(Deref(ap(-2))) {
		t.Fatalf("r = %s, tv = %s, v = %s", ft.Value(r), ft.Value(tv), ft.Value(v))
	}
}

func TestBuilderBumpAp(t *testing.T) {
	b := NewBuilder()
	g := b.AddVar(Deref(ap(-1)))
	flag := b.NextTemp()
	b.Hint(HintTestLessThanOrEqual, b.Const(FeltFromInt64(5)), g, flag)
	b.BumpAp(1)
	b.JumpIfNonZero("Success", flag)
	res := b.Build()

	if got := res.Instructions[0]; got.Kind != InstrAddAp || got.Size() != 2 || len(got.Hints) != 1 {
		t.Fatalf("first instruction = %s", got)
	}
	if res.Instructions[0].Hints[0].Dst != ap(0) {
		t.Fatalf("hint dst = %s", res.Instructions[0].Hints[0].Dst)
	}
	if res.Instructions[1].Dst != ap(-1) {
		t.Fatalf("jnz cond = %s", res.Instructions[1].Dst)
	}
	for _, label := range []string{"Success", Fallthrough} {
		st := res.Branches[label]
		if st.ApChange != 1 || !st.Value(g).Equal(Deref(ap(-2))) {
			t.Fatalf("%s: ap %d, g %s", label, st.ApChange, st.Value(g))
		}
	}
}

func TestBuilderMisuse(t *testing.T) {
	mustPanic(t, "cell of immediate", func() {
		b := NewBuilder()
		b.JumpIfNonZero("L", b.Const(FeltFromInt64(1)))
	})
	mustPanic(t, "emit after jump", func() {
		b := NewBuilder()
		b.Jump("L")
		b.BumpAp(1)
	})
	mustPanic(t, "unreachable label", func() {
		b := NewBuilder()
		b.Jump("L")
		b.Label("M")
	})
	mustPanic(t, "duplicate label", func() {
		b := NewBuilder()
		b.Label("L")
		b.Label("L")
	})
	mustPanic(t, "ap mismatch at join", func() {
		b := NewBuilder()
		c := b.AddVar(Deref(fp(-3)))
		b.JumpIfNonZero("L", c)
		b.BumpAp(2)
		b.Label("L")
	})
	mustPanic(t, "dangling hint", func() {
		b := NewBuilder()
		b.Hint(HintSystemCall, b.AddVar(Deref(fp(-3))))
		b.Build()
	})
}

func TestInstructionText(t *testing.T) {
	in := AssertEq(ap(0), BinOp(OpAdd, fp(-3), ImmOperandInt(-5)))
	in.IncAp = true
	if got, want := in.String(), "[ap + 0] = [fp + -3] + -5, ap++"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if in.Size() != 2 {
		t.Fatalf("size = %d, want 2", in.Size())
	}
	if got := JnzRel(6, ap(-1)).String(); got != "jmp rel 6 if [ap + -1] != 0" {
		t.Fatalf("jnz = %q", got)
	}
	if Ret().Size() != 1 || Ret().String() != "ret" {
		t.Fatalf("ret = %q", Ret())
	}
}
