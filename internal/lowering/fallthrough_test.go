package lowering_test

import (
	"bytes"
	"strings"
	"testing"

	"sierra2casm/internal/lowering"
	"sierra2casm/internal/testkit"
)

func mustPanic(t *testing.T, fn func()) string {
	t.Helper()
	var msg string
	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatalf("expected panic")
			}
			msg, _ = r.(string)
		}()
		fn()
	}()
	return msg
}

// blk0 -> blk1 -> blk2 (return): both gotos become fallthroughs.
func TestAddFallthroughsChain(t *testing.T) {
	remap := lowering.VarRemapping{{Dst: 3, Src: 1}}
	f := &lowering.FlatLowered{Blocks: []lowering.FlatBlock{
		{End: lowering.Goto(1, remap)},
		{End: lowering.Goto(2, nil)},
		{End: lowering.Return(3)},
	}}
	lowering.AddFallthroughs(f)

	for i, want := range []lowering.EndKind{lowering.EndFallthrough, lowering.EndFallthrough, lowering.EndReturn} {
		if got := f.Blocks[i].End.Kind; got != want {
			t.Fatalf("blk%d: got %s, want %s", i, got, want)
		}
	}
	if r := f.Blocks[0].End.Remapping; len(r) != 1 || r[0] != (lowering.Remap{Dst: 3, Src: 1}) {
		t.Fatalf("remapping not kept: %+v", r)
	}
}

// Two gotos into blk3: the adjacent one falls through, the other stays a goto.
func TestAddFallthroughsJoin(t *testing.T) {
	f := &lowering.FlatLowered{Blocks: []lowering.FlatBlock{
		{End: lowering.Goto(1, nil)},
		{End: lowering.Goto(3, nil)},
		{End: lowering.Goto(3, nil)},
		{End: lowering.Return()},
	}}
	lowering.AddFallthroughs(f)
	want := []lowering.EndKind{lowering.EndFallthrough, lowering.EndGoto, lowering.EndFallthrough, lowering.EndReturn}
	for i := range want {
		if got := f.Blocks[i].End.Kind; got != want[i] {
			t.Fatalf("blk%d: got %s, want %s", i, got, want[i])
		}
	}
	if err := testkit.CheckFallthroughs(f); err != nil {
		t.Fatal(err)
	}
}

func TestAddFallthroughsNonAdjacent(t *testing.T) {
	f := &lowering.FlatLowered{Blocks: []lowering.FlatBlock{
		{End: lowering.Goto(2, nil)},
		{End: lowering.Unreachable()},
		{End: lowering.Return()},
	}}
	msg := mustPanic(t, func() { lowering.AddFallthroughs(f) })
	if !strings.Contains(msg, "should fall through") {
		t.Fatalf("unexpected panic: %q", msg)
	}
}

func TestAddFallthroughsDoubleFallthrough(t *testing.T) {
	f := &lowering.FlatLowered{Blocks: []lowering.FlatBlock{
		{End: lowering.Fallthrough(2, nil)},
		{End: lowering.Goto(2, nil)},
		{End: lowering.Return()},
	}}
	msg := mustPanic(t, func() { lowering.AddFallthroughs(f) })
	if !strings.Contains(msg, "unexpected fallthrough in blk0") {
		t.Fatalf("unexpected panic: %q", msg)
	}
}

func TestAddFallthroughsKeepsOtherEnds(t *testing.T) {
	f := &lowering.FlatLowered{Blocks: []lowering.FlatBlock{
		{End: lowering.Unreachable()},
		{},
		{End: lowering.Return(1, 2)},
	}}
	lowering.AddFallthroughs(f)
	if f.Blocks[0].End.Kind != lowering.EndUnreachable || f.Blocks[1].End.Kind != lowering.EndNotSet || len(f.Blocks[2].End.Returns) != 2 {
		t.Fatalf("ends changed: %+v", f.Blocks)
	}
	lowering.AddFallthroughs(nil)
}

func TestValidate(t *testing.T) {
	good := &lowering.FlatLowered{Name: "f", Blocks: []lowering.FlatBlock{
		{End: lowering.Goto(1, nil)},
		{End: lowering.Return()},
	}}
	if err := lowering.Validate(good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := &lowering.FlatLowered{Name: "g", Blocks: []lowering.FlatBlock{
		{End: lowering.Goto(5, nil)},
		{},
		{End: lowering.Fallthrough(0, nil)},
		{End: lowering.Goto(0, lowering.VarRemapping{{Dst: 1, Src: 2}, {Dst: 1, Src: 3}})},
	}}
	err := lowering.Validate(bad)
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"missing blk5", "not terminated", "non-adjacent blk0", "remapped twice", "function g"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestDump(t *testing.T) {
	f := &lowering.FlatLowered{Name: "main", Params: []lowering.VarID{0}, Blocks: []lowering.FlatBlock{
		{
			Statements: []lowering.FlatStatement{{Op: "felt_add", Inputs: []lowering.VarID{0, 0}, Outputs: []lowering.VarID{1}}},
			End:        lowering.Goto(1, lowering.VarRemapping{{Dst: 2, Src: 1}}),
		},
		{End: lowering.Return(2)},
	}}
	var buf bytes.Buffer
	if err := lowering.Dump(&buf, f); err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := "fn main(v0):\n" +
		"  blk0:\n" +
		"    (v1) <- felt_add(v0, v0)\n" +
		"    goto blk1 {v2 <- v1}\n" +
		"  blk1:\n" +
		"    return (v2)\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}
