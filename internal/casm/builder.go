package casm

import (
	"fmt"
	"sort"
)

// Fallthrough names the branch that continues after the last instruction.
const Fallthrough = "Fallthrough"

// Var is a handle to a value tracked by a Builder.
type Var int

type state struct {
	vars     []ResOperand
	apChange int
}

func (s state) clone() state {
	return state{vars: append([]ResOperand(nil), s.vars...), apChange: s.apChange}
}

// BranchState is the builder state on leaving through one label.
type BranchState struct {
	vars     []ResOperand
	ApChange int
}

// Value is the expression of v on this branch, relative to its ap.
func (b BranchState) Value(v Var) ResOperand {
	if int(v) < 0 || int(v) >= len(b.vars) {
		panic(fmt.Sprintf("casm: var %d does not exist on this branch", v))
	}
	return b.vars[v]
}

// Relocation is a relative jump whose label is outside the built stream.
type Relocation struct {
	Instruction int
	Label       string
}

// Result is the output of Builder.Build.
type Result struct {
	Instructions []Instruction
	Branches     map[string]BranchState
	Awaiting     []Relocation
}

// BranchLabels lists the labels of Branches in sorted order.
func (r Result) BranchLabels() []string {
	out := make([]string, 0, len(r.Branches))
	for l := range r.Branches {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

type jump struct {
	instr int
	label string
	st    state
}

// Builder assembles a straight-line stream of instructions with forward
// labels, tracking every variable's expression as ap moves. Misuse (reading
// a non-cell as a cell, emitting into unreachable code, duplicate labels,
// inconsistent ap at a join) panics.
type Builder struct {
	cur       state
	reachable bool
	ins       []Instruction
	pcs       []int
	pc        int
	hints     []Hint
	labelPC   map[string]int
	labelSt   map[string]state
	jumps     []jump
}

func NewBuilder() *Builder {
	return &Builder{
		reachable: true,
		labelPC:   make(map[string]int),
		labelSt:   make(map[string]state),
	}
}

// AddVar starts tracking an existing expression.
func (b *Builder) AddVar(r ResOperand) Var {
	b.cur.vars = append(b.cur.vars, r)
	return Var(len(b.cur.vars) - 1)
}

// Const introduces an immediate.
func (b *Builder) Const(f Felt) Var { return b.AddVar(Immediate(f)) }

// Alias snapshots the current expression of v under a new handle.
func (b *Builder) Alias(v Var) Var { return b.AddVar(b.Value(v)) }

// Value is the current expression of v.
func (b *Builder) Value(v Var) ResOperand {
	if int(v) < 0 || int(v) >= len(b.cur.vars) {
		panic(fmt.Sprintf("casm: unknown var %d", v))
	}
	return b.cur.vars[v]
}

// ApChange is how far ap moved since the builder started.
func (b *Builder) ApChange() int { return b.cur.apChange }

func (b *Builder) cell(v Var) CellRef {
	r := b.Value(v)
	if r.Kind != ResDeref {
		panic(fmt.Sprintf("casm: var %d is %s, not a cell", v, r))
	}
	return r.Cell
}

// NextTemp names [ap + 0] without writing it; a later BumpAp or tempvar
// allocates it.
func (b *Builder) NextTemp() Var {
	return b.AddVar(Deref(CellRef{Register: AP, Offset: 0}))
}

// TempVar copies the value of v into a fresh ap cell: [ap + 0] = v, ap++.
func (b *Builder) TempVar(v Var) Var {
	b.push(b.Value(v))
	return b.AddVar(Deref(CellRef{Register: AP, Offset: -1}))
}

func (b *Builder) push(res ResOperand) {
	in := AssertEq(CellRef{Register: AP, Offset: 0}, res)
	in.IncAp = true
	b.emit(in)
}

func (b *Builder) buffer(buf Var) (CellRef, int16) {
	r := b.Value(buf)
	switch {
	case r.Kind == ResDeref:
		return r.Cell, 0
	case r.Kind == ResBinOp && r.Op == OpAdd && r.B.IsImmediate:
		off, ok := r.B.Imm.Int64()
		if !ok || off < -1<<15 || off >= 1<<15 {
			panic(fmt.Sprintf("casm: buffer offset %s out of range", r.B.Imm))
		}
		return r.Cell, int16(off)
	default:
		panic(fmt.Sprintf("casm: var %d is %s, not a buffer", buf, r))
	}
}

// next reads *(buf++) and advances buf.
func (b *Builder) next(buf Var) ResOperand {
	cell, off := b.buffer(buf)
	if off == 1<<15-1 {
		panic("casm: buffer offset overflow")
	}
	b.cur.vars[buf] = BinOp(OpAdd, cell, ImmOperandInt(int64(off)+1))
	return DoubleDeref(cell, off)
}

// AssertToBuffer emits assert v = *(buf++).
func (b *Builder) AssertToBuffer(v, buf Var) {
	dst := b.cell(v)
	b.emit(AssertEq(dst, b.next(buf)))
}

// LetFromBuffer binds let v = *(buf++) without emitting code.
func (b *Builder) LetFromBuffer(buf Var) Var {
	return b.AddVar(b.next(buf))
}

// TempVarFromBuffer emits tempvar v = *(buf++).
func (b *Builder) TempVarFromBuffer(buf Var) Var {
	b.push(b.next(buf))
	return b.AddVar(Deref(CellRef{Register: AP, Offset: -1}))
}

// Hint queues a hint for the next emitted instruction. SystemCall takes the
// system pointer; TestLessThanOrEqual takes lhs, rhs and a destination cell.
func (b *Builder) Hint(kind HintKind, vars ...Var) {
	switch kind {
	case HintSystemCall:
		if len(vars) != 1 {
			panic("casm: SystemCall hint takes one var")
		}
		b.hints = append(b.hints, Hint{Kind: kind, System: b.Value(vars[0])})
	case HintTestLessThanOrEqual:
		if len(vars) != 3 {
			panic("casm: TestLessThanOrEqual hint takes lhs, rhs and dst")
		}
		b.hints = append(b.hints, Hint{Kind: kind, Lhs: b.Value(vars[0]), Rhs: b.Value(vars[1]), Dst: b.cell(vars[2])})
	default:
		panic(fmt.Sprintf("casm: unknown hint kind %d", kind))
	}
}

// BumpAp emits ap += n.
func (b *Builder) BumpAp(n int) {
	b.emit(AddAp(int64(n)))
}

// JumpIfNonZero emits jmp label if cond != 0.
func (b *Builder) JumpIfNonZero(label string, cond Var) {
	b.emit(JnzRel(0, b.cell(cond)))
	b.recordJump(label)
}

// Jump emits an unconditional jmp label. Code after it is unreachable until
// the next Label.
func (b *Builder) Jump(label string) {
	b.emit(JumpRel(0))
	b.recordJump(label)
	b.reachable = false
}

// Ret emits ret. Code after it is unreachable until the next Label.
func (b *Builder) Ret() {
	b.emit(Ret())
	b.reachable = false
}

func (b *Builder) recordJump(label string) {
	if label == Fallthrough {
		panic("casm: cannot jump to " + Fallthrough)
	}
	st := b.cur.clone()
	if known, ok := b.labelSt[label]; ok && known.apChange != st.apChange {
		panic(fmt.Sprintf("casm: jump to %s with ap change %d, label has %d", label, st.apChange, known.apChange))
	}
	b.jumps = append(b.jumps, jump{instr: len(b.ins) - 1, label: label, st: st})
}

// Label defines label at the current position.
func (b *Builder) Label(label string) {
	if _, ok := b.labelPC[label]; ok || label == Fallthrough {
		panic("casm: duplicate label " + label)
	}
	var incoming []state
	for _, j := range b.jumps {
		if j.label == label {
			incoming = append(incoming, j.st)
		}
	}
	if !b.reachable {
		if len(incoming) == 0 {
			panic("casm: label " + label + " is unreachable")
		}
		b.cur = incoming[0].clone()
		b.reachable = true
	}
	for _, st := range incoming {
		if st.apChange != b.cur.apChange {
			panic(fmt.Sprintf("casm: label %s joins ap changes %d and %d", label, st.apChange, b.cur.apChange))
		}
	}
	b.labelPC[label] = b.pc
	b.labelSt[label] = b.cur.clone()
}

func (b *Builder) emit(in Instruction) {
	if !b.reachable {
		panic("casm: instruction in unreachable code")
	}
	in.Hints = b.hints
	b.hints = nil
	b.ins = append(b.ins, in)
	b.pcs = append(b.pcs, b.pc)
	b.pc += in.Size()
	if d, ok := in.ApChange(); ok && d != 0 {
		b.bump(d)
	}
}

func (b *Builder) bump(n int) {
	for i, r := range b.cur.vars {
		shifted, err := r.ApplyApChange(n)
		if err != nil {
			panic(fmt.Sprintf("casm: %v", err))
		}
		b.cur.vars[i] = shifted
	}
	b.cur.apChange += n
}

// Build resolves jumps to labels defined in the stream and reports the state
// at every other exit.
func (b *Builder) Build() Result {
	if len(b.hints) > 0 {
		panic("casm: hints without an instruction")
	}
	res := Result{
		Instructions: append([]Instruction(nil), b.ins...),
		Branches:     make(map[string]BranchState),
	}
	for _, j := range b.jumps {
		if pc, ok := b.labelPC[j.label]; ok {
			res.Instructions[j.instr].SetRelativeTarget(int64(pc - b.pcs[j.instr]))
			continue
		}
		if prev, ok := res.Branches[j.label]; ok && prev.ApChange != j.st.apChange {
			panic(fmt.Sprintf("casm: exits to %s disagree on ap change", j.label))
		}
		res.Branches[j.label] = BranchState{vars: j.st.vars, ApChange: j.st.apChange}
		res.Awaiting = append(res.Awaiting, Relocation{Instruction: j.instr, Label: j.label})
	}
	if b.reachable {
		st := b.cur.clone()
		res.Branches[Fallthrough] = BranchState{vars: st.vars, ApChange: st.apChange}
	}
	return res
}
