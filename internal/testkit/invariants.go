// Package testkit holds invariant checks shared by tests of several packages.
package testkit

import (
	"fmt"

	"sierra2casm/internal/casm"
	"sierra2casm/internal/invocations"
	"sierra2casm/internal/lowering"
)

// CheckFallthroughs verifies that every Fallthrough end targets the next
// block and that no block has two fallthrough predecessors.
func CheckFallthroughs(f *lowering.FlatLowered) error {
	if f == nil {
		return fmt.Errorf("nil function")
	}
	preds := make(map[lowering.BlockID]int)
	for i, b := range f.Blocks {
		if b.End.Kind != lowering.EndFallthrough {
			continue
		}
		if b.End.Target != lowering.BlockID(i+1) {
			return fmt.Errorf("blk%d falls through to blk%d", i, b.End.Target)
		}
		preds[b.End.Target]++
		if preds[b.End.Target] > 1 {
			return fmt.Errorf("blk%d has two fallthrough predecessors", b.End.Target)
		}
	}
	return nil
}

// CheckCompiledInvocation verifies the shape of a lowered invocation:
// one result per branch, non-negative ap changes, and relocations that
// each patch a distinct relative jump inside the instruction list.
func CheckCompiledInvocation(ci invocations.CompiledInvocation, branches int) error {
	if len(ci.Results) != branches {
		return fmt.Errorf("%d branch results, want %d", len(ci.Results), branches)
	}
	for i, r := range ci.Results {
		if r.ApChange < 0 {
			return fmt.Errorf("branch %d: negative ap change %d", i, r.ApChange)
		}
	}
	patched := make(map[int]bool, len(ci.Relocations))
	for _, rel := range ci.Relocations {
		if rel.Instruction < 0 || rel.Instruction >= len(ci.Instructions) {
			return fmt.Errorf("relocation at %d outside %d instructions", rel.Instruction, len(ci.Instructions))
		}
		if patched[rel.Instruction] {
			return fmt.Errorf("instruction %d relocated twice", rel.Instruction)
		}
		patched[rel.Instruction] = true
		if err := checkRelativeJump(ci.Instructions[rel.Instruction]); err != nil {
			return fmt.Errorf("relocation at %d: %w", rel.Instruction, err)
		}
	}
	return nil
}

// CheckLinked verifies that every relative jump or call of a linked stream
// lands on the start of an instruction.
func CheckLinked(code []casm.Instruction) error {
	starts := make(map[int64]bool, len(code))
	pcs := make([]int64, len(code))
	var pc int64
	for i, in := range code {
		starts[pc] = true
		pcs[i] = pc
		pc += int64(in.Size())
	}
	for i, in := range code {
		if in.Kind != casm.InstrJump && in.Kind != casm.InstrJnz && in.Kind != casm.InstrCall {
			continue
		}
		if err := checkRelativeJump(in); err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
		off, _ := in.Target.Imm.Int64()
		if dst := pcs[i] + off; !starts[dst] {
			return fmt.Errorf("instruction %d (%s) jumps to pc %d, not an instruction start", i, in, dst)
		}
	}
	return nil
}

func checkRelativeJump(in casm.Instruction) error {
	switch in.Kind {
	case casm.InstrJump, casm.InstrJnz, casm.InstrCall:
	default:
		return fmt.Errorf("%s is not a jump", in)
	}
	if !in.Relative || !in.Target.IsImmediate {
		return fmt.Errorf("%s is not a relative jump", in)
	}
	if _, ok := in.Target.Imm.Int64(); !ok {
		return fmt.Errorf("%s has an offset outside int64", in)
	}
	return nil
}
