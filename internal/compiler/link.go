package compiler

import (
	"fmt"

	"sierra2casm/internal/casm"
)

// Linked is the final instruction stream of a program.
type Linked struct {
	Instructions []casm.Instruction
	// StatementPC is the pc of each statement's first instruction, or -1 for
	// statements no function reaches.
	StatementPC []int
}

// Link lays statements out in program order and points every relocated jump
// at its target statement.
func Link(p *Program, stmts map[StatementID]CompiledStatement) (Linked, error) {
	out := Linked{StatementPC: make([]int, len(p.Statements))}
	instrStart := make([]int, len(p.Statements))
	pc := 0
	for i := range p.Statements {
		cs, ok := stmts[StatementID(i)]
		if !ok {
			out.StatementPC[i] = -1
			instrStart[i] = -1
			continue
		}
		out.StatementPC[i] = pc
		instrStart[i] = len(out.Instructions)
		out.Instructions = append(out.Instructions, cs.Instructions...)
		pc += cs.Size()
	}
	for i := range p.Statements {
		cs, ok := stmts[StatementID(i)]
		if !ok {
			continue
		}
		for _, r := range cs.Relocations {
			if r.Instruction < 0 || r.Instruction >= len(cs.Instructions) {
				return Linked{}, fmt.Errorf("statement %d: relocation of missing instruction %d", i, r.Instruction)
			}
			if r.Target < 0 || int(r.Target) >= len(p.Statements) || out.StatementPC[r.Target] < 0 {
				return Linked{}, fmt.Errorf("statement %d: relocation to statement %d without code", i, r.Target)
			}
			from := out.StatementPC[i]
			for _, in := range cs.Instructions[:r.Instruction] {
				from += in.Size()
			}
			out.Instructions[instrStart[i]+r.Instruction].SetRelativeTarget(int64(out.StatementPC[r.Target] - from))
		}
	}
	return out, nil
}
