package invocations

import (
	"fmt"

	"sierra2casm/internal/casm"
	"sierra2casm/internal/extensions"
	"sierra2casm/internal/layout"
	"sierra2casm/internal/sierra"
)

// StatementID indexes a statement of the program.
type StatementID int

// Relocation patches a relative jump at Instruction to land on Target.
type Relocation struct {
	Instruction int
	Target      StatementID
}

// BranchChanges is the state on leaving through one branch: the references
// of the branch results and how far ap moved.
type BranchChanges struct {
	Refs     []ReferenceExpression
	ApChange int
}

// CompiledInvocation is the lowered form of one libfunc call.
type CompiledInvocation struct {
	Instructions []casm.Instruction
	Relocations  []Relocation
	Results      []BranchChanges
}

// Size is the encoded length of the instructions in words.
func (c CompiledInvocation) Size() int {
	n := 0
	for _, in := range c.Instructions {
		n += in.Size()
	}
	return n
}

// BranchTarget says where a branch continues.
type BranchTarget struct {
	Fallthrough bool
	Statement   StatementID
}

func FallthroughTarget() BranchTarget { return BranchTarget{Fallthrough: true} }

func StatementTarget(id StatementID) BranchTarget { return BranchTarget{Statement: id} }

func (t BranchTarget) String() string {
	if t.Fallthrough {
		return "fallthrough"
	}
	return fmt.Sprintf("%d", t.Statement)
}

// Invocation is one libfunc call site.
type Invocation struct {
	Libfunc  string
	Args     []sierra.TemplateArg
	Refs     []ReferenceExpression
	Branches []BranchTarget
}

// Builder carries an invocation and its resolved signature into a lowering.
type Builder struct {
	inv   Invocation
	ext   extensions.Extension
	sig   sierra.Signature
	types *layout.Registry
}

// Signature of the libfunc being lowered.
func (b *Builder) Signature() sierra.Signature { return b.sig }

// TryGetRefs returns the argument references, requiring exactly n.
func (b *Builder) TryGetRefs(n int) ([]ReferenceExpression, error) {
	if len(b.inv.Refs) != n {
		return nil, &InvocationError{
			Kind:    WrongNumberOfArguments,
			Libfunc: b.inv.Libfunc,
			Detail:  fmt.Sprintf("expected %d, got %d", n, len(b.inv.Refs)),
		}
	}
	return b.inv.Refs, nil
}

// NonFallthroughStatement is the jump target of the first branch that does
// not fall through.
func (b *Builder) NonFallthroughStatement() StatementID {
	for i, t := range b.inv.Branches {
		if i != b.sig.Fallthrough && !t.Fallthrough {
			return t.Statement
		}
	}
	panic(fmt.Sprintf("invocations: %s has no jumping branch", b.inv.Libfunc))
}

// BranchSpec binds a label of the casm stream to a signature branch.
type BranchSpec struct {
	Label   string
	Outputs [][]casm.Var
	// Target is the statement jumps to Label land on; set HasTarget for every
	// label the stream leaves through with a jump.
	Target    StatementID
	HasTarget bool
}

// BuildFromCasm turns a finished casm stream into a CompiledInvocation.
// branches are listed in signature order. Labels the stream leaves through
// become relocations to their branch target.
func (b *Builder) BuildFromCasm(cb *casm.Builder, branches []BranchSpec) CompiledInvocation {
	res := cb.Build()
	if len(branches) != len(b.sig.Branches) {
		panic(fmt.Sprintf("invocations: %s lowered %d branches, signature has %d", b.inv.Libfunc, len(branches), len(b.sig.Branches)))
	}
	out := CompiledInvocation{Instructions: res.Instructions}
	targets := make(map[string]BranchSpec, len(branches))
	for i, br := range branches {
		st, ok := res.Branches[br.Label]
		if !ok {
			panic(fmt.Sprintf("invocations: %s branch %d: label %s is never reached", b.inv.Libfunc, i, br.Label))
		}
		if len(br.Outputs) != len(b.sig.Branches[i]) {
			panic(fmt.Sprintf("invocations: %s branch %d: %d outputs, signature has %d", b.inv.Libfunc, i, len(br.Outputs), len(b.sig.Branches[i])))
		}
		changes := BranchChanges{ApChange: st.ApChange, Refs: make([]ReferenceExpression, 0, len(br.Outputs))}
		for _, vars := range br.Outputs {
			ref := ReferenceExpression{Cells: make([]CellExpression, 0, len(vars))}
			for _, v := range vars {
				ref.Cells = append(ref.Cells, st.Value(v))
			}
			changes.Refs = append(changes.Refs, ref)
		}
		out.Results = append(out.Results, changes)
		targets[br.Label] = br
	}
	for _, r := range res.Awaiting {
		br, ok := targets[r.Label]
		if !ok || !br.HasTarget {
			panic(fmt.Sprintf("invocations: %s jumps to %s without a target statement", b.inv.Libfunc, r.Label))
		}
		out.Relocations = append(out.Relocations, Relocation{Instruction: r.Instruction, Target: br.Target})
	}
	return out
}

// BuildOnlyReferenceChanges lowers a non-branching libfunc that emits no code.
func (b *Builder) BuildOnlyReferenceChanges(refs []ReferenceExpression) CompiledInvocation {
	if len(b.sig.Branches) != 1 || len(refs) != len(b.sig.Branches[0]) {
		panic(fmt.Sprintf("invocations: %s: %d references for signature %v", b.inv.Libfunc, len(refs), b.sig.Branches))
	}
	return CompiledInvocation{Results: []BranchChanges{{Refs: refs}}}
}
