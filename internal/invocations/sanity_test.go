package invocations_test

import (
	"testing"

	"sierra2casm/internal/casm"
	"sierra2casm/internal/extensions"
	"sierra2casm/internal/invocations"
	"sierra2casm/internal/sierra"
	"sierra2casm/internal/testkit"
)

func cell(r casm.Register, off int16) invocations.CellExpression {
	return casm.Deref(casm.CellRef{Register: r, Offset: off})
}

// Every lowering must produce relocations that patch relative jumps and one
// result per branch.
func TestEveryLoweringIsWellFormed(t *testing.T) {
	felt := sierra.FeltType()
	fallthrough1 := []invocations.BranchTarget{invocations.FallthroughTarget()}
	cases := []invocations.Invocation{
		{
			Libfunc:  extensions.GetGas,
			Args:     []sierra.TemplateArg{sierra.ValueArg(5)},
			Refs:     []invocations.ReferenceExpression{invocations.FromCell(cell(casm.FP, -3))},
			Branches: []invocations.BranchTarget{invocations.StatementTarget(9), invocations.FallthroughTarget()},
		},
		{
			Libfunc:  extensions.RefundGas,
			Args:     []sierra.TemplateArg{sierra.ValueArg(3)},
			Refs:     []invocations.ReferenceExpression{invocations.FromCell(cell(casm.AP, -1))},
			Branches: fallthrough1,
		},
		{
			Libfunc: extensions.TuplePack,
			Args:    []sierra.TemplateArg{sierra.TypeArg(felt), sierra.TypeArg(felt)},
			Refs: []invocations.ReferenceExpression{
				invocations.FromCell(cell(casm.AP, -2)),
				invocations.FromCell(cell(casm.AP, -1)),
			},
			Branches: fallthrough1,
		},
		{
			Libfunc:  extensions.TupleUnpack,
			Args:     []sierra.TemplateArg{sierra.TypeArg(felt), sierra.TypeArg(felt)},
			Refs:     []invocations.ReferenceExpression{invocations.FromCells(cell(casm.FP, -4), cell(casm.FP, -3))},
			Branches: fallthrough1,
		},
		{
			Libfunc: extensions.CallContract,
			Refs: []invocations.ReferenceExpression{
				invocations.FromCell(cell(casm.FP, -6)),
				invocations.FromCell(cell(casm.FP, -5)),
				invocations.FromCell(cell(casm.FP, -4)),
				invocations.FromCells(cell(casm.FP, -3), cell(casm.FP, -2)),
			},
			Branches: []invocations.BranchTarget{invocations.FallthroughTarget(), invocations.StatementTarget(2)},
		},
		{
			Libfunc:  extensions.ContractAddressConst,
			Args:     []sierra.TemplateArg{sierra.ValueArg(1000)},
			Branches: fallthrough1,
		},
		{
			Libfunc:  extensions.StoreTemp,
			Args:     []sierra.TemplateArg{sierra.TypeArg(felt)},
			Refs:     []invocations.ReferenceExpression{invocations.FromCell(cell(casm.AP, -1))},
			Branches: fallthrough1,
		},
	}
	for _, inv := range cases {
		t.Run(inv.Libfunc, func(t *testing.T) {
			out, err := invocations.Compile(invocations.DefaultContext(), inv)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if err := testkit.CheckCompiledInvocation(out, len(inv.Branches)); err != nil {
				t.Fatalf("%v\n%s", err, casm.Format(out.Instructions))
			}
		})
	}
}

func TestEveryRegisteredLibfuncIsLowered(t *testing.T) {
	for _, name := range invocations.DefaultContext().Extensions.Names() {
		if !invocations.Lowered(name) {
			t.Errorf("%s has no lowering", name)
		}
	}
}
