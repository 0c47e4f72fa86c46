package compiler

import (
	"context"
	"fmt"
	"sort"

	"sierra2casm/internal/casm"
	"sierra2casm/internal/invocations"
	"sierra2casm/internal/sierra"
	"sierra2casm/internal/trace"
)

type typedRef struct {
	Type sierra.Type
	Ref  invocations.ReferenceExpression
}

// frame is the set of live variables at a statement.
type frame map[VarID]typedRef

func (f frame) clone() frame {
	out := make(frame, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func (f frame) names() []VarID {
	out := make([]VarID, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CompiledStatement is the code of one statement before linking.
type CompiledStatement struct {
	Instructions []casm.Instruction
	Relocations  []invocations.Relocation
}

// Size is the encoded length in words.
func (s CompiledStatement) Size() int {
	n := 0
	for _, in := range s.Instructions {
		n += in.Size()
	}
	return n
}

type funcCompiler struct {
	ictx   invocations.Context
	prog   *Program
	fn     *Function
	fi     int
	owner  []int
	states map[StatementID]frame
	out    map[StatementID]CompiledStatement
}

// paramFrame places the parameters the way a caller pushes them: the last
// cell of the last parameter sits at [fp - 3].
func paramFrame(fn *Function, ictx invocations.Context) (frame, error) {
	sizes := make([]int, len(fn.Params))
	total := 0
	for i, p := range fn.Params {
		size, err := ictx.Types.Size(p.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Var, err)
		}
		sizes[i] = size
		total += size
	}
	f := make(frame, len(fn.Params))
	offset := int64(-(2 + total))
	for i, p := range fn.Params {
		if _, dup := f[p.Var]; dup {
			return nil, fmt.Errorf("%w: parameter %s", ErrVariableRedefined, p.Var)
		}
		ref, err := invocations.FromRefValue(sierra.Final(sierra.Local(offset)), sizes[i])
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Var, err)
		}
		f[p.Var] = typedRef{Type: p.Type, Ref: ref}
		offset += int64(sizes[i])
	}
	return f, nil
}

func (c *funcCompiler) run(ctx context.Context) error {
	params, err := paramFrame(c.fn, c.ictx)
	if err != nil {
		return &Error{Function: c.fn.Name, Statement: -1, Err: err}
	}
	c.states[c.fn.Entry] = params
	for i := range c.prog.Statements {
		id := StatementID(i)
		if c.owner[i] != c.fi {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		st, ok := c.states[id]
		if !ok {
			// owned statements are only reached by forward jumps from the entry
			return stmtErr(c.fn.Name, id, "%w: no incoming state", ErrBadTarget)
		}
		_, span := trace.Start(ctx, trace.ScopeStatement, fmt.Sprintf("statement:%d", id), trace.AtStatement(i))
		if c.prog.Statements[i].Kind == StmtReturn {
			err = c.compileReturn(id, st)
		} else {
			err = c.compileInvocation(id, st)
		}
		span.End(c.prog.Statements[i].String())
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *funcCompiler) compileInvocation(id StatementID, st frame) error {
	stmt := &c.prog.Statements[id]
	ext, ok := c.ictx.Extensions.Lookup(stmt.Libfunc)
	if !ok {
		return &Error{Function: c.fn.Name, Statement: id, Err: &invocations.InvocationError{Kind: invocations.UnknownLibfunc, Libfunc: stmt.Libfunc}}
	}
	sig, err := ext.Signature(stmt.Args)
	if err != nil {
		return &Error{Function: c.fn.Name, Statement: id, Err: fmt.Errorf("%s%s: %w", stmt.Libfunc, sierra.FormatArgs(stmt.Args), err)}
	}
	if len(stmt.Inputs) != len(sig.Args) {
		return &Error{Function: c.fn.Name, Statement: id, Err: &invocations.InvocationError{
			Kind:    invocations.WrongNumberOfArguments,
			Libfunc: stmt.Libfunc,
			Detail:  fmt.Sprintf("expected %d, got %d", len(sig.Args), len(stmt.Inputs)),
		}}
	}
	if len(stmt.Branches) != len(sig.Branches) {
		return stmtErr(c.fn.Name, id, "%w: %s has %d branches, statement lists %d", ErrBadTarget, stmt.Libfunc, len(sig.Branches), len(stmt.Branches))
	}

	remaining := st.clone()
	refs := make([]invocations.ReferenceExpression, 0, len(stmt.Inputs))
	for i, v := range stmt.Inputs {
		tr, ok := remaining[v]
		if !ok {
			return stmtErr(c.fn.Name, id, "%w: %s", ErrUndefinedVariable, v)
		}
		if !tr.Type.AssignableTo(sig.Args[i]) {
			return stmtErr(c.fn.Name, id, "%w: argument %d (%s) is %s, %s expects %s", ErrTypeMismatch, i, v, tr.Type, stmt.Libfunc, sig.Args[i])
		}
		delete(remaining, v)
		refs = append(refs, tr.Ref)
	}

	targets := make([]invocations.BranchTarget, 0, len(stmt.Branches))
	for b, br := range stmt.Branches {
		if !br.Target.Fallthrough && br.Target.Statement <= id {
			return stmtErr(c.fn.Name, id, "%w: branch %d jumps back to %d", ErrBadTarget, b, br.Target.Statement)
		}
		if len(br.Results) != len(sig.Branches[b]) {
			return stmtErr(c.fn.Name, id, "%w: branch %d binds %d results, %s yields %d", ErrTypeMismatch, b, len(br.Results), stmt.Libfunc, len(sig.Branches[b]))
		}
		targets = append(targets, br.Target)
	}

	compiled, err := invocations.Compile(c.ictx, invocations.Invocation{
		Libfunc:  stmt.Libfunc,
		Args:     stmt.Args,
		Refs:     refs,
		Branches: targets,
	})
	if err != nil {
		return &Error{Function: c.fn.Name, Statement: id, Err: err}
	}

	for b, br := range stmt.Branches {
		res := compiled.Results[b]
		next := make(frame, len(remaining)+len(br.Results))
		for _, v := range remaining.names() {
			tr := remaining[v]
			shifted, err := tr.Ref.ApplyApChange(res.ApChange)
			if err != nil {
				return stmtErr(c.fn.Name, id, "%s: %w", v, err)
			}
			next[v] = typedRef{Type: tr.Type, Ref: shifted}
		}
		for j, v := range br.Results {
			if _, dup := next[v]; dup {
				return stmtErr(c.fn.Name, id, "%w: %s", ErrVariableRedefined, v)
			}
			next[v] = typedRef{Type: sig.Branches[b][j], Ref: res.Refs[j]}
		}
		target := id + 1
		if !br.Target.Fallthrough {
			target = br.Target.Statement
		}
		if err := c.merge(id, target, next); err != nil {
			return err
		}
	}
	c.out[id] = CompiledStatement{Instructions: compiled.Instructions, Relocations: compiled.Relocations}
	return nil
}

// merge records the state flowing into target, which must agree with any
// state already recorded there.
func (c *funcCompiler) merge(from, target StatementID, next frame) error {
	prev, ok := c.states[target]
	if !ok {
		c.states[target] = next
		return nil
	}
	if len(prev) != len(next) {
		return stmtErr(c.fn.Name, from, "%w: statement %d is entered with %d and %d variables", ErrInconsistentState, target, len(prev), len(next))
	}
	for _, v := range next.names() {
		a, ok := prev[v]
		b := next[v]
		if !ok {
			return stmtErr(c.fn.Name, from, "%w: %s is not live on every path into statement %d", ErrInconsistentState, v, target)
		}
		if !a.Type.Equal(b.Type) || !a.Ref.Equal(b.Ref) {
			return stmtErr(c.fn.Name, from, "%w: %s is %s %s and %s %s at statement %d", ErrInconsistentState, v, a.Type, a.Ref, b.Type, b.Ref, target)
		}
	}
	return nil
}

func (c *funcCompiler) compileReturn(id StatementID, st frame) error {
	stmt := &c.prog.Statements[id]
	if len(stmt.Returns) != len(c.fn.Returns) {
		return stmtErr(c.fn.Name, id, "%w: returns %d values, function declares %d", ErrReturnMismatch, len(stmt.Returns), len(c.fn.Returns))
	}
	var cells []invocations.CellExpression
	for i, v := range stmt.Returns {
		tr, ok := st[v]
		if !ok {
			return stmtErr(c.fn.Name, id, "%w: %s", ErrUndefinedVariable, v)
		}
		want := c.fn.Returns[i]
		inner, deferred := tr.Type.Deferred()
		if !tr.Type.Equal(want) && !(deferred && inner.Equal(want)) {
			return stmtErr(c.fn.Name, id, "%w: %s is %s, function returns %s", ErrReturnMismatch, v, tr.Type, want)
		}
		cells = append(cells, tr.Ref.Cells...)
	}

	cb := casm.NewBuilder()
	if !onTopOfStack(cells) {
		vars := make([]casm.Var, 0, len(cells))
		for _, cell := range cells {
			vars = append(vars, cb.AddVar(cell))
		}
		for _, v := range vars {
			cb.TempVar(v)
		}
	}
	cb.Ret()
	c.out[id] = CompiledStatement{Instructions: cb.Build().Instructions}
	return nil
}

// onTopOfStack reports whether cells are already [ap - n], ..., [ap - 1].
func onTopOfStack(cells []invocations.CellExpression) bool {
	n := len(cells)
	for i, cell := range cells {
		if cell.Kind != casm.ResDeref || cell.Cell.Register != casm.AP || int(cell.Cell.Offset) != i-n {
			return false
		}
	}
	return true
}
