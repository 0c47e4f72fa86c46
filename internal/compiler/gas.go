package compiler

import (
	"fmt"

	"sierra2casm/internal/invocations"
)

// GasInfo is the worst-case gas a function needs on entry, and per statement.
type GasInfo struct {
	Functions  map[string]int64
	Statements map[StatementID]int64
}

// SolveGas computes, for every statement reachable from a function entry,
// the gas needed to reach a return along the most expensive path:
//
//	need(return) = 0
//	need(s)      = max over branches b of max(0, effects[b] + need(target(b)))
//
// Negative branch effects (a successful get_gas) lower the requirement.
// maxGas > 0 bounds every function's entry requirement.
func SolveGas(p *Program, ictx invocations.Context, maxGas int64) (GasInfo, error) {
	if _, err := owners(p); err != nil {
		return GasInfo{}, err
	}
	s := gasSolver{
		prog:  p,
		ictx:  ictx,
		need:  make(map[StatementID]int64),
		state: make(map[StatementID]uint8),
	}
	info := GasInfo{Functions: make(map[string]int64, len(p.Functions)), Statements: s.need}
	for i := range p.Functions {
		fn := &p.Functions[i]
		need, err := s.solve(fn.Name, fn.Entry)
		if err != nil {
			return GasInfo{}, err
		}
		if maxGas > 0 && need > maxGas {
			return GasInfo{}, &Error{Function: fn.Name, Statement: -1, Err: fmt.Errorf("%w: needs %d, budget is %d", ErrGasBudget, need, maxGas)}
		}
		info.Functions[fn.Name] = need
	}
	return info, nil
}

const (
	gasVisiting uint8 = iota + 1
	gasDone
)

type gasSolver struct {
	prog  *Program
	ictx  invocations.Context
	need  map[StatementID]int64
	state map[StatementID]uint8
}

func (s *gasSolver) solve(fn string, id StatementID) (int64, error) {
	switch s.state[id] {
	case gasDone:
		return s.need[id], nil
	case gasVisiting:
		return 0, stmtErr(fn, id, "%w", ErrGasCycle)
	}
	s.state[id] = gasVisiting
	stmt := &s.prog.Statements[id]
	var need int64
	if stmt.Kind == StmtInvocation {
		ext, ok := s.ictx.Extensions.Lookup(stmt.Libfunc)
		if !ok {
			return 0, &Error{Function: fn, Statement: id, Err: &invocations.InvocationError{Kind: invocations.UnknownLibfunc, Libfunc: stmt.Libfunc}}
		}
		effects, err := ext.Effects(stmt.Args, s.ictx.Types)
		if err != nil {
			return 0, &Error{Function: fn, Statement: id, Err: err}
		}
		succ := s.prog.successors(id)
		if len(effects) != len(succ) {
			return 0, stmtErr(fn, id, "%w: %s has %d branch effects, statement lists %d branches", ErrBadTarget, stmt.Libfunc, len(effects), len(succ))
		}
		for b, next := range succ {
			rest, err := s.solve(fn, next)
			if err != nil {
				return 0, err
			}
			need = max(need, effects[b].GasUsage+rest)
		}
	}
	s.need[id] = need
	s.state[id] = gasDone
	return need, nil
}
