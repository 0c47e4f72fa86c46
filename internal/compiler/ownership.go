package compiler

import (
	"fmt"
)

// owners maps every statement reachable from a function entry to that
// function's index; unreachable statements map to -1.
func owners(p *Program) ([]int, error) {
	owner := make([]int, len(p.Statements))
	for i := range owner {
		owner[i] = -1
	}
	seen := make(map[string]struct{}, len(p.Functions))
	for fi := range p.Functions {
		fn := &p.Functions[fi]
		if _, dup := seen[fn.Name]; dup {
			return nil, &Error{Function: fn.Name, Statement: -1, Err: ErrDuplicateFunction}
		}
		seen[fn.Name] = struct{}{}
		if fn.Entry < 0 || int(fn.Entry) >= len(p.Statements) {
			return nil, &Error{Function: fn.Name, Statement: -1, Err: fmt.Errorf("%w: entry %d", ErrBadTarget, fn.Entry)}
		}
		stack := []StatementID{fn.Entry}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			switch owner[id] {
			case fi:
				continue
			case -1:
				owner[id] = fi
			default:
				return nil, &Error{Function: fn.Name, Statement: id, Err: fmt.Errorf("%w: also in %s", ErrSharedStatement, p.Functions[owner[id]].Name)}
			}
			for _, next := range p.successors(id) {
				if next < 0 || int(next) >= len(p.Statements) {
					return nil, stmtErr(fn.Name, id, "%w: %d", ErrBadTarget, next)
				}
				stack = append(stack, next)
			}
		}
	}
	return owner, nil
}
