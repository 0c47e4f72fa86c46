package compiler

import (
	"errors"
	"fmt"
)

var (
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrVariableRedefined = errors.New("variable redefined")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrInconsistentState = errors.New("inconsistent references at join")
	ErrBadTarget         = errors.New("invalid branch target")
	ErrSharedStatement   = errors.New("statement reachable from two functions")
	ErrGasCycle          = errors.New("cycle in statement graph")
	ErrGasBudget         = errors.New("gas budget exceeded")
	ErrDuplicateFunction = errors.New("duplicate function")
	ErrReturnMismatch    = errors.New("return does not match signature")
)

// Error attaches a failure to the statement it happened at. Statement is -1
// for errors about a whole function.
type Error struct {
	Function  string
	Statement StatementID
	Err       error
}

func (e *Error) Error() string {
	if e.Statement < 0 {
		return fmt.Sprintf("function %s: %v", e.Function, e.Err)
	}
	return fmt.Sprintf("function %s: statement %d: %v", e.Function, e.Statement, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func stmtErr(fn string, id StatementID, format string, args ...any) *Error {
	return &Error{Function: fn, Statement: id, Err: fmt.Errorf(format, args...)}
}
