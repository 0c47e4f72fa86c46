package compiler

import (
	"fmt"

	"sierra2casm/internal/invocations"
	"sierra2casm/internal/sierra"
)

// VarID names a variable within a function.
type VarID string

// StatementID indexes Program.Statements.
type StatementID = invocations.StatementID

type Param struct {
	Var  VarID
	Type sierra.Type
}

// Function is an entry point into the statement list.
type Function struct {
	Name    string
	Entry   StatementID
	Params  []Param
	Returns []sierra.Type
}

type StmtKind uint8

const (
	StmtInvocation StmtKind = iota
	StmtReturn
)

// Branch is one way out of an invocation and the variables it binds.
type Branch struct {
	Target  invocations.BranchTarget
	Results []VarID
}

// Statement is either a libfunc invocation or a return.
type Statement struct {
	Kind    StmtKind
	Libfunc string
	Args    []sierra.TemplateArg
	Inputs  []VarID
	// Branches of an invocation, in signature order.
	Branches []Branch
	// Returns lists the returned variables of StmtReturn.
	Returns []VarID
}

// Program is a flat list of statements shared by its functions.
type Program struct {
	Functions  []Function
	Statements []Statement
}

func (s Statement) String() string {
	if s.Kind == StmtReturn {
		return fmt.Sprintf("return(%s)", joinVars(s.Returns))
	}
	out := fmt.Sprintf("%s%s(%s)", s.Libfunc, sierra.FormatArgs(s.Args), joinVars(s.Inputs))
	if len(s.Branches) == 1 && s.Branches[0].Target.Fallthrough {
		return out + " -> (" + joinVars(s.Branches[0].Results) + ")"
	}
	out += " {"
	for i, b := range s.Branches {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s(%s)", b.Target, joinVars(b.Results))
	}
	return out + "}"
}

func joinVars(vs []VarID) string {
	out := ""
	for i, v := range vs {
		if i > 0 {
			out += ", "
		}
		out += string(v)
	}
	return out
}

// successors lists the statements control can reach from id.
func (p *Program) successors(id StatementID) []StatementID {
	st := &p.Statements[id]
	if st.Kind == StmtReturn {
		return nil
	}
	out := make([]StatementID, 0, len(st.Branches))
	for _, b := range st.Branches {
		if b.Target.Fallthrough {
			out = append(out, id+1)
		} else {
			out = append(out, b.Target.Statement)
		}
	}
	return out
}
