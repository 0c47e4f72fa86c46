package diag

import (
	"fmt"
	"strings"
)

// Location points at a function, and optionally one of its statements, in
// an input file. Statement is -1 when the finding is about the whole
// function or file.
type Location struct {
	File      string
	Function  string
	Statement int
}

// FileLocation points at a whole file.
func FileLocation(file string) Location { return Location{File: file, Statement: -1} }

func (l Location) String() string {
	parts := make([]string, 0, 3)
	if l.File != "" {
		parts = append(parts, l.File)
	}
	if l.Function != "" {
		parts = append(parts, "fn "+l.Function)
	}
	if l.Statement >= 0 {
		parts = append(parts, fmt.Sprintf("statement %d", l.Statement))
	}
	return strings.Join(parts, ": ")
}

type Note struct {
	Loc Location
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Location
	Notes    []Note
}

func New(sev Severity, code Code, primary Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary Location, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(loc Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}
