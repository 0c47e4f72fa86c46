package diag

import (
	"errors"

	"sierra2casm/internal/compiler"
	"sierra2casm/internal/invocations"
	"sierra2casm/internal/layout"
	"sierra2casm/internal/sierra"
)

var invocationCodes = map[invocations.ErrorKind]Code{
	invocations.WrongNumberOfArguments:     InvWrongNumberOfArguments,
	invocations.InvalidReferenceExpression: InvInvalidReferenceExpression,
	invocations.InvalidGenericArg:          InvInvalidGenericArg,
	invocations.UnknownLibfunc:             InvUnknownLibfunc,
	invocations.NotImplemented:             InvNotImplemented,
}

var sierraCodes = map[sierra.ErrorKind]Code{
	sierra.KindWrongNumberOfTypeArgs:     SigWrongNumberOfTypeArgs,
	sierra.KindUnsupportedTypeArg:        SigUnsupportedTypeArg,
	sierra.KindUnexpectedMemoryStructure: SigUnexpectedMemoryStructure,
	sierra.KindIllegalArgsLocation:       SigIllegalArgsLocation,
	sierra.KindLocationsNonConsecutive:   SigLocationsNonConsecutive,
}

var layoutCodes = map[layout.ErrorKind]Code{
	layout.ErrUnknownType:   SigUnknownType,
	layout.ErrRecursiveType: SigRecursiveType,
	layout.ErrNegativeSize:  SigNegativeSize,
}

var compilerCodes = []struct {
	err  error
	code Code
}{
	{compiler.ErrUndefinedVariable, CmpUndefinedVariable},
	{compiler.ErrVariableRedefined, CmpVariableRedefined},
	{compiler.ErrTypeMismatch, CmpTypeMismatch},
	{compiler.ErrInconsistentState, CmpInconsistentState},
	{compiler.ErrBadTarget, CmpBadTarget},
	{compiler.ErrSharedStatement, CmpSharedStatement},
	{compiler.ErrReturnMismatch, CmpReturnMismatch},
	{compiler.ErrDuplicateFunction, CmpDuplicateFunction},
	{compiler.ErrGasCycle, GasCycle},
	{compiler.ErrGasBudget, GasBudget},
}

// Classify picks the most specific code for err. Invocation failures win
// over the Sierra errors they wrap.
func Classify(err error) Code {
	var ie *invocations.InvocationError
	if errors.As(err, &ie) {
		if c, ok := invocationCodes[ie.Kind]; ok {
			return c
		}
	}
	for _, cc := range compilerCodes {
		if errors.Is(err, cc.err) {
			return cc.code
		}
	}
	var le *layout.Error
	if errors.As(err, &le) {
		if c, ok := layoutCodes[le.Kind]; ok {
			return c
		}
	}
	var se *sierra.Error
	if errors.As(err, &se) {
		if c, ok := sierraCodes[se.Kind]; ok {
			return c
		}
	}
	return UnknownCode
}

// FromError converts a pipeline error into diagnostics for file. Errors
// joined with errors.Join become one diagnostic each.
func FromError(file string, err error) []Diagnostic {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []Diagnostic
		for _, e := range joined.Unwrap() {
			out = append(out, FromError(file, e)...)
		}
		return out
	}
	loc := FileLocation(file)
	msg := err.Error()
	var ce *compiler.Error
	if errors.As(err, &ce) {
		loc.Function = ce.Function
		loc.Statement = int(ce.Statement)
		msg = ce.Err.Error()
	}
	d := NewError(Classify(err), loc, msg)
	var ie *invocations.InvocationError
	if errors.As(err, &ie) && ie.Libfunc != "" {
		d = d.WithNote(loc, "while lowering "+ie.Libfunc)
	}
	return []Diagnostic{d}
}
