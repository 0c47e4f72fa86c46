package invocations

import (
	"fmt"
)

// ErrorKind classifies lowering failures.
type ErrorKind uint8

const (
	WrongNumberOfArguments ErrorKind = iota + 1
	InvalidReferenceExpression
	InvalidGenericArg
	UnknownLibfunc
	NotImplemented
)

func (k ErrorKind) String() string {
	switch k {
	case WrongNumberOfArguments:
		return "wrong number of arguments"
	case InvalidReferenceExpression:
		return "invalid reference expression"
	case InvalidGenericArg:
		return "invalid generic argument"
	case UnknownLibfunc:
		return "unknown libfunc"
	case NotImplemented:
		return "not implemented"
	default:
		return fmt.Sprintf("InvocationErrorKind(%d)", uint8(k))
	}
}

// InvocationError is returned when a libfunc invocation cannot be lowered.
type InvocationError struct {
	Kind    ErrorKind
	Libfunc string
	Detail  string
	Err     error
}

func (e *InvocationError) Error() string {
	msg := e.Kind.String()
	if e.Libfunc != "" {
		msg = e.Libfunc + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Is matches another InvocationError of the same kind.
func (e *InvocationError) Is(target error) bool {
	t, ok := target.(*InvocationError)
	return ok && t.Kind == e.Kind && t.Libfunc == "" && t.Detail == "" && t.Err == nil
}

var (
	ErrWrongNumberOfArguments     = &InvocationError{Kind: WrongNumberOfArguments}
	ErrInvalidReferenceExpression = &InvocationError{Kind: InvalidReferenceExpression}
	ErrInvalidGenericArg          = &InvocationError{Kind: InvalidGenericArg}
	ErrUnknownLibfunc             = &InvocationError{Kind: UnknownLibfunc}
	ErrNotImplemented             = &InvocationError{Kind: NotImplemented}
)

func invalidRef(format string, args ...any) *InvocationError {
	return &InvocationError{Kind: InvalidReferenceExpression, Detail: fmt.Sprintf(format, args...)}
}
