package sierra

import "fmt"

// ErrorKind classifies failures of the extension model.
type ErrorKind uint8

const (
	KindWrongNumberOfTypeArgs ErrorKind = iota + 1
	KindUnsupportedTypeArg
	KindUnexpectedMemoryStructure
	KindIllegalArgsLocation
	KindLocationsNonConsecutive
)

func (k ErrorKind) String() string {
	switch k {
	case KindWrongNumberOfTypeArgs:
		return "wrong number of template arguments"
	case KindUnsupportedTypeArg:
		return "unsupported template argument"
	case KindUnexpectedMemoryStructure:
		return "unexpected memory structure"
	case KindIllegalArgsLocation:
		return "illegal argument location"
	case KindLocationsNonConsecutive:
		return "locations are not consecutive"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is returned by signature, reference, effect and exec queries.
// Two errors match under errors.Is when their kinds are equal.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Detail == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Detail
}

// Is reports whether target is a *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t != nil && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrWrongNumberOfTypeArgs     = &Error{Kind: KindWrongNumberOfTypeArgs}
	ErrUnsupportedTypeArg        = &Error{Kind: KindUnsupportedTypeArg}
	ErrUnexpectedMemoryStructure = &Error{Kind: KindUnexpectedMemoryStructure}
	ErrIllegalArgsLocation       = &Error{Kind: KindIllegalArgsLocation}
	ErrLocationsNonConsecutive   = &Error{Kind: KindLocationsNonConsecutive}
)

// Errorf builds an *Error of the given kind with a formatted detail.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
