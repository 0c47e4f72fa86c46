package sierra

import (
	"strconv"
	"strings"
)

// ArgKind tags a TemplateArg.
type ArgKind uint8

const (
	ArgType ArgKind = iota + 1
	ArgValue
)

// TemplateArg is a compile-time parameter of a libfunc or of a composite type:
// either a nested Type or an integer constant.
type TemplateArg struct {
	Kind  ArgKind
	Type  Type
	Value int64
}

// TypeArg wraps t as a template argument.
func TypeArg(t Type) TemplateArg {
	return TemplateArg{Kind: ArgType, Type: t}
}

// ValueArg wraps v as a template argument.
func ValueArg(v int64) TemplateArg {
	return TemplateArg{Kind: ArgValue, Value: v}
}

// Equal reports structural equality.
func (a TemplateArg) Equal(b TemplateArg) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ArgType:
		return a.Type.Equal(b.Type)
	case ArgValue:
		return a.Value == b.Value
	default:
		return true
	}
}

func (a TemplateArg) String() string {
	switch a.Kind {
	case ArgType:
		return a.Type.String()
	case ArgValue:
		return strconv.FormatInt(a.Value, 10)
	default:
		return "<invalid>"
	}
}

// FormatArgs renders a template argument list as "<a, b>", or "" when empty.
func FormatArgs(args []TemplateArg) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, a.String())
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// UnwrapType returns the type held by a, or ErrUnsupportedTypeArg for a value.
func UnwrapType(a TemplateArg) (Type, error) {
	if a.Kind != ArgType {
		return Type{}, Errorf(KindUnsupportedTypeArg, "expected a type, got %s", a)
	}
	return a.Type, nil
}

// UnwrapTypes unwraps every argument as a type.
func UnwrapTypes(args []TemplateArg) ([]Type, error) {
	out := make([]Type, 0, len(args))
	for _, a := range args {
		t, err := UnwrapType(a)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// UnwrapValue returns the integer held by a, or ErrUnsupportedTypeArg for a type.
func UnwrapValue(a TemplateArg) (int64, error) {
	if a.Kind != ArgValue {
		return 0, Errorf(KindUnsupportedTypeArg, "expected a value, got %s", a)
	}
	return a.Value, nil
}

// ValidateArgCount checks the template argument arity.
func ValidateArgCount(args []TemplateArg, n int) error {
	if len(args) != n {
		return Errorf(KindWrongNumberOfTypeArgs, "expected %d, got %d", n, len(args))
	}
	return nil
}

// SingleValueArg expects exactly one value argument.
func SingleValueArg(args []TemplateArg) (int64, error) {
	if err := ValidateArgCount(args, 1); err != nil {
		return 0, err
	}
	return UnwrapValue(args[0])
}

// SingleTypeArg expects exactly one type argument.
func SingleTypeArg(args []TemplateArg) (Type, error) {
	if err := ValidateArgCount(args, 1); err != nil {
		return Type{}, err
	}
	return UnwrapType(args[0])
}
