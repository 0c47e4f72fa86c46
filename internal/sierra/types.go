package sierra

import "strings"

// Names of the types the built-in libfuncs speak about.
const (
	TypeFelt            = "felt"
	TypeGasBuiltin      = "GasBuiltin"
	TypeSystem          = "System"
	TypeContractAddress = "ContractAddress"
	TypeArray           = "Array"
	TypeTuple           = "Tuple"
	TypeDeferred        = "Deferred"
)

// Type is an identifier plus template arguments. Values are immutable once
// built; compare them with Equal.
type Type struct {
	Name string
	Args []TemplateArg
}

// AsType builds a Type.
func AsType(name string, args ...TemplateArg) Type {
	if len(args) == 0 {
		return Type{Name: name}
	}
	return Type{Name: name, Args: append([]TemplateArg(nil), args...)}
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.Name != o.Name || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteString(FormatArgs(t.Args))
	return sb.String()
}

// IsZero reports whether t is the empty Type.
func (t Type) IsZero() bool {
	return t.Name == "" && len(t.Args) == 0
}

func FeltType() Type            { return Type{Name: TypeFelt} }
func GasBuiltinType() Type      { return Type{Name: TypeGasBuiltin} }
func SystemType() Type          { return Type{Name: TypeSystem} }
func ContractAddressType() Type { return Type{Name: TypeContractAddress} }

// ArrayType is Array<elem>.
func ArrayType(elem Type) Type {
	return AsType(TypeArray, TypeArg(elem))
}

// AsTuple builds Tuple<args...>.
func AsTuple(args []TemplateArg) Type {
	return AsType(TypeTuple, args...)
}

// AsDeferred marks t as not yet materialized.
func AsDeferred(t Type) Type {
	return AsType(TypeDeferred, TypeArg(t))
}

// Deferred returns the wrapped type when t is Deferred<T>.
func (t Type) Deferred() (Type, bool) {
	if t.Name != TypeDeferred || len(t.Args) != 1 || t.Args[0].Kind != ArgType {
		return Type{}, false
	}
	return t.Args[0].Type, true
}

// AssignableTo reports whether a value of type t may bind a parameter of type
// want. Besides equality, a materialized T is accepted where Deferred<T> is
// expected.
func (t Type) AssignableTo(want Type) bool {
	if t.Equal(want) {
		return true
	}
	inner, ok := want.Deferred()
	return ok && t.Equal(inner)
}
