package sierra

import "fmt"

// NoFallthrough marks a branching signature whose branches are all explicit jumps.
const NoFallthrough = -1

// Signature describes a libfunc's argument types and, per branch, its result
// types. Non-branching libfuncs have a single branch which is the fallthrough.
type Signature struct {
	Args        []Type
	Branches    [][]Type
	Fallthrough int
}

// NonBranchSignature builds the signature of a libfunc with one outcome.
func NonBranchSignature(args, results []Type) Signature {
	return Signature{Args: args, Branches: [][]Type{results}, Fallthrough: 0}
}

// IsBranching reports whether the libfunc has more than one outcome.
func (s Signature) IsBranching() bool {
	return len(s.Branches) > 1
}

// Results returns the single result list of a non-branching signature.
func (s Signature) Results() []Type {
	if len(s.Branches) != 1 {
		return nil
	}
	return s.Branches[0]
}

// Validate checks the fallthrough index.
func (s Signature) Validate() error {
	if len(s.Branches) == 0 {
		return fmt.Errorf("signature has no branches")
	}
	if s.Fallthrough == NoFallthrough {
		return nil
	}
	if s.Fallthrough < 0 || s.Fallthrough >= len(s.Branches) {
		return fmt.Errorf("fallthrough index %d out of range [0, %d)", s.Fallthrough, len(s.Branches))
	}
	return nil
}

// Equal reports structural equality.
func (s Signature) Equal(o Signature) bool {
	if s.Fallthrough != o.Fallthrough || !typesEqual(s.Args, o.Args) || len(s.Branches) != len(o.Branches) {
		return false
	}
	for i := range s.Branches {
		if !typesEqual(s.Branches[i], o.Branches[i]) {
			return false
		}
	}
	return true
}

func typesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
