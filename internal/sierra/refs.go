package sierra

import "fmt"

// Base selects the frame register a MemLocation is relative to.
type Base uint8

const (
	BaseTemp  Base = iota + 1 // ap-relative
	BaseLocal                 // fp-relative
)

func (b Base) String() string {
	switch b {
	case BaseTemp:
		return "ap"
	case BaseLocal:
		return "fp"
	default:
		return "?"
	}
}

// MemLocation is an abstract stack slot.
type MemLocation struct {
	Base   Base
	Offset int64
}

// Temp is the ap-relative slot at off.
func Temp(off int64) MemLocation { return MemLocation{Base: BaseTemp, Offset: off} }

// Local is the fp-relative slot at off.
func Local(off int64) MemLocation { return MemLocation{Base: BaseLocal, Offset: off} }

// Add moves the location by delta cells within the same base.
func (l MemLocation) Add(delta int64) MemLocation {
	return MemLocation{Base: l.Base, Offset: l.Offset + delta}
}

func (l MemLocation) String() string {
	if l.Offset < 0 {
		return fmt.Sprintf("[%s%d]", l.Base, l.Offset)
	}
	return fmt.Sprintf("[%s+%d]", l.Base, l.Offset)
}

// Op is the arithmetic of a deferred RefValue.
type Op uint8

const (
	OpAdd Op = iota + 1
	OpSub
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	default:
		return "?"
	}
}

// Apply evaluates a op c.
func (o Op) Apply(a, c int64) int64 {
	if o == OpSub {
		return a - c
	}
	return a + c
}

// RefKind tags a RefValue.
type RefKind uint8

const (
	RefInvalid RefKind = iota
	RefFinal
	RefTransient
	RefOpWithConst
)

// RefValue describes where a value lives or how it will be computed.
//
//	Final        materialized at Loc
//	Transient    zero-sized, occupies no memory
//	OpWithConst  [Loc] Op Const, not yet materialized
type RefValue struct {
	Kind  RefKind
	Loc   MemLocation
	Op    Op
	Const int64
}

func Final(loc MemLocation) RefValue { return RefValue{Kind: RefFinal, Loc: loc} }

func Transient() RefValue { return RefValue{Kind: RefTransient} }

// OpWithConst defines a value as [base] op c.
func OpWithConst(base MemLocation, op Op, c int64) RefValue {
	return RefValue{Kind: RefOpWithConst, Loc: base, Op: op, Const: c}
}

func (r RefValue) String() string {
	switch r.Kind {
	case RefFinal:
		return r.Loc.String()
	case RefTransient:
		return "transient"
	case RefOpWithConst:
		return fmt.Sprintf("%s %s %d", r.Loc, r.Op, r.Const)
	default:
		return "<invalid>"
	}
}

// AsFinal demands a materialized value.
func AsFinal(r RefValue) (MemLocation, error) {
	if r.Kind != RefFinal {
		return MemLocation{}, Errorf(KindIllegalArgsLocation, "%s is not materialized", r)
	}
	return r.Loc, nil
}

// MemSpan is a run of Size cells starting at Loc.
type MemSpan struct {
	Loc  MemLocation
	Size int
}

// MemReducer merges b into a when b starts right where a ends on the same base.
func MemReducer(a, b MemSpan) (MemSpan, bool) {
	if a.Loc.Base != b.Loc.Base || a.Loc.Offset+int64(a.Size) != b.Loc.Offset {
		return MemSpan{}, false
	}
	return MemSpan{Loc: a.Loc, Size: a.Size + b.Size}, true
}

// ReduceSpans folds materialized element references into one reference.
// Zero-sized elements are skipped; when nothing occupies memory the result is
// Transient.
func ReduceSpans(refs []RefValue, sizes []int) (RefValue, error) {
	if len(refs) != len(sizes) {
		return RefValue{}, Errorf(KindIllegalArgsLocation, "expected %d references, got %d", len(sizes), len(refs))
	}
	var acc MemSpan
	have := false
	for i, ref := range refs {
		if sizes[i] == 0 {
			continue
		}
		loc, err := AsFinal(ref)
		if err != nil {
			return RefValue{}, err
		}
		next := MemSpan{Loc: loc, Size: sizes[i]}
		if !have {
			acc, have = next, true
			continue
		}
		merged, ok := MemReducer(acc, next)
		if !ok {
			return RefValue{}, Errorf(KindLocationsNonConsecutive, "%s (size %d) is not followed by %s", acc.Loc, acc.Size, loc)
		}
		acc = merged
	}
	if !have {
		return Transient(), nil
	}
	return Final(acc.Loc), nil
}

// SliceLocation splits a materialized composite value into element references
// at cumulative offsets. Zero-sized elements map to Transient.
func SliceLocation(r RefValue, sizes []int) ([]RefValue, error) {
	out := make([]RefValue, 0, len(sizes))
	var offset int64
	for _, size := range sizes {
		if size == 0 {
			out = append(out, Transient())
			continue
		}
		base, err := AsFinal(r)
		if err != nil {
			return nil, err
		}
		out = append(out, Final(base.Add(offset)))
		offset += int64(size)
	}
	return out, nil
}
