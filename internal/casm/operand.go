package casm

import (
	"fmt"

	"fortio.org/safecast"
)

// Register is a base register for memory access.
type Register uint8

const (
	AP Register = iota
	FP
)

func (r Register) String() string {
	if r == FP {
		return "fp"
	}
	return "ap"
}

// CellRef addresses [reg + offset].
type CellRef struct {
	Register Register
	Offset   int16
}

func (c CellRef) String() string {
	return fmt.Sprintf("[%s + %d]", c.Register, c.Offset)
}

// ApplyApChange rebases an ap-relative cell after ap advanced by delta.
func (c CellRef) ApplyApChange(delta int) (CellRef, error) {
	if c.Register != AP || delta == 0 {
		return c, nil
	}
	off, err := safecast.Conv[int16](int(c.Offset) - delta)
	if err != nil {
		return CellRef{}, fmt.Errorf("offset %d shifted by %d: %w", c.Offset, delta, err)
	}
	return CellRef{Register: AP, Offset: off}, nil
}

// Operation is the operator of a binary operand.
type Operation uint8

const (
	OpAdd Operation = iota
	OpMul
)

func (o Operation) String() string {
	if o == OpMul {
		return "*"
	}
	return "+"
}

// DerefOrImmediate is the second operand of a binary operation.
type DerefOrImmediate struct {
	IsImmediate bool
	Cell        CellRef
	Imm         Felt
}

func DerefOperand(c CellRef) DerefOrImmediate { return DerefOrImmediate{Cell: c} }
func ImmOperand(f Felt) DerefOrImmediate      { return DerefOrImmediate{IsImmediate: true, Imm: f} }
func ImmOperandInt(n int64) DerefOrImmediate  { return ImmOperand(FeltFromInt64(n)) }

func (d DerefOrImmediate) String() string {
	if d.IsImmediate {
		return d.Imm.String()
	}
	return d.Cell.String()
}

func (d DerefOrImmediate) ApplyApChange(delta int) (DerefOrImmediate, error) {
	if d.IsImmediate {
		return d, nil
	}
	c, err := d.Cell.ApplyApChange(delta)
	if err != nil {
		return DerefOrImmediate{}, err
	}
	return DerefOperand(c), nil
}

// ResKind enumerates ResOperand forms.
type ResKind uint8

const (
	ResDeref ResKind = iota
	ResDoubleDeref
	ResImmediate
	ResBinOp
)

// ResOperand is the right-hand side of an assertion and the expression form of
// a cell in a reference.
//
//	ResDeref        [Cell]
//	ResDoubleDeref  [[Cell] + Offset]
//	ResImmediate    Imm
//	ResBinOp        [Cell] Op B
type ResOperand struct {
	Kind   ResKind
	Cell   CellRef
	Offset int16
	Imm    Felt
	Op     Operation
	B      DerefOrImmediate
}

func Deref(c CellRef) ResOperand { return ResOperand{Kind: ResDeref, Cell: c} }

func DoubleDeref(c CellRef, offset int16) ResOperand {
	return ResOperand{Kind: ResDoubleDeref, Cell: c, Offset: offset}
}

func Immediate(f Felt) ResOperand { return ResOperand{Kind: ResImmediate, Imm: f} }

func ImmediateInt(n int64) ResOperand { return Immediate(FeltFromInt64(n)) }

func BinOp(op Operation, a CellRef, b DerefOrImmediate) ResOperand {
	return ResOperand{Kind: ResBinOp, Cell: a, Op: op, B: b}
}

// HasImmediate reports whether encoding r needs an extra immediate word.
func (r ResOperand) HasImmediate() bool {
	return r.Kind == ResImmediate || (r.Kind == ResBinOp && r.B.IsImmediate)
}

func (r ResOperand) Equal(o ResOperand) bool {
	if r.Kind != o.Kind {
		return false
	}
	switch r.Kind {
	case ResDeref:
		return r.Cell == o.Cell
	case ResDoubleDeref:
		return r.Cell == o.Cell && r.Offset == o.Offset
	case ResImmediate:
		return r.Imm.Equal(o.Imm)
	default:
		return r.Cell == o.Cell && r.Op == o.Op && r.B.IsImmediate == o.B.IsImmediate &&
			r.B.Cell == o.B.Cell && r.B.Imm.Equal(o.B.Imm)
	}
}

func (r ResOperand) String() string {
	switch r.Kind {
	case ResDeref:
		return r.Cell.String()
	case ResDoubleDeref:
		return fmt.Sprintf("[%s + %d]", r.Cell, r.Offset)
	case ResImmediate:
		return r.Imm.String()
	default:
		return fmt.Sprintf("%s %s %s", r.Cell, r.Op, r.B)
	}
}

// ApplyApChange rebases every ap-relative cell of r after ap advanced by delta.
func (r ResOperand) ApplyApChange(delta int) (ResOperand, error) {
	if r.Kind == ResImmediate {
		return r, nil
	}
	out := r
	c, err := r.Cell.ApplyApChange(delta)
	if err != nil {
		return ResOperand{}, err
	}
	out.Cell = c
	if r.Kind == ResBinOp {
		b, err := r.B.ApplyApChange(delta)
		if err != nil {
			return ResOperand{}, err
		}
		out.B = b
	}
	return out, nil
}
