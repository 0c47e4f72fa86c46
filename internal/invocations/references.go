package invocations

import (
	"math"
	"strings"

	"fortio.org/safecast"

	"sierra2casm/internal/casm"
	"sierra2casm/internal/sierra"
)

// CellExpression is the expression of a single cell of a variable.
type CellExpression = casm.ResOperand

// ReferenceExpression locates every cell of a variable.
type ReferenceExpression struct {
	Cells []CellExpression
}

// FromCell builds a one-cell reference.
func FromCell(c CellExpression) ReferenceExpression {
	return ReferenceExpression{Cells: []CellExpression{c}}
}

// FromCells builds a reference from cells in order.
func FromCells(cs ...CellExpression) ReferenceExpression {
	return ReferenceExpression{Cells: append([]CellExpression(nil), cs...)}
}

func (r ReferenceExpression) String() string {
	parts := make([]string, 0, len(r.Cells))
	for _, c := range r.Cells {
		parts = append(parts, c.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (r ReferenceExpression) Equal(o ReferenceExpression) bool {
	if len(r.Cells) != len(o.Cells) {
		return false
	}
	for i := range r.Cells {
		if !r.Cells[i].Equal(o.Cells[i]) {
			return false
		}
	}
	return true
}

// TryUnpackSingle returns the only cell.
func (r ReferenceExpression) TryUnpackSingle() (CellExpression, error) {
	if len(r.Cells) != 1 {
		return CellExpression{}, invalidRef("expected 1 cell, got %d", len(r.Cells))
	}
	return r.Cells[0], nil
}

// TryUnpack returns exactly n cells.
func (r ReferenceExpression) TryUnpack(n int) ([]CellExpression, error) {
	if len(r.Cells) != n {
		return nil, invalidRef("expected %d cells, got %d", n, len(r.Cells))
	}
	return r.Cells, nil
}

// ApplyApChange rebases every cell after ap advanced by delta.
func (r ReferenceExpression) ApplyApChange(delta int) (ReferenceExpression, error) {
	if delta == 0 {
		return r, nil
	}
	out := ReferenceExpression{Cells: make([]CellExpression, len(r.Cells))}
	for i, c := range r.Cells {
		shifted, err := c.ApplyApChange(delta)
		if err != nil {
			return ReferenceExpression{}, invalidRef("%v", err)
		}
		out.Cells[i] = shifted
	}
	return out, nil
}

// ToDeref requires a plain cell.
func ToDeref(c CellExpression) (casm.CellRef, error) {
	if c.Kind != casm.ResDeref {
		return casm.CellRef{}, invalidRef("%s is not a cell", c)
	}
	return c.Cell, nil
}

// ToBuffer requires [cell] or [cell] + imm such that maxOffset more cells can
// be addressed through it.
func ToBuffer(c CellExpression, maxOffset int16) (CellExpression, error) {
	switch {
	case c.Kind == casm.ResDeref:
		return c, nil
	case c.Kind == casm.ResBinOp && c.Op == casm.OpAdd && c.B.IsImmediate:
		off, ok := c.B.Imm.Int64()
		if !ok {
			return CellExpression{}, invalidRef("buffer offset %s out of range", c.B.Imm)
		}
		if _, err := safecast.Conv[int16](off + int64(maxOffset)); err != nil {
			return CellExpression{}, invalidRef("buffer offset %d + %d out of range", off, maxOffset)
		}
		return c, nil
	default:
		return CellExpression{}, invalidRef("%s is not a buffer", c)
	}
}

func register(b sierra.Base) casm.Register {
	if b == sierra.BaseLocal {
		return casm.FP
	}
	return casm.AP
}

func cellAt(loc sierra.MemLocation, i int) (casm.CellRef, error) {
	off, err := safecast.Conv[int16](loc.Offset + int64(i))
	if err != nil {
		return casm.CellRef{}, invalidRef("offset of %s out of range", loc.Add(int64(i)))
	}
	return casm.CellRef{Register: register(loc.Base), Offset: off}, nil
}

// FromRefValue materializes ref as a reference of size cells.
func FromRefValue(ref sierra.RefValue, size int) (ReferenceExpression, error) {
	switch ref.Kind {
	case sierra.RefFinal:
		cells := make([]CellExpression, 0, size)
		for i := 0; i < size; i++ {
			c, err := cellAt(ref.Loc, i)
			if err != nil {
				return ReferenceExpression{}, err
			}
			cells = append(cells, casm.Deref(c))
		}
		return ReferenceExpression{Cells: cells}, nil
	case sierra.RefTransient:
		if size != 0 {
			return ReferenceExpression{}, invalidRef("transient value of %d cells", size)
		}
		return ReferenceExpression{}, nil
	case sierra.RefOpWithConst:
		if size != 1 {
			return ReferenceExpression{}, invalidRef("deferred value of %d cells", size)
		}
		c, err := cellAt(ref.Loc, 0)
		if err != nil {
			return ReferenceExpression{}, err
		}
		k := ref.Const
		if ref.Op == sierra.OpSub {
			k = -k
		}
		return FromCell(casm.BinOp(casm.OpAdd, c, casm.ImmOperandInt(k))), nil
	default:
		return ReferenceExpression{}, invalidRef("invalid reference value")
	}
}

func base(r casm.Register) sierra.Base {
	if r == casm.FP {
		return sierra.BaseLocal
	}
	return sierra.BaseTemp
}

// ToRefValue describes r in the symbolic model: consecutive cells become
// Final, [cell] + imm becomes OpWithConst and no cells become Transient.
func ToRefValue(r ReferenceExpression) (sierra.RefValue, error) {
	if len(r.Cells) == 0 {
		return sierra.Transient(), nil
	}
	first := r.Cells[0]
	if len(r.Cells) == 1 && first.Kind == casm.ResBinOp && first.Op == casm.OpAdd && first.B.IsImmediate {
		k, ok := first.B.Imm.Int64()
		if !ok || k == math.MinInt64 {
			return sierra.RefValue{}, invalidRef("constant %s does not fit", first.B.Imm)
		}
		loc := sierra.MemLocation{Base: base(first.Cell.Register), Offset: int64(first.Cell.Offset)}
		if k < 0 {
			return sierra.OpWithConst(loc, sierra.OpSub, -k), nil
		}
		return sierra.OpWithConst(loc, sierra.OpAdd, k), nil
	}
	for i, c := range r.Cells {
		if c.Kind != casm.ResDeref || c.Cell.Register != first.Cell.Register || int(c.Cell.Offset) != int(first.Cell.Offset)+i {
			return sierra.RefValue{}, invalidRef("%s is not a run of consecutive cells", r)
		}
	}
	return sierra.Final(sierra.MemLocation{Base: base(first.Cell.Register), Offset: int64(first.Cell.Offset)}), nil
}
