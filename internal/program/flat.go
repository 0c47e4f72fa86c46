package program

import (
	"errors"
	"fmt"

	"sierra2casm/internal/lowering"
)

var endKinds = map[string]lowering.EndKind{
	lowering.EndFallthrough.String(): lowering.EndFallthrough,
	lowering.EndGoto.String():        lowering.EndGoto,
	lowering.EndReturn.String():      lowering.EndReturn,
	lowering.EndUnreachable.String(): lowering.EndUnreachable,
}

// Lowered converts the file. Jump targets must name an existing block.
func (file *FlatFile) Lowered() (*lowering.FlatLowered, error) {
	f := &lowering.FlatLowered{
		Name:   file.Name,
		Params: toFlatVars(file.Params),
		Blocks: make([]lowering.FlatBlock, len(file.Blocks)),
	}
	var errs []error
	for i, b := range file.Blocks {
		blk := &f.Blocks[i]
		for _, st := range b.Statements {
			blk.Statements = append(blk.Statements, lowering.FlatStatement{
				Op:      st.Op,
				Inputs:  toFlatVars(st.Inputs),
				Outputs: toFlatVars(st.Outputs),
			})
		}
		end, err := b.End.end(len(file.Blocks))
		if err != nil {
			errs = append(errs, fmt.Errorf("blk%d: %w", i, err))
			continue
		}
		blk.End = end
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return f, nil
}

func (e FlatEnd) end(blocks int) (lowering.FlatBlockEnd, error) {
	kind, ok := endKinds[e.Kind]
	if !ok {
		return lowering.FlatBlockEnd{}, fmt.Errorf("unknown end kind %q", e.Kind)
	}
	switch kind {
	case lowering.EndReturn:
		return lowering.Return(toFlatVars(e.Returns)...), nil
	case lowering.EndUnreachable:
		return lowering.Unreachable(), nil
	}
	if e.Target < 0 || e.Target >= blocks {
		return lowering.FlatBlockEnd{}, fmt.Errorf("%s target blk%d out of range", e.Kind, e.Target)
	}
	var remap lowering.VarRemapping
	for _, r := range e.Remapping {
		remap = append(remap, lowering.Remap{Dst: lowering.VarID(r.Dst), Src: lowering.VarID(r.Src)})
	}
	if kind == lowering.EndGoto {
		return lowering.Goto(lowering.BlockID(e.Target), remap), nil
	}
	return lowering.Fallthrough(lowering.BlockID(e.Target), remap), nil
}

// FromLowered is the inverse of FlatFile.Lowered.
func FromLowered(f *lowering.FlatLowered) *FlatFile {
	file := &FlatFile{Name: f.Name, Params: fromFlatVars(f.Params)}
	for _, b := range f.Blocks {
		fb := FlatBlock{End: FlatEnd{Kind: b.End.Kind.String()}}
		for _, st := range b.Statements {
			fb.Statements = append(fb.Statements, FlatStatement{
				Op:      st.Op,
				Inputs:  fromFlatVars(st.Inputs),
				Outputs: fromFlatVars(st.Outputs),
			})
		}
		switch {
		case b.End.Jumps():
			fb.End.Target = int(b.End.Target)
			for _, r := range b.End.Remapping {
				fb.End.Remapping = append(fb.End.Remapping, FlatRemap{Dst: int(r.Dst), Src: int(r.Src)})
			}
		case b.End.Kind == lowering.EndReturn:
			fb.End.Returns = fromFlatVars(b.End.Returns)
		}
		file.Blocks = append(file.Blocks, fb)
	}
	return file
}

func toFlatVars(vs []int) []lowering.VarID {
	if len(vs) == 0 {
		return nil
	}
	out := make([]lowering.VarID, len(vs))
	for i, v := range vs {
		out[i] = lowering.VarID(v)
	}
	return out
}

func fromFlatVars(vs []lowering.VarID) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = int(v)
	}
	return out
}
