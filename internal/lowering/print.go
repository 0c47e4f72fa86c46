package lowering

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a human-readable listing of f.
func Dump(w io.Writer, f *FlatLowered) error {
	if w == nil || f == nil {
		return nil
	}
	name := f.Name
	if name == "" {
		name = "_"
	}
	if _, err := fmt.Fprintf(w, "fn %s(%s):\n", name, formatVars(f.Params)); err != nil {
		return err
	}
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		fmt.Fprintf(w, "  blk%d:\n", i)
		for _, st := range bb.Statements {
			fmt.Fprintf(w, "    (%s) <- %s(%s)\n", formatVars(st.Outputs), st.Op, formatVars(st.Inputs))
		}
		if _, err := fmt.Fprintf(w, "    %s\n", formatEnd(bb.End)); err != nil {
			return err
		}
	}
	return nil
}

func formatEnd(e FlatBlockEnd) string {
	switch e.Kind {
	case EndFallthrough, EndGoto:
		out := fmt.Sprintf("%s blk%d", e.Kind, e.Target)
		if len(e.Remapping) > 0 {
			parts := make([]string, 0, len(e.Remapping))
			for _, m := range e.Remapping {
				parts = append(parts, fmt.Sprintf("v%d <- v%d", m.Dst, m.Src))
			}
			out += " {" + strings.Join(parts, ", ") + "}"
		}
		return out
	case EndReturn:
		return fmt.Sprintf("return (%s)", formatVars(e.Returns))
	default:
		return e.Kind.String()
	}
}

func formatVars(vs []VarID) string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		parts = append(parts, fmt.Sprintf("v%d", v))
	}
	return strings.Join(parts, ", ")
}
