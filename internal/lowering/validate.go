package lowering

import (
	"errors"
	"fmt"
)

// Validate checks the shape of f before any pass runs on it: every block is
// terminated, every edge lands on an existing block, and an existing
// Fallthrough targets the next block.
func Validate(f *FlatLowered) error {
	if f == nil {
		return nil
	}
	var errs []error
	for i := range f.Blocks {
		end := f.Blocks[i].End
		switch end.Kind {
		case EndNotSet:
			errs = append(errs, fmt.Errorf("blk%d: block is not terminated", i))
		case EndFallthrough, EndGoto:
			if end.Target < 0 || int(end.Target) >= len(f.Blocks) {
				errs = append(errs, fmt.Errorf("blk%d: %s to missing blk%d", i, end.Kind, end.Target))
				continue
			}
			if end.Kind == EndFallthrough && int(end.Target) != i+1 {
				errs = append(errs, fmt.Errorf("blk%d: fallthrough to non-adjacent blk%d", i, end.Target))
			}
			if err := validateRemapping(end.Remapping); err != nil {
				errs = append(errs, fmt.Errorf("blk%d: %w", i, err))
			}
		case EndReturn, EndUnreachable:
		default:
			errs = append(errs, fmt.Errorf("blk%d: unknown end kind %d", i, end.Kind))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	name := f.Name
	if name == "" {
		name = "_"
	}
	return fmt.Errorf("function %s: %w", name, errors.Join(errs...))
}

func validateRemapping(r VarRemapping) error {
	seen := make(map[VarID]struct{}, len(r))
	for _, m := range r {
		if _, dup := seen[m.Dst]; dup {
			return fmt.Errorf("v%d is remapped twice", m.Dst)
		}
		seen[m.Dst] = struct{}{}
	}
	return nil
}
