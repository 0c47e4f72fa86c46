package lowering

import (
	"fmt"
)

// AddFallthroughs gives every jump target at most one fallthrough
// predecessor by turning the last Goto into it into a Fallthrough. Blocks are
// visited from last to first; the rewritten jump must come from the block
// right before its target.
//
// A second Fallthrough into one block, or a fallthrough candidate that is
// not adjacent to its target, means an earlier pass produced a malformed CFG;
// AddFallthroughs panics on both.
func AddFallthroughs(f *FlatLowered) {
	if f == nil {
		return
	}
	hasFallthrough := make([]bool, len(f.Blocks))
	for i := len(f.Blocks) - 1; i >= 0; i-- {
		end := &f.Blocks[i].End
		if !end.Jumps() {
			continue
		}
		target := end.Target
		if target < 0 || int(target) >= len(f.Blocks) {
			panic(fmt.Sprintf("lowering: blk%d jumps to missing blk%d", i, target))
		}
		if hasFallthrough[target] {
			if end.Kind == EndFallthrough {
				panic(fmt.Sprintf("lowering: unexpected fallthrough in blk%d", i))
			}
			continue
		}
		if int(target) != i+1 {
			panic(fmt.Sprintf("lowering: blk%d should fall through to blk%d, not blk%d", i, i+1, target))
		}
		*end = Fallthrough(target, end.Remapping)
		hasFallthrough[target] = true
	}
}
