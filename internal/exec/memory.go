package exec

import (
	"fmt"

	"sierra2casm/internal/sierra"
)

// Memory is a concrete frame addressed the same way as sierra.MemLocation.
type Memory struct {
	cells map[sierra.MemLocation]int64
}

// NewMemory returns an empty frame.
func NewMemory() *Memory {
	return &Memory{cells: make(map[sierra.MemLocation]int64, 16)}
}

// Store writes words starting at loc. Writing a different value into an
// occupied cell is an error.
func (m *Memory) Store(loc sierra.MemLocation, words []int64) error {
	for i, w := range words {
		at := loc.Add(int64(i))
		if old, ok := m.cells[at]; ok && old != w {
			return fmt.Errorf("cell %s already holds %d, cannot store %d", at, old, w)
		}
		m.cells[at] = w
	}
	return nil
}

// Load reads n words starting at loc.
func (m *Memory) Load(loc sierra.MemLocation, n int) ([]int64, error) {
	out := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		at := loc.Add(int64(i))
		w, ok := m.cells[at]
		if !ok {
			return nil, fmt.Errorf("cell %s was never written", at)
		}
		out = append(out, w)
	}
	return out, nil
}

// Place lays the concrete value of an argument into memory so that ref
// evaluates to words.
func (m *Memory) Place(ref sierra.RefValue, words []int64) error {
	switch ref.Kind {
	case sierra.RefFinal:
		return m.Store(ref.Loc, words)
	case sierra.RefTransient:
		if len(words) != 0 {
			return fmt.Errorf("transient reference cannot hold %d cells", len(words))
		}
		return nil
	case sierra.RefOpWithConst:
		if len(words) != 1 {
			return fmt.Errorf("deferred reference must hold one cell, got %d", len(words))
		}
		base := words[0] + ref.Const
		if ref.Op == sierra.OpAdd {
			base = words[0] - ref.Const
		}
		return m.Store(ref.Loc, []int64{base})
	default:
		return fmt.Errorf("invalid reference")
	}
}

// Eval computes the size words that ref denotes.
func (m *Memory) Eval(ref sierra.RefValue, size int) ([]int64, error) {
	switch ref.Kind {
	case sierra.RefFinal:
		return m.Load(ref.Loc, size)
	case sierra.RefTransient:
		if size != 0 {
			return nil, fmt.Errorf("transient reference for a value of %d cells", size)
		}
		return []int64{}, nil
	case sierra.RefOpWithConst:
		if size != 1 {
			return nil, fmt.Errorf("deferred reference for a value of %d cells", size)
		}
		base, err := m.Load(ref.Loc, 1)
		if err != nil {
			return nil, err
		}
		return []int64{ref.Op.Apply(base[0], ref.Const)}, nil
	default:
		return nil, fmt.Errorf("invalid reference")
	}
}
