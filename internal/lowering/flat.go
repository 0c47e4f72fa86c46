// Package lowering holds the flat lowered CFG of a function and the passes
// that finalize its control flow before code generation.
package lowering

// BlockID indexes FlatLowered.Blocks.
type BlockID int

// VarID names a lowered variable.
type VarID int

// Remap renames Src to Dst on a block edge.
type Remap struct {
	Dst VarID
	Src VarID
}

// VarRemapping is the ordered set of renames applied when control moves
// along an edge.
type VarRemapping []Remap

type EndKind uint8

const (
	EndNotSet EndKind = iota
	EndFallthrough
	EndGoto
	EndReturn
	EndUnreachable
)

func (k EndKind) String() string {
	switch k {
	case EndNotSet:
		return "not_set"
	case EndFallthrough:
		return "fallthrough"
	case EndGoto:
		return "goto"
	case EndReturn:
		return "return"
	case EndUnreachable:
		return "unreachable"
	default:
		return "end?"
	}
}

// FlatBlockEnd terminates a block. Target and Remapping are used by
// Fallthrough and Goto; Returns by Return.
type FlatBlockEnd struct {
	Kind      EndKind
	Target    BlockID
	Remapping VarRemapping
	Returns   []VarID
}

// Jumps reports whether the end transfers control to Target.
func (e FlatBlockEnd) Jumps() bool {
	return e.Kind == EndFallthrough || e.Kind == EndGoto
}

// FlatStatement is an operation inside a block. The passes here only look at
// its variables.
type FlatStatement struct {
	Op      string
	Inputs  []VarID
	Outputs []VarID
}

type FlatBlock struct {
	Statements []FlatStatement
	End        FlatBlockEnd
}

// FlatLowered is one function's blocks in topological order.
type FlatLowered struct {
	Name   string
	Params []VarID
	Blocks []FlatBlock
}

func Goto(target BlockID, remapping VarRemapping) FlatBlockEnd {
	return FlatBlockEnd{Kind: EndGoto, Target: target, Remapping: remapping}
}

func Fallthrough(target BlockID, remapping VarRemapping) FlatBlockEnd {
	return FlatBlockEnd{Kind: EndFallthrough, Target: target, Remapping: remapping}
}

func Return(vars ...VarID) FlatBlockEnd {
	return FlatBlockEnd{Kind: EndReturn, Returns: vars}
}

func Unreachable() FlatBlockEnd { return FlatBlockEnd{Kind: EndUnreachable} }
