package casm

import (
	"fmt"
	"strings"
)

// HintKind selects a hint.
type HintKind uint8

const (
	// HintSystemCall asks the runner to execute the system call whose request
	// starts at System.
	HintSystemCall HintKind = iota
	// HintTestLessThanOrEqual writes Lhs <= Rhs into Dst.
	HintTestLessThanOrEqual
)

// Hint is prover-side guidance attached to an instruction.
type Hint struct {
	Kind   HintKind
	System ResOperand
	Lhs    ResOperand
	Rhs    ResOperand
	Dst    CellRef
}

func (h Hint) String() string {
	switch h.Kind {
	case HintSystemCall:
		return fmt.Sprintf("%%{ syscall_handler.syscall(syscall_ptr=%s) %%}", h.System)
	case HintTestLessThanOrEqual:
		return fmt.Sprintf("%%{ memory%s = %s <= %s %%}", h.Dst, h.Lhs, h.Rhs)
	default:
		return "%{ ? %}"
	}
}

// InstrKind enumerates instruction forms.
type InstrKind uint8

const (
	InstrAssertEq InstrKind = iota
	InstrJnz
	InstrJump
	InstrCall
	InstrRet
	InstrAddAp
)

// Instruction is one CASM instruction.
//
//	InstrAssertEq  Dst = Res
//	InstrJnz       jmp rel Target if Dst != 0
//	InstrJump      jmp rel|abs Target
//	InstrCall      call rel|abs Target
//	InstrRet       ret
//	InstrAddAp     ap += Res
type Instruction struct {
	Kind     InstrKind
	Dst      CellRef
	Res      ResOperand
	Target   DerefOrImmediate
	Relative bool
	IncAp    bool
	Hints    []Hint
}

func AssertEq(dst CellRef, res ResOperand) Instruction {
	return Instruction{Kind: InstrAssertEq, Dst: dst, Res: res}
}

func JumpRel(offset int64) Instruction {
	return Instruction{Kind: InstrJump, Target: ImmOperandInt(offset), Relative: true}
}

func JnzRel(offset int64, cond CellRef) Instruction {
	return Instruction{Kind: InstrJnz, Dst: cond, Target: ImmOperandInt(offset), Relative: true}
}

func CallRel(offset int64) Instruction {
	return Instruction{Kind: InstrCall, Target: ImmOperandInt(offset), Relative: true}
}

func Ret() Instruction { return Instruction{Kind: InstrRet} }

func AddAp(n int64) Instruction {
	return Instruction{Kind: InstrAddAp, Res: ImmediateInt(n)}
}

// Size is the encoded length in words.
func (in Instruction) Size() int {
	switch in.Kind {
	case InstrAssertEq, InstrAddAp:
		if in.Res.HasImmediate() {
			return 2
		}
		return 1
	case InstrJnz, InstrJump, InstrCall:
		if in.Target.IsImmediate {
			return 2
		}
		return 1
	default:
		return 1
	}
}

// ApChange is how far the instruction advances ap, when statically known.
func (in Instruction) ApChange() (int, bool) {
	switch in.Kind {
	case InstrAddAp:
		if in.Res.Kind != ResImmediate {
			return 0, false
		}
		n, ok := in.Res.Imm.Int64()
		return int(n), ok
	case InstrCall, InstrRet:
		return 0, false
	}
	if in.IncAp {
		return 1, true
	}
	return 0, true
}

// SetRelativeTarget points a relative jump or call at offset.
func (in *Instruction) SetRelativeTarget(offset int64) {
	in.Target = ImmOperandInt(offset)
	in.Relative = true
}

func (in Instruction) String() string {
	var sb strings.Builder
	for _, h := range in.Hints {
		sb.WriteString(h.String())
		sb.WriteByte('\n')
	}
	mode := "abs"
	if in.Relative {
		mode = "rel"
	}
	switch in.Kind {
	case InstrAssertEq:
		fmt.Fprintf(&sb, "%s = %s", in.Dst, in.Res)
	case InstrJnz:
		fmt.Fprintf(&sb, "jmp rel %s if %s != 0", in.Target, in.Dst)
	case InstrJump:
		fmt.Fprintf(&sb, "jmp %s %s", mode, in.Target)
	case InstrCall:
		fmt.Fprintf(&sb, "call %s %s", mode, in.Target)
	case InstrRet:
		sb.WriteString("ret")
	case InstrAddAp:
		fmt.Fprintf(&sb, "ap += %s", in.Res)
	}
	if in.IncAp {
		sb.WriteString(", ap++")
	}
	return sb.String()
}

// Format renders a program one instruction per line.
func Format(ins []Instruction) string {
	var sb strings.Builder
	for _, in := range ins {
		sb.WriteString(in.String())
		sb.WriteString(";\n")
	}
	return sb.String()
}
