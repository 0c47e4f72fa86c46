package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Sierra model and type layout
	SigWrongNumberOfTypeArgs     Code = 1001
	SigUnsupportedTypeArg        Code = 1002
	SigUnexpectedMemoryStructure Code = 1003
	SigIllegalArgsLocation       Code = 1004
	SigLocationsNonConsecutive   Code = 1005
	SigUnknownType               Code = 1010
	SigRecursiveType             Code = 1011
	SigNegativeSize              Code = 1012

	// Libfunc invocation lowering
	InvWrongNumberOfArguments     Code = 2001
	InvInvalidReferenceExpression Code = 2002
	InvInvalidGenericArg          Code = 2003
	InvUnknownLibfunc             Code = 2004
	InvNotImplemented             Code = 2005

	// Program compilation
	CmpUndefinedVariable Code = 3001
	CmpVariableRedefined Code = 3002
	CmpTypeMismatch      Code = 3003
	CmpInconsistentState Code = 3004
	CmpBadTarget         Code = 3005
	CmpSharedStatement   Code = 3006
	CmpReturnMismatch    Code = 3007
	CmpDuplicateFunction Code = 3008

	// Gas accounting
	GasCycle  Code = 4001
	GasBudget Code = 4002

	// Input files and configuration
	IOLoadFailed   Code = 5001
	IOConfigFailed Code = 5002

	// Flat lowered CFG
	LowMalformedCFG Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:                   "Unknown error",
	SigWrongNumberOfTypeArgs:      "Wrong number of template arguments",
	SigUnsupportedTypeArg:         "Unsupported template argument",
	SigUnexpectedMemoryStructure:  "Unexpected memory structure",
	SigIllegalArgsLocation:        "Illegal argument location",
	SigLocationsNonConsecutive:    "Locations are not consecutive",
	SigUnknownType:                "Unknown type",
	SigRecursiveType:              "Recursive type",
	SigNegativeSize:               "Negative type size",
	InvWrongNumberOfArguments:     "Wrong number of libfunc arguments",
	InvInvalidReferenceExpression: "Invalid reference expression",
	InvInvalidGenericArg:          "Invalid generic argument",
	InvUnknownLibfunc:             "Unknown libfunc",
	InvNotImplemented:             "Libfunc lowering not implemented",
	CmpUndefinedVariable:          "Undefined variable",
	CmpVariableRedefined:          "Variable redefined",
	CmpTypeMismatch:               "Type mismatch",
	CmpInconsistentState:          "Inconsistent references at join",
	CmpBadTarget:                  "Invalid branch target",
	CmpSharedStatement:            "Statement shared between functions",
	CmpReturnMismatch:             "Return does not match signature",
	CmpDuplicateFunction:          "Duplicate function",
	GasCycle:                      "Cycle in statement graph",
	GasBudget:                     "Gas budget exceeded",
	IOLoadFailed:                  "Cannot load input",
	IOConfigFailed:                "Invalid configuration",
	LowMalformedCFG:               "Malformed control flow",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SIG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("INV%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CMP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("GAS%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("LOW%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
