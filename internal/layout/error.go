package layout

import (
	"fmt"
	"strings"

	"sierra2casm/internal/sierra"
)

// ErrorKind enumerates type registry failures.
type ErrorKind uint8

const (
	// ErrUnknownType indicates a type name with no registered provider.
	ErrUnknownType ErrorKind = iota + 1
	ErrRecursiveType
	ErrNegativeSize
)

// Error represents a failed get_info query.
type Error struct {
	Kind  ErrorKind
	Type  sierra.Type
	Cycle []sierra.Type // for ErrRecursiveType
	Size  int           // for ErrNegativeSize
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrUnknownType:
		return fmt.Sprintf("unknown type %s", e.Type)
	case ErrRecursiveType:
		parts := make([]string, 0, len(e.Cycle))
		for _, t := range e.Cycle {
			parts = append(parts, t.String())
		}
		return fmt.Sprintf("recursive type has no size (cycle: %s)", strings.Join(parts, " -> "))
	case ErrNegativeSize:
		return fmt.Sprintf("type %s reports negative size %d", e.Type, e.Size)
	default:
		return fmt.Sprintf("layout error kind=%d type %s", e.Kind, e.Type)
	}
}
