package trace

import "time"

// Kind is what an event marks.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event; coarser scopes have lower values.
type Scope uint8

const (
	ScopeDriver    Scope = iota + 1 // one CLI command
	ScopePass                       // ownership, lower, gas, link
	ScopeFunction                   // one Sierra function
	ScopeStatement                  // one statement of a function
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeFunction:
		return "function"
	case ScopeStatement:
		return "statement"
	default:
		return "unknown"
	}
}

// NoStatement is the Statement of an event not tied to one statement.
const NoStatement = -1

// Event is one trace record. Function and Statement locate it in the
// program being compiled; they are inherited from the enclosing span.
type Event struct {
	Time      time.Time
	Seq       uint64
	Kind      Kind
	Scope     Scope
	SpanID    uint64
	ParentID  uint64 // 0 for a root span
	Function  string
	Statement int
	Name      string // "lower", "function:withdraw", "statement:3"
	Detail    string
	Extra     map[string]string
}
