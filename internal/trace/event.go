package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
	KindFailure // an operation failed; emitted at every level but off
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeCommand represents top-level CLI operations.
	ScopeCommand Scope = iota + 1
	// ScopeRegistry represents plugin registry lifecycle events.
	ScopeRegistry
	// ScopeProtocol represents envelope encode/decode operations.
	ScopeProtocol
	ScopeValue // per-value events (most detailed)
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeCommand:
		return "command"
	case ScopeRegistry:
		return "registry"
	case ScopeProtocol:
		return "protocol"
	case ScopeValue:
		return "value"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	SpanID   uint64            // unique span identifier
	ParentID uint64            // parent span (0 if root)
	Name     string            // e.g. "register", "decode", "tag:df"
	Detail   string            // optional detail message
	Extra    map[string]string // extensible key-value pairs
}
