package trace

import "fmt"

// Level controls tracing verbosity.
type Level uint8

const (
	// LevelOff disables tracing.
	LevelOff    Level = iota // no tracing
	LevelError               // only failures
	LevelInfo                // command + registry boundaries
	LevelDetail              // protocol operations
	LevelDebug               // everything including per-value events
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelInfo:
		return "info"
	case LevelDetail:
		return "detail"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "off", "OFF":
		return LevelOff, nil
	case "error", "ERROR":
		return LevelError, nil
	case "info", "INFO":
		return LevelInfo, nil
	case "detail", "DETAIL":
		return LevelDetail, nil
	case "debug", "DEBUG":
		return LevelDebug, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|info|detail|debug)", s)
	}
}

// ShouldEmit reports whether an event of the given kind and scope passes this level.
func (l Level) ShouldEmit(kind Kind, scope Scope) bool {
	switch l {
	case LevelOff:
		return false
	case LevelError:
		return kind == KindFailure
	case LevelInfo:
		return kind == KindFailure || scope <= ScopeRegistry
	case LevelDetail:
		return kind == KindFailure || scope <= ScopeProtocol
	case LevelDebug:
		return true
	}
	return false
}
