package plugin

import (
	"strings"

	"nucore/internal/source"
	"nucore/internal/types"
	"nucore/internal/value"
)

// Capabilities is everything the registry knows about one custom type.
// Encode, Decode and ToBaseValue are required.
type Capabilities struct {
	// Declared is the shape values of this type promise to satisfy. The
	// zero Type (Any) is allowed.
	Declared types.Type

	Encode func(payload any) ([]byte, error)
	Decode func(data []byte) (any, error)
	// ToBaseValue reduces a payload to a plain Value placed at span.
	ToBaseValue func(payload any, span source.Span) (value.Value, error)

	// Compare is optional; without it custom values are equal only to
	// themselves.
	Compare func(a, b any) value.Ordering
	// Display is optional; without it values render as <tag>.
	Display func(payload any) string
}

// missing lists the required capabilities that are nil.
func (c Capabilities) missing() []string {
	var out []string
	if c.Encode == nil {
		out = append(out, "encode")
	}
	if c.Decode == nil {
		out = append(out, "decode")
	}
	if c.ToBaseValue == nil {
		out = append(out, "to-base-value")
	}
	return out
}

func missingText(names []string) string {
	return "missing " + strings.Join(names, ", ")
}
