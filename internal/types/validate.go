package types

import (
	"fmt"

	"nucore/internal/diag"
	"nucore/internal/source"
)

// maxDepth bounds nesting; anything deeper is treated as a cycle.
const maxDepth = 256

// Validate checks construction-time invariants: unique record fields,
// non-empty unions, named custom types and acyclic list element chains.
// Subsumption assumes a validated type.
func (t Type) Validate() error {
	return validate(&t, nil, 0)
}

func validate(t *Type, path []*Type, depth int) error {
	if depth > maxDepth {
		return malformed("type nesting exceeds %d levels", maxDepth)
	}
	for _, p := range path {
		if p == t {
			return malformed("type %s refers to itself", t.Kind)
		}
	}
	path = append(path, t)

	switch t.Kind {
	case KindList:
		if t.Elem != nil {
			return validate(t.Elem, path, depth+1)
		}
	case KindRecord:
		seen := make(map[string]struct{}, len(t.Fields))
		for i := range t.Fields {
			f := &t.Fields[i]
			if _, dup := seen[f.Name]; dup {
				return malformed("record type has duplicate field %q", f.Name)
			}
			seen[f.Name] = struct{}{}
			if err := validate(&f.Type, path, depth+1); err != nil {
				return err
			}
		}
	case KindOneOf:
		if len(t.Alts) == 0 {
			return malformed("oneof type has no alternatives")
		}
		for i := range t.Alts {
			if err := validate(&t.Alts[i], path, depth+1); err != nil {
				return err
			}
		}
	case KindCustom:
		if t.Name == "" {
			return malformed("custom type has an empty name")
		}
	default:
		if t.Kind > KindCustom {
			return malformed("unknown type kind %d", t.Kind)
		}
	}
	return nil
}

func malformed(format string, args ...any) error {
	return diag.New(diag.TypeMalformed, source.Unknown, "malformed type", fmt.Sprintf(format, args...))
}
