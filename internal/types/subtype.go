package types

// IsSubtypeOf reports whether a value of type t is acceptable where super is
// expected. The relation is total over well-formed types, reflexive and
// transitive.
//
// Primitive kinds subsume only themselves: Int is not a subtype of Float even
// though the value layer can coerce one into the other. Records are
// width-open: extra fields on t are fine unless super is closed.
func (t Type) IsSubtypeOf(super Type) bool {
	if super.Kind == KindAny {
		return true
	}
	// a union fits only if every alternative does
	if t.Kind == KindOneOf {
		for _, alt := range t.Alts {
			if !alt.IsSubtypeOf(super) {
				return false
			}
		}
		return true
	}
	if super.Kind == KindOneOf {
		for _, alt := range super.Alts {
			if t.IsSubtypeOf(alt) {
				return true
			}
		}
		return false
	}

	switch super.Kind {
	case KindList:
		return t.Kind == KindList && t.Element().IsSubtypeOf(super.Element())
	case KindRecord:
		return t.Kind == KindRecord && recordSubtype(t, super)
	case KindCustom:
		return t.Kind == KindCustom && t.Name == super.Name
	default:
		// Nothing and every primitive kind: exact match only.
		return t.Kind == super.Kind
	}
}

// recordSubtype checks fields one by one: every field super requires must be
// present in t with a subtype. A closed super additionally forbids fields it
// does not name, which only a closed t can guarantee.
func recordSubtype(t, super Type) bool {
	for _, want := range super.Fields {
		have, ok := t.Field(want.Name)
		if !ok || !have.IsSubtypeOf(want.Type) {
			return false
		}
	}
	if super.Closed {
		return t.Closed && len(t.Fields) == len(super.Fields)
	}
	return true
}

// Common returns whichever of a and b subsumes the other. Unrelated types
// yield oneof<a, b> when allowUnion is set, Any otherwise.
func Common(a, b Type, allowUnion bool) Type {
	switch {
	case a.IsSubtypeOf(b):
		return b
	case b.IsSubtypeOf(a):
		return a
	case allowUnion:
		return OneOf(a, b)
	}
	return Any()
}
