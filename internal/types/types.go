// Package types describes the shapes Values may have and the structural
// subsumption relation used to validate command signatures.
package types

import (
	"fmt"
	"slices"
)

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindAny Kind = iota
	KindNothing
	KindBool
	KindInt
	KindFloat
	KindString
	KindGlob
	KindBinary
	KindDate
	KindDuration
	KindFilesize
	KindRange
	KindClosure
	KindCellPath
	KindError
	KindList
	KindRecord
	KindOneOf
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindNothing:
		return "nothing"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindGlob:
		return "glob"
	case KindBinary:
		return "binary"
	case KindDate:
		return "date"
	case KindDuration:
		return "duration"
	case KindFilesize:
		return "filesize"
	case KindRange:
		return "range"
	case KindClosure:
		return "closure"
	case KindCellPath:
		return "cell-path"
	case KindError:
		return "error"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	case KindOneOf:
		return "oneof"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsPrimitive reports whether k has no type parameters.
func (k Kind) IsPrimitive() bool {
	return k >= KindBool && k <= KindError
}

// Field is one named record column.
type Field struct {
	Name string
	Type Type
}

// Type is a compact, immutable descriptor. Build it with the constructors
// below; the zero Type is Any.
type Type struct {
	Kind   Kind
	Elem   *Type   // for lists
	Fields []Field // for records, in declaration order
	Closed bool    // record admits no fields beyond Fields
	Alts   []Type  // for oneof
	Name   string  // for custom types: the registered type tag
}

// Descriptor helpers ---------------------------------------------------------

func Any() Type      { return Type{Kind: KindAny} }
func Nothing() Type  { return Type{Kind: KindNothing} }
func Bool() Type     { return Type{Kind: KindBool} }
func Int() Type      { return Type{Kind: KindInt} }
func Float() Type    { return Type{Kind: KindFloat} }
func String() Type   { return Type{Kind: KindString} }
func Glob() Type     { return Type{Kind: KindGlob} }
func Binary() Type   { return Type{Kind: KindBinary} }
func Date() Type     { return Type{Kind: KindDate} }
func Duration() Type { return Type{Kind: KindDuration} }
func Filesize() Type { return Type{Kind: KindFilesize} }
func Range() Type    { return Type{Kind: KindRange} }
func Closure() Type  { return Type{Kind: KindClosure} }
func CellPath() Type { return Type{Kind: KindCellPath} }
func Error() Type    { return Type{Kind: KindError} }

// Number is oneof<int, float>.
func Number() Type { return OneOf(Int(), Float()) }

// List describes list<elem>.
func List(elem Type) Type {
	return Type{Kind: KindList, Elem: &elem}
}

// Record describes an open record requiring at least the given fields.
func Record(fields ...Field) Type {
	return Type{Kind: KindRecord, Fields: slices.Clone(fields)}
}

// ClosedRecord describes a record with exactly the given fields.
func ClosedRecord(fields ...Field) Type {
	return Type{Kind: KindRecord, Fields: slices.Clone(fields), Closed: true}
}

// AnyRecord accepts every record regardless of shape.
func AnyRecord() Type {
	return Type{Kind: KindRecord}
}

// Table is list<record<...>>, the shape of tabular pipeline data.
func Table(fields ...Field) Type {
	return List(Record(fields...))
}

// F is shorthand for a record Field.
func F(name string, t Type) Field {
	return Field{Name: name, Type: t}
}

// OneOf describes a union. Nested unions are flattened, duplicates dropped
// and a union containing Any collapses to Any; a single alternative is
// returned as-is.
func OneOf(alts ...Type) Type {
	flat := make([]Type, 0, len(alts))
	var add func(t Type)
	add = func(t Type) {
		if t.Kind == KindOneOf {
			for _, a := range t.Alts {
				add(a)
			}
			return
		}
		for _, seen := range flat {
			if Equal(seen, t) {
				return
			}
		}
		flat = append(flat, t)
	}
	for _, a := range alts {
		add(a)
	}
	for _, t := range flat {
		if t.Kind == KindAny {
			return Any()
		}
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return Type{Kind: KindOneOf, Alts: flat}
}

// Custom describes a custom value registered under name.
func Custom(name string) Type {
	return Type{Kind: KindCustom, Name: name}
}

// Element returns the list element type, Any for non-lists.
func (t Type) Element() Type {
	if t.Kind != KindList || t.Elem == nil {
		return Any()
	}
	return *t.Elem
}

// Field looks up a record field by name.
func (t Type) Field(name string) (Type, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return Type{}, false
}

// Equal reports structural equality. Record field order is significant
// only for display, not for equality.
func Equal(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindList:
		return Equal(a.Element(), b.Element())
	case KindRecord:
		if a.Closed != b.Closed || len(a.Fields) != len(b.Fields) {
			return false
		}
		for _, f := range a.Fields {
			other, ok := b.Field(f.Name)
			if !ok || !Equal(f.Type, other) {
				return false
			}
		}
		return true
	case KindOneOf:
		if len(a.Alts) != len(b.Alts) {
			return false
		}
		for _, x := range a.Alts {
			if !slices.ContainsFunc(b.Alts, func(y Type) bool { return Equal(x, y) }) {
				return false
			}
		}
		return true
	case KindCustom:
		return a.Name == b.Name
	}
	return true
}
