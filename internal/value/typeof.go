package value

import "nucore/internal/types"

// Type computes the structural type best describing v: a closed record of
// exactly v's shape, list<T> for homogeneous lists, list<oneof<...>> for
// heterogeneous ones and list<any> for the empty list.
func (v Value) Type() types.Type {
	switch v.kind {
	case KindNothing:
		return types.Nothing()
	case KindBool:
		return types.Bool()
	case KindInt:
		return types.Int()
	case KindFloat:
		return types.Float()
	case KindString:
		return types.String()
	case KindGlob:
		return types.Glob()
	case KindBinary:
		return types.Binary()
	case KindDate:
		return types.Date()
	case KindDuration:
		return types.Duration()
	case KindFilesize:
		return types.Filesize()
	case KindRange:
		return types.Range()
	case KindClosure:
		return types.Closure()
	case KindCellPath:
		return types.CellPath()
	case KindError:
		return types.Error()
	case KindRecord:
		r, _ := v.AsRecord()
		fields := make([]types.Field, len(r.cols))
		for i, c := range r.cols {
			fields[i] = types.F(c, r.vals[i].Type())
		}
		return types.ClosedRecord(fields...)
	case KindList:
		l, _ := v.AsList()
		if l.Len() == 0 {
			return types.List(types.Any())
		}
		elems := make([]types.Type, len(l.items))
		for i, it := range l.items {
			elems[i] = it.Type()
		}
		return types.List(types.OneOf(elems...))
	case KindCustom:
		c, _ := v.AsCustom()
		return types.Custom(c.Tag)
	}
	return types.Any()
}

// Accepts reports whether v may be passed where t is expected. It agrees
// with v.Type().IsSubtypeOf(t) with two deliberate exceptions: a custom
// value stands for any shape it declares, and an empty list is accepted for
// every list type even though its type, list<any>, is not a subtype of
// list<int>. An empty list has no element that could violate the element
// type.
func Accepts(t types.Type, v Value) bool {
	switch {
	case t.Kind == types.KindAny:
		return true
	case t.Kind == types.KindOneOf:
		for _, alt := range t.Alts {
			if Accepts(alt, v) {
				return true
			}
		}
		return v.Type().IsSubtypeOf(t)
	case v.kind == KindCustom:
		c, _ := v.AsCustom()
		if types.Custom(c.Tag).IsSubtypeOf(t) {
			return true
		}
		return declares(c.Declared, t)
	case t.Kind == types.KindList && v.kind == KindList:
		l, _ := v.AsList()
		elem := t.Element()
		for _, it := range l.items {
			if !Accepts(elem, it) {
				return false
			}
		}
		return true
	case t.Kind == types.KindRecord && v.kind == KindRecord:
		r, _ := v.AsRecord()
		for _, want := range t.Fields {
			got, ok := r.Get(want.Name)
			if !ok || !Accepts(want.Type, got) {
				return false
			}
		}
		return !t.Closed || r.Len() == len(t.Fields)
	}
	return v.Type().IsSubtypeOf(t)
}

// declares reports whether a declared custom shape satisfies t: directly,
// or through any one of its alternatives.
func declares(declared, t types.Type) bool {
	if declared.Kind == types.KindAny {
		// the zero Type: nothing was declared
		return false
	}
	if declared.IsSubtypeOf(t) {
		return true
	}
	if declared.Kind == types.KindOneOf {
		for _, alt := range declared.Alts {
			if alt.IsSubtypeOf(t) {
				return true
			}
		}
	}
	return false
}
