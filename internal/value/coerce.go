package value

import (
	"slices"

	"nucore/internal/diag"
	"nucore/internal/types"
)

// maxExactInt is the largest magnitude float64 represents exactly.
const maxExactInt = 1 << 53

// CoerceInto converts v to a value of type t using the implicit coercions
// the shell allows: Int to Float when exact, Filesize and Int both ways,
// String and Glob both ways, applied through lists, records and unions.
// Narrowing Float to Int is never done. Values already acceptable for t are
// returned unchanged.
func (v Value) CoerceInto(t types.Type) (Value, error) {
	if out, ok := coerce(v, t); ok {
		return out, nil
	}
	d := diag.TypeMismatchf(v.span, t.String(), v.Type().String())
	if lossy := lossyReason(v, t); lossy != "" {
		d = d.WithCause(diag.New(diag.TypeLossyCoercion, v.span, "lossy coercion rejected", lossy))
	}
	return Value{}, d
}

// lossyReason explains the coercions refused only because they would lose
// information.
func lossyReason(v Value, t types.Type) string {
	switch {
	case v.kind == KindFloat && t.Kind == types.KindInt:
		return "floats are never narrowed to int implicitly"
	case v.kind == KindInt && t.Kind == types.KindFloat:
		return "int magnitude exceeds 2^53 and cannot be represented exactly"
	}
	return ""
}

func coerce(v Value, t types.Type) (Value, bool) {
	if Accepts(t, v) {
		return v, true
	}
	switch t.Kind {
	case types.KindOneOf:
		for _, alt := range t.Alts {
			if out, ok := coerce(v, alt); ok {
				return out, true
			}
		}
	case types.KindFloat:
		if n, ok := v.AsInt(); ok && n >= -maxExactInt && n <= maxExactInt {
			return MakeFloat(float64(n), v.span), true
		}
	case types.KindInt:
		if n, ok := v.AsFilesize(); ok {
			return MakeInt(n, v.span), true
		}
	case types.KindFilesize:
		if n, ok := v.AsInt(); ok {
			return MakeFilesize(n, v.span), true
		}
	case types.KindString:
		if v.kind == KindGlob {
			return MakeString(v.s, v.span), true
		}
	case types.KindGlob:
		if v.kind == KindString {
			return MakeGlob(v.s, v.span), true
		}
	case types.KindList:
		l, ok := v.AsList()
		if !ok {
			return Value{}, false
		}
		elem := t.Element()
		out := make([]Value, len(l.items))
		for i, it := range l.items {
			c, ok := coerce(it, elem)
			if !ok {
				return Value{}, false
			}
			out[i] = c
		}
		return MakeList(List{items: out}, v.span), true
	case types.KindRecord:
		r, ok := v.AsRecord()
		if !ok || (t.Closed && r.Len() != len(t.Fields)) {
			return Value{}, false
		}
		vals := make([]Value, len(r.vals))
		copy(vals, r.vals)
		for _, want := range t.Fields {
			i := slices.Index(r.cols, want.Name)
			if i < 0 {
				return Value{}, false
			}
			c, ok := coerce(vals[i], want.Type)
			if !ok {
				return Value{}, false
			}
			vals[i] = c
		}
		return MakeRecord(Record{cols: r.cols, vals: vals}, v.span), true
	}
	return Value{}, false
}
