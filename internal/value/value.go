// Package value implements the dynamic, span-tagged Value flowing through
// pipelines: construction, comparison, coercion, cell-path navigation and
// type inference.
package value

import (
	"time"

	"nucore/internal/diag"
	"nucore/internal/source"
)

// Value is an immutable tagged union. Copying a Value is cheap: composite
// payloads live behind shared backing storage that is never written after
// construction.
type Value struct {
	kind Kind
	span source.Span
	i    int64   // Bool (0/1), Int, Duration, Filesize
	f    float64 // Float
	s    string  // String, Glob, Binary bytes
	t    time.Time
	ref  any // Record, List, *Range, *Closure, *CellPath, *diag.Diagnostic, *Custom
}

// Kind never fails.
func (v Value) Kind() Kind { return v.kind }

// Span reports where the value originated.
func (v Value) Span() source.Span { return v.span }

// WithSpan relocates the value without touching its payload.
func (v Value) WithSpan(sp source.Span) Value {
	v.span = sp
	return v
}

// IsNothing reports whether v is Nothing.
func (v Value) IsNothing() bool { return v.kind == KindNothing }

// MakeNothing creates a Nothing value.
func MakeNothing(sp source.Span) Value {
	return Value{kind: KindNothing, span: sp}
}

// MakeBool creates a boolean value.
func MakeBool(b bool, sp source.Span) Value {
	v := Value{kind: KindBool, span: sp}
	if b {
		v.i = 1
	}
	return v
}

// MakeInt creates an integer value.
func MakeInt(n int64, sp source.Span) Value {
	return Value{kind: KindInt, span: sp, i: n}
}

// MakeFloat creates a float value.
func MakeFloat(f float64, sp source.Span) Value {
	return Value{kind: KindFloat, span: sp, f: f}
}

// MakeString creates a string value.
func MakeString(s string, sp source.Span) Value {
	return Value{kind: KindString, span: sp, s: s}
}

// MakeGlob creates a glob pattern value.
func MakeGlob(pattern string, sp source.Span) Value {
	return Value{kind: KindGlob, span: sp, s: pattern}
}

// MakeBinary copies b into a binary value.
func MakeBinary(b []byte, sp source.Span) Value {
	return Value{kind: KindBinary, span: sp, s: string(b)}
}

// MakeDate creates a date value.
func MakeDate(t time.Time, sp source.Span) Value {
	return Value{kind: KindDate, span: sp, t: t}
}

// MakeDuration creates a duration value.
func MakeDuration(d time.Duration, sp source.Span) Value {
	return Value{kind: KindDuration, span: sp, i: int64(d)}
}

// MakeFilesize creates a filesize value from a byte count.
func MakeFilesize(bytes int64, sp source.Span) Value {
	return Value{kind: KindFilesize, span: sp, i: bytes}
}

// MakeRecord wraps r. The record shares storage with r.
func MakeRecord(r Record, sp source.Span) Value {
	return Value{kind: KindRecord, span: sp, ref: r}
}

// MakeList wraps l. The list shares storage with l.
func MakeList(l List, sp source.Span) Value {
	return Value{kind: KindList, span: sp, ref: l}
}

// MakeRange creates a range value.
func MakeRange(r Range, sp source.Span) Value {
	return Value{kind: KindRange, span: sp, ref: &r}
}

// MakeClosure creates a closure value.
func MakeClosure(c Closure, sp source.Span) Value {
	return Value{kind: KindClosure, span: sp, ref: &c}
}

// MakeCellPath creates a cell path value.
func MakeCellPath(p CellPath, sp source.Span) Value {
	return Value{kind: KindCellPath, span: sp, ref: &p}
}

// MakeError lets a diagnostic flow through a pipeline as data.
func MakeError(d *diag.Diagnostic, sp source.Span) Value {
	return Value{kind: KindError, span: sp, ref: d}
}

// MakeCustom wraps a plugin-defined payload.
func MakeCustom(c *Custom, sp source.Span) Value {
	return Value{kind: KindCustom, span: sp, ref: c}
}

// Accessors ------------------------------------------------------------------

// AsBool returns the payload of a Bool value.
func (v Value) AsBool() (bool, bool) {
	return v.i != 0, v.kind == KindBool
}

// AsInt returns the payload of an Int value.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsFloat returns the payload of a Float value.
func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == KindFloat
}

// AsString returns the text of a String or Glob value.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString || v.kind == KindGlob
}

// AsBinary returns a copy of a Binary payload.
func (v Value) AsBinary() ([]byte, bool) {
	if v.kind != KindBinary {
		return nil, false
	}
	return []byte(v.s), true
}

// AsDate returns the payload of a Date value.
func (v Value) AsDate() (time.Time, bool) {
	return v.t, v.kind == KindDate
}

// AsDuration returns the payload of a Duration value.
func (v Value) AsDuration() (time.Duration, bool) {
	return time.Duration(v.i), v.kind == KindDuration
}

// AsFilesize returns the byte count of a Filesize value.
func (v Value) AsFilesize() (int64, bool) {
	return v.i, v.kind == KindFilesize
}

// AsRecord returns the record payload.
func (v Value) AsRecord() (Record, bool) {
	r, ok := v.ref.(Record)
	return r, ok && v.kind == KindRecord
}

// AsList returns the list payload.
func (v Value) AsList() (List, bool) {
	l, ok := v.ref.(List)
	return l, ok && v.kind == KindList
}

// AsRange returns the range payload.
func (v Value) AsRange() (Range, bool) {
	if r, ok := v.ref.(*Range); ok && v.kind == KindRange {
		return *r, true
	}
	return Range{}, false
}

// AsClosure returns the closure payload.
func (v Value) AsClosure() (Closure, bool) {
	if c, ok := v.ref.(*Closure); ok && v.kind == KindClosure {
		return *c, true
	}
	return Closure{}, false
}

// AsCellPath returns the cell path payload.
func (v Value) AsCellPath() (CellPath, bool) {
	if p, ok := v.ref.(*CellPath); ok && v.kind == KindCellPath {
		return *p, true
	}
	return CellPath{}, false
}

// AsError returns the diagnostic carried by an Error value.
func (v Value) AsError() (*diag.Diagnostic, bool) {
	d, ok := v.ref.(*diag.Diagnostic)
	return d, ok && v.kind == KindError
}

// AsCustom returns the custom payload.
func (v Value) AsCustom() (*Custom, bool) {
	c, ok := v.ref.(*Custom)
	return c, ok && v.kind == KindCustom
}
