package pipeline

import (
	"context"
	"iter"
	"slices"

	"nucore/internal/diag"
	"nucore/internal/source"
	"nucore/internal/value"
)

// Kind distinguishes the three shapes of pipeline data.
type Kind uint8

const (
	// KindEmpty is the absence of input, distinct from a Nothing value only
	// in that it has no span.
	KindEmpty Kind = iota
	// KindValue is a single, fully materialised value.
	KindValue
	// KindListStream is a lazy sequence of values.
	KindListStream
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindValue:
		return "value"
	case KindListStream:
		return "list-stream"
	default:
		return "unknown"
	}
}

// Data is what flows between two commands.
type Data struct {
	kind   Kind
	value  value.Value
	stream iter.Seq[value.Value]
	meta   *Metadata
}

// Empty returns data carrying nothing.
func Empty() Data {
	return Data{kind: KindEmpty}
}

// FromValue wraps a single value.
func FromValue(v value.Value, meta *Metadata) Data {
	return Data{kind: KindValue, value: v, meta: meta}
}

// FromStream wraps a lazy sequence. A nil seq is treated as an empty stream.
func FromStream(seq iter.Seq[value.Value], meta *Metadata) Data {
	if seq == nil {
		seq = func(func(value.Value) bool) {}
	}
	return Data{kind: KindListStream, stream: seq, meta: meta}
}

// FromValues streams a fixed slice. The slice is copied.
func FromValues(vs []value.Value, meta *Metadata) Data {
	return FromStream(slices.Values(slices.Clone(vs)), meta)
}

func (d Data) Kind() Kind { return d.kind }

// Metadata returns the attached metadata, or nil.
func (d Data) Metadata() *Metadata { return d.meta }

// WithMetadata returns d with meta attached. Empty data stays metadata-free.
func (d Data) WithMetadata(meta *Metadata) Data {
	if d.kind == KindEmpty {
		return d
	}
	d.meta = meta
	return d
}

// Value returns the wrapped value for KindValue data.
func (d Data) Value() (value.Value, bool) {
	return d.value, d.kind == KindValue
}

// IsNothing reports whether d is Empty or a Nothing value. Streams are
// never nothing, even when they would yield no items.
func (d Data) IsNothing() bool {
	switch d.kind {
	case KindEmpty:
		return true
	case KindValue:
		return d.value.IsNothing()
	default:
		return false
	}
}

// Span returns the span of a single value. Streams and Empty have none.
func (d Data) Span() (source.Span, bool) {
	if d.kind == KindValue {
		return d.value.Span(), true
	}
	return source.Unknown, false
}

// Values iterates the items of d: the items of a list or range value, the
// elements of a stream, or the single value itself. Empty and Nothing yield
// nothing.
func (d Data) Values() iter.Seq[value.Value] {
	switch d.kind {
	case KindListStream:
		return d.stream
	case KindValue:
		v := d.value
		if l, ok := v.AsList(); ok {
			return l.All()
		}
		if r, ok := v.AsRange(); ok {
			return func(yield func(value.Value) bool) {
				for n := range r.All() {
					if !yield(value.MakeInt(n, v.Span())) {
						return
					}
				}
			}
		}
		if v.IsNothing() {
			return func(func(value.Value) bool) {}
		}
		return func(yield func(value.Value) bool) { yield(v) }
	default:
		return func(func(value.Value) bool) {}
	}
}

// Map applies f to every item. Streams stay lazy; a list value is mapped
// eagerly; any other single value is passed to f directly.
func (d Data) Map(f func(value.Value) value.Value) Data {
	switch d.kind {
	case KindListStream:
		src := d.stream
		return FromStream(func(yield func(value.Value) bool) {
			for v := range src {
				if !yield(f(v)) {
					return
				}
			}
		}, d.meta)
	case KindValue:
		if l, ok := d.value.AsList(); ok {
			out := make([]value.Value, 0, l.Len())
			for v := range l.All() {
				out = append(out, f(v))
			}
			return FromValue(value.MakeList(value.NewList(out...), d.value.Span()), d.meta)
		}
		return FromValue(f(d.value), d.meta)
	default:
		return d
	}
}

// WithContext makes a stream stop yielding once ctx is done. Other shapes
// are returned unchanged.
func (d Data) WithContext(ctx context.Context) Data {
	if d.kind != KindListStream {
		return d
	}
	src := d.stream
	return FromStream(func(yield func(value.Value) bool) {
		for v := range src {
			if ctx.Err() != nil || !yield(v) {
				return
			}
		}
	}, d.meta)
}

// IntoValue materialises d as one value placed at span. Streams are
// collected into a list.
func (d Data) IntoValue(span source.Span) value.Value {
	switch d.kind {
	case KindValue:
		if d.value.IsNothing() {
			return value.MakeNothing(span)
		}
		return d.value.WithSpan(span)
	case KindListStream:
		return value.MakeList(value.NewList(slices.Collect(d.stream)...), span)
	default:
		return value.MakeNothing(span)
	}
}

// Drain consumes d and returns the first error value it meets, if any.
func (d Data) Drain() error {
	switch d.kind {
	case KindValue:
		if e, ok := d.value.AsError(); ok {
			return e
		}
	case KindListStream:
		for v := range d.stream {
			if e, ok := v.AsError(); ok {
				return e
			}
		}
	}
	return nil
}

// FollowCellPath resolves path against the data. Streams are collected into
// a list placed at head first.
func (d Data) FollowCellPath(path value.CellPath, head source.Span, ops value.CustomOps) (value.Value, error) {
	switch d.kind {
	case KindValue:
		return d.value.FollowCellPathWith(path, ops)
	case KindListStream:
		return d.IntoValue(head).FollowCellPathWith(path, ops)
	default:
		return value.Value{}, diag.New(diag.PathIncompatible, head,
			"data cannot be accessed with a cell path",
			"empty pipeline doesn't support cell paths")
	}
}

// TryExpandRange turns a range value into a list of its elements, as needed
// by serialisers that have no range notation. Unbounded ranges are rejected.
// Anything else is returned unchanged.
func (d Data) TryExpandRange() (Data, error) {
	if d.kind != KindValue {
		return d, nil
	}
	r, ok := d.value.AsRange()
	if !ok {
		return d, nil
	}
	sp := d.value.Span()
	if r.Bound() == value.BoundUnbounded {
		return d, diag.New(diag.RunInvalidRange, sp, "cannot create range",
			"unbounded ranges are not allowed when converting to a list").
			WithHelp("consider using ranges with valid start and end point")
	}
	n, _ := r.Len()
	items := make([]value.Value, 0, min(n, 1<<16))
	for x := range r.All() {
		items = append(items, value.MakeInt(x, sp))
	}
	// метаданные диапазона к списку не относятся
	return FromValue(value.MakeList(value.NewList(items...), sp), nil), nil
}
