package value

import (
	"fmt"
	"iter"
	"slices"

	"nucore/internal/diag"
	"nucore/internal/source"
)

// Record is an ordered mapping from unique field names to values. The
// backing slices are shared between copies and never written after
// construction; Insert and Remove build new backing storage.
type Record struct {
	cols []string
	vals []Value
}

// NewRecord pairs cols with vals. Duplicate names and mismatched lengths are
// reported as runtime diagnostics at an unknown span; callers relocate them.
func NewRecord(cols []string, vals []Value) (Record, error) {
	if len(cols) != len(vals) {
		return Record{}, diag.Runtime(diag.RunLengthMismatch, source.Unknown,
			fmt.Sprintf("record has %d columns but %d values", len(cols), len(vals)))
	}
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if _, dup := seen[c]; dup {
			return Record{}, diag.Runtime(diag.RunDuplicateField, source.Unknown,
				fmt.Sprintf("column %q appears more than once", c))
		}
		seen[c] = struct{}{}
	}
	return Record{cols: slices.Clone(cols), vals: slices.Clone(vals)}, nil
}

// MustRecord is NewRecord for literals known to be valid.
func MustRecord(cols []string, vals []Value) Record {
	r, err := NewRecord(cols, vals)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.cols) }

// Get returns the value stored under name.
func (r Record) Get(name string) (Value, bool) {
	if i := slices.Index(r.cols, name); i >= 0 {
		return r.vals[i], true
	}
	return Value{}, false
}

// At returns the i-th field in insertion order.
func (r Record) At(i int) (string, Value) {
	return r.cols[i], r.vals[i]
}

// Columns returns a copy of the field names in insertion order.
func (r Record) Columns() []string { return slices.Clone(r.cols) }

// Values returns a copy of the field values in insertion order.
func (r Record) Values() []Value { return slices.Clone(r.vals) }

// All iterates fields in insertion order.
func (r Record) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for i, c := range r.cols {
			if !yield(c, r.vals[i]) {
				return
			}
		}
	}
}

// Insert returns a record with name set to v. An existing field keeps its
// position; a new one is appended.
func (r Record) Insert(name string, v Value) Record {
	if i := slices.Index(r.cols, name); i >= 0 {
		vals := slices.Clone(r.vals)
		vals[i] = v
		return Record{cols: r.cols, vals: vals}
	}
	cols := make([]string, len(r.cols), len(r.cols)+1)
	copy(cols, r.cols)
	vals := make([]Value, len(r.vals), len(r.vals)+1)
	copy(vals, r.vals)
	return Record{cols: append(cols, name), vals: append(vals, v)}
}

// Remove returns a record without name, and whether it was present.
func (r Record) Remove(name string) (Record, bool) {
	i := slices.Index(r.cols, name)
	if i < 0 {
		return r, false
	}
	return Record{
		cols: slices.Delete(slices.Clone(r.cols), i, i+1),
		vals: slices.Delete(slices.Clone(r.vals), i, i+1),
	}, true
}
