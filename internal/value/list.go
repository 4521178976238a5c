package value

import (
	"iter"
	"slices"
)

// List is an ordered sequence of values of any kinds. Like Record, its
// backing slice is shared and never written after construction.
type List struct {
	items []Value
}

// NewList copies items into a list.
func NewList(items ...Value) List {
	return List{items: slices.Clone(items)}
}

// Len returns the number of items.
func (l List) Len() int { return len(l.items) }

// At returns the i-th item.
func (l List) At(i int) (Value, bool) {
	if i < 0 || i >= len(l.items) {
		return Value{}, false
	}
	return l.items[i], true
}

// Items returns a copy of the items.
func (l List) Items() []Value { return slices.Clone(l.items) }

// All iterates the items in order.
func (l List) All() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for _, it := range l.items {
			if !yield(it) {
				return
			}
		}
	}
}

// Append returns a new list with vs added at the end; l is unchanged.
func (l List) Append(vs ...Value) List {
	items := make([]Value, 0, len(l.items)+len(vs))
	items = append(items, l.items...)
	return List{items: append(items, vs...)}
}
