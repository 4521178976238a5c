package diag

import (
	"fmt"
	"sort"
)

// Bag collects diagnostics up to a limit.
type Bag struct {
	items []*Diagnostic
	max   int
}

func NewBag(max int) *Bag {
	return &Bag{
		items: make([]*Diagnostic, 0, min(max, 64)),
		max:   max,
	}
}

// Add appends d unless the bag is full. Returns false when dropped.
func (b *Bag) Add(d *Diagnostic) bool {
	if d == nil || len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// HasErrors reports whether any diagnostic is error severity.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the collected diagnostics. Do not modify the slice.
func (b *Bag) Items() []*Diagnostic {
	return b.items
}

// Merge appends other's diagnostics, growing the limit if needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := len(b.items) + len(other.items); total > b.max {
		b.max = total
	}
	b.items = append(b.items, other.items...)
}

// Sort orders by primary span, then severity, then code, for stable output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if c := di.Primary().Compare(dj.Primary()); c != 0 {
			return c < 0
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup drops diagnostics repeating an earlier code, primary span and message.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%s:%s", d.Code.ID(), d.Primary(), d.Message)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	b.items = out
}
