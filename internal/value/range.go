package value

import (
	"fmt"
	"iter"
	"math"
	"math/bits"

	"nucore/internal/diag"
	"nucore/internal/source"
)

// Bound says how a Range ends.
type Bound uint8

const (
	// BoundInclusive includes End: 1..5 yields 5.
	BoundInclusive Bound = iota
	// BoundExclusive stops before End: 1..<5 yields 4 last.
	BoundExclusive
	// BoundUnbounded runs until int64 overflow.
	BoundUnbounded
)

// Range is a lazy arithmetic progression over int64.
type Range struct {
	start int64
	step  int64
	end   int64
	bound Bound
}

// NewRange validates and builds a range. A zero step would never terminate
// and is rejected as an invalid range at sp.
func NewRange(start, step, end int64, bound Bound, sp source.Span) (Range, error) {
	if step == 0 {
		return Range{}, diag.Runtime(diag.RunInvalidRange, sp, "range step cannot be zero")
	}
	if bound > BoundUnbounded {
		return Range{}, diag.Runtime(diag.RunInvalidRange, sp, fmt.Sprintf("unknown range bound %d", bound))
	}
	if bound == BoundUnbounded {
		end = 0
	}
	return Range{start: start, step: step, end: end, bound: bound}, nil
}

func (r Range) Start() int64 { return r.start }
func (r Range) Step() int64  { return r.step }
func (r Range) End() int64   { return r.end }
func (r Range) Bound() Bound { return r.bound }

// stepMag is |step| without overflowing on math.MinInt64.
func (r Range) stepMag() uint64 {
	if r.step > 0 {
		return uint64(r.step)
	}
	return uint64(-(r.step + 1)) + 1
}

// Len returns the element count; ok is false for unbounded ranges. Counts
// beyond MaxUint64 saturate.
func (r Range) Len() (n uint64, ok bool) {
	if r.bound == BoundUnbounded {
		return 0, false
	}
	var diff uint64
	switch {
	case r.step > 0 && r.end >= r.start:
		diff = asUint64(r.end) - asUint64(r.start)
	case r.step < 0 && r.end <= r.start:
		diff = asUint64(r.start) - asUint64(r.end)
	default:
		return 0, true
	}
	if r.bound == BoundExclusive {
		if diff == 0 {
			return 0, true
		}
		diff--
	}
	n = diff / r.stepMag()
	if n == math.MaxUint64 {
		return n, true
	}
	return n + 1, true
}

// offset computes start + n*step, reporting false on int64 overflow.
func (r Range) offset(n uint64) (int64, bool) {
	hi, lo := bits.Mul64(n, r.stepMag())
	if hi != 0 {
		return 0, false
	}
	if r.step > 0 {
		room := uint64(math.MaxInt64) - asUint64(r.start)
		if lo > room {
			return 0, false
		}
		return asInt64(asUint64(r.start) + lo), true
	}
	room := asUint64(r.start) - asUint64(math.MinInt64)
	if lo > room {
		return 0, false
	}
	return asInt64(asUint64(r.start) - lo), true
}

// Nth returns the n-th element (zero based).
func (r Range) Nth(n uint64) (int64, bool) {
	if size, bounded := r.Len(); bounded && n >= size {
		return 0, false
	}
	return r.offset(n)
}

// Contains reports whether x is produced by the range.
func (r Range) Contains(x int64) bool {
	var diff uint64
	switch {
	case r.step > 0 && x >= r.start:
		diff = asUint64(x) - asUint64(r.start)
	case r.step < 0 && x <= r.start:
		diff = asUint64(r.start) - asUint64(x)
	default:
		return false
	}
	if diff%r.stepMag() != 0 {
		return false
	}
	size, bounded := r.Len()
	return !bounded || diff/r.stepMag() < size
}

// All yields the elements lazily; an unbounded range stops only when the
// next element would overflow.
func (r Range) All() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		size, bounded := r.Len()
		for n := uint64(0); !bounded || n < size; n++ {
			x, ok := r.offset(n)
			if !ok || !yield(x) {
				return
			}
		}
	}
}

func (r Range) String() string {
	var op string
	switch r.bound {
	case BoundExclusive:
		op = "..<"
	default:
		op = ".."
	}
	var sb []byte
	sb = fmt.Appendf(sb, "%d", r.start)
	if r.step != 1 {
		if next, ok := r.offset(1); ok {
			sb = fmt.Appendf(sb, "..%d", next)
		}
	}
	sb = append(sb, op...)
	if r.bound != BoundUnbounded {
		sb = fmt.Appendf(sb, "%d", r.end)
	}
	return string(sb)
}

func asUint64(v int64) uint64 {
	return uint64(v) //nolint:gosec // G115: two's complement reinterpretation for offset math.
}

func asInt64(v uint64) int64 {
	return int64(v) //nolint:gosec // G115: two's complement reinterpretation for offset math.
}
