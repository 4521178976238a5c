package value

import (
	"cmp"
	"math"
	"strings"
)

// Ordering is the result of comparing two values.
type Ordering int8

const (
	OrderLess         Ordering = -1
	OrderEqual        Ordering = 0
	OrderGreater      Ordering = 1
	OrderIncomparable Ordering = 2
)

func (o Ordering) String() string {
	switch o {
	case OrderLess:
		return "less"
	case OrderEqual:
		return "equal"
	case OrderGreater:
		return "greater"
	default:
		return "incomparable"
	}
}

func ordOf(c int) Ordering {
	switch {
	case c < 0:
		return OrderLess
	case c > 0:
		return OrderGreater
	}
	return OrderEqual
}

// kindRank fixes the cross-kind order used by SortCompare. Int and Float
// share a rank so numbers interleave by magnitude.
var kindRank = [...]uint8{
	KindBool:     0,
	KindInt:      1,
	KindFloat:    1,
	KindFilesize: 2,
	KindDuration: 3,
	KindDate:     4,
	KindRange:    5,
	KindString:   6,
	KindGlob:     7,
	KindRecord:   8,
	KindList:     9,
	KindClosure:  10,
	KindCellPath: 11,
	KindBinary:   12,
	KindCustom:   13,
	KindError:    14,
	KindNothing:  15,
}

// Compare orders a and b structurally. Pairs with no meaningful order
// (different kinds other than Int/Float, NaN, errors, custom values
// without a comparator) are Incomparable; Compare never fails.
func Compare(a, b Value) Ordering {
	return compare(a, b, nil, false)
}

// CompareWith is Compare with custom values delegated to ops.
func CompareWith(a, b Value, ops CustomOps) Ordering {
	return compare(a, b, ops, false)
}

// Equal reports structural equality.
func Equal(a, b Value) bool {
	return compare(a, b, nil, false) == OrderEqual
}

// EqualWith is Equal with custom values delegated to ops.
func EqualWith(a, b Value, ops CustomOps) bool {
	return compare(a, b, ops, false) == OrderEqual
}

// SortCompare is a total order for sorting and deduplication: Compare where
// it is defined, the kind rank table otherwise, and a deterministic
// tie-break inside a kind. ops may be nil.
func SortCompare(a, b Value, ops CustomOps) int {
	return int(compare(a, b, ops, true))
}

func compare(a, b Value, ops CustomOps, total bool) Ordering {
	if isNumber(a.kind) && isNumber(b.kind) {
		return compareNumbers(a, b, total)
	}
	if a.kind != b.kind {
		if total {
			return ordOf(cmp.Compare(kindRank[a.kind], kindRank[b.kind]))
		}
		return OrderIncomparable
	}

	switch a.kind {
	case KindNothing:
		return OrderEqual
	case KindBool, KindDuration, KindFilesize:
		return ordOf(cmp.Compare(a.i, b.i))
	case KindString, KindGlob, KindBinary:
		return ordOf(strings.Compare(a.s, b.s))
	case KindDate:
		return ordOf(a.t.Compare(b.t))
	case KindRange:
		ra, _ := a.AsRange()
		rb, _ := b.AsRange()
		return compareRanges(ra, rb)
	case KindRecord:
		ra, _ := a.AsRecord()
		rb, _ := b.AsRecord()
		return compareRecords(ra, rb, ops, total)
	case KindList:
		la, _ := a.AsList()
		lb, _ := b.AsList()
		return compareSeq(la.items, lb.items, ops, total)
	case KindClosure:
		ca, _ := a.AsClosure()
		cb, _ := b.AsClosure()
		if ca.Block == cb.Block {
			return OrderEqual
		}
		if total {
			return ordOf(cmp.Compare(ca.Block, cb.Block))
		}
		return OrderIncomparable
	case KindCellPath:
		pa, _ := a.AsCellPath()
		pb, _ := b.AsCellPath()
		return ordOf(strings.Compare(pa.String(), pb.String()))
	case KindError:
		if !total {
			return OrderIncomparable
		}
		ea, _ := a.AsError()
		eb, _ := b.AsError()
		return ordOf(strings.Compare(ea.Error(), eb.Error()))
	case KindCustom:
		ca, _ := a.AsCustom()
		cb, _ := b.AsCustom()
		return compareCustom(ca, cb, ops, total)
	}
	return OrderIncomparable
}

func isNumber(k Kind) bool { return k == KindInt || k == KindFloat }

func compareNumbers(a, b Value, total bool) Ordering {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return ordOf(cmp.Compare(a.i, b.i))
	case a.kind == KindFloat && b.kind == KindFloat:
		an, bn := math.IsNaN(a.f), math.IsNaN(b.f)
		switch {
		case !an && !bn:
			return ordOf(cmp.Compare(a.f, b.f))
		case !total:
			return OrderIncomparable
		case an && bn:
			return OrderEqual
		case an:
			// NaN sorts after every number
			return OrderGreater
		}
		return OrderLess
	case a.kind == KindInt:
		return intFloat(a.i, b.f, total)
	default:
		o := intFloat(b.i, a.f, total)
		if o == OrderLess || o == OrderGreater {
			return -o
		}
		return o
	}
}

// intFloat compares without rounding i through float64.
func intFloat(i int64, f float64, total bool) Ordering {
	switch {
	case math.IsNaN(f):
		if total {
			return OrderLess
		}
		return OrderIncomparable
	case f >= math.MaxInt64:
		return OrderLess
	case f < math.MinInt64:
		return OrderGreater
	}
	whole := math.Trunc(f)
	if o := ordOf(cmp.Compare(i, int64(whole))); o != OrderEqual {
		return o
	}
	return ordOf(cmp.Compare(whole, f))
}

func compareRanges(a, b Range) Ordering {
	if o := ordOf(cmp.Compare(a.start, b.start)); o != OrderEqual {
		return o
	}
	if o := ordOf(cmp.Compare(a.bound, b.bound)); o != OrderEqual {
		return o
	}
	if o := ordOf(cmp.Compare(a.end, b.end)); o != OrderEqual {
		return o
	}
	return ordOf(cmp.Compare(a.step, b.step))
}

// compareRecords walks both records in insertion order, comparing names
// first and values second; a shorter prefix sorts first.
func compareRecords(a, b Record, ops CustomOps, total bool) Ordering {
	for i := range min(len(a.cols), len(b.cols)) {
		if o := ordOf(strings.Compare(a.cols[i], b.cols[i])); o != OrderEqual {
			return o
		}
		if o := compare(a.vals[i], b.vals[i], ops, total); o != OrderEqual {
			return o
		}
	}
	return ordOf(cmp.Compare(len(a.cols), len(b.cols)))
}

func compareSeq(a, b []Value, ops CustomOps, total bool) Ordering {
	for i := range min(len(a), len(b)) {
		if o := compare(a[i], b[i], ops, total); o != OrderEqual {
			return o
		}
	}
	return ordOf(cmp.Compare(len(a), len(b)))
}

func compareCustom(a, b *Custom, ops CustomOps, total bool) Ordering {
	if a.Tag == b.Tag {
		if ops != nil {
			if o, ok := ops.CompareCustom(a, b); ok && (o != OrderIncomparable || !total) {
				return o
			}
		}
		if a.id == b.id {
			return OrderEqual
		}
	}
	if !total {
		return OrderIncomparable
	}
	if o := ordOf(strings.Compare(a.Tag, b.Tag)); o != OrderEqual {
		return o
	}
	return ordOf(strings.Compare(a.id.String(), b.id.String()))
}
