package value

import (
	"math"
	"slices"
	"testing"
	"time"

	"nucore/internal/types"
)

func TestCompare(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		a, b Value
		want Ordering
	}{
		{"int less", MakeInt(1, noSpan), MakeInt(2, noSpan), OrderLess},
		{"int equal", MakeInt(2, noSpan), MakeInt(2, noSpan), OrderEqual},
		{"int vs float by magnitude", MakeInt(2, noSpan), MakeFloat(1.5, noSpan), OrderGreater},
		{"int equals whole float", MakeInt(3, noSpan), MakeFloat(3, noSpan), OrderEqual},
		{"float vs int", MakeFloat(2.5, noSpan), MakeInt(3, noSpan), OrderLess},
		{"int vs huge float", MakeInt(math.MaxInt64, noSpan), MakeFloat(1e19, noSpan), OrderLess},
		{"int below fraction", MakeInt(-3, noSpan), MakeFloat(-2.5, noSpan), OrderLess},
		{"precision kept", MakeInt(1<<53+1, noSpan), MakeFloat(1<<53, noSpan), OrderGreater},
		{"nan incomparable", MakeFloat(math.NaN(), noSpan), MakeFloat(1, noSpan), OrderIncomparable},
		{"int vs string", MakeInt(1, noSpan), MakeString("x", noSpan), OrderIncomparable},
		{"filesize vs int", MakeFilesize(1, noSpan), MakeInt(1, noSpan), OrderIncomparable},
		{"filesize", MakeFilesize(10, noSpan), MakeFilesize(2, noSpan), OrderGreater},
		{"duration", MakeDuration(time.Second, noSpan), MakeDuration(time.Minute, noSpan), OrderLess},
		{"duration vs filesize", MakeDuration(1, noSpan), MakeFilesize(1, noSpan), OrderIncomparable},
		{"strings", MakeString("a", noSpan), MakeString("b", noSpan), OrderLess},
		{"string vs glob", MakeString("a", noSpan), MakeGlob("a", noSpan), OrderIncomparable},
		{"bools", MakeBool(false, noSpan), MakeBool(true, noSpan), OrderLess},
		{"dates", MakeDate(day, noSpan), MakeDate(day.Add(time.Hour), noSpan), OrderLess},
		{"binary", MakeBinary([]byte{1, 2}, noSpan), MakeBinary([]byte{1, 3}, noSpan), OrderLess},
		{"nothing", MakeNothing(noSpan), MakeNothing(sp(1, 2)), OrderEqual},
		{"lists lexicographic", ints(1, 2, 3), ints(1, 3), OrderLess},
		{"list prefix", ints(1, 2), ints(1, 2, 0), OrderLess},
		{"list with incomparable item", MakeList(NewList(MakeString("a", noSpan)), noSpan), ints(1), OrderIncomparable},
		{"records by value", rec("a", MakeInt(1, noSpan)), rec("a", MakeInt(2, noSpan)), OrderLess},
		{"records by column", rec("a", MakeInt(9, noSpan)), rec("b", MakeInt(1, noSpan)), OrderLess},
		{"same closure block", MakeClosure(NewClosure(4), noSpan), MakeClosure(NewClosure(4), noSpan), OrderEqual},
		{"different closures", MakeClosure(NewClosure(4), noSpan), MakeClosure(NewClosure(5), noSpan), OrderIncomparable},
		{"errors", MakeError(nil, noSpan), MakeError(nil, noSpan), OrderIncomparable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompareIgnoresSpan(t *testing.T) {
	if !Equal(MakeString("x", sp(0, 3)), MakeString("x", sp(10, 13))) {
		t.Errorf("equality must not depend on spans")
	}
}

func TestCustomComparison(t *testing.T) {
	a := MakeCustom(NewCustom("widget", types.Any(), 1), noSpan)
	b := MakeCustom(NewCustom("widget", types.Any(), 1), noSpan)
	c := MakeCustom(NewCustom("widget", types.Any(), 2), noSpan)

	if got := Compare(a, b); got != OrderIncomparable {
		t.Errorf("distinct instances without comparator: %s", got)
	}
	if got := Compare(a, a.WithSpan(sp(1, 2))); got != OrderEqual {
		t.Errorf("same instance: %s", got)
	}
	if got := CompareWith(a, b, widgetOps{}); got != OrderEqual {
		t.Errorf("registered comparator: %s", got)
	}
	if got := CompareWith(a, c, widgetOps{}); got != OrderLess {
		t.Errorf("registered comparator: %s", got)
	}
	other := MakeCustom(NewCustom("gadget", types.Any(), 1), noSpan)
	if got := CompareWith(a, other, widgetOps{}); got != OrderIncomparable {
		t.Errorf("different tags: %s", got)
	}
}

func sortValues(vs []Value) []Value {
	out := slices.Clone(vs)
	slices.SortStableFunc(out, func(a, b Value) int { return SortCompare(a, b, nil) })
	return out
}

func TestSortCompare(t *testing.T) {
	got := sortValues([]Value{MakeInt(3, noSpan), MakeInt(1, noSpan), MakeInt(2, noSpan)})
	if !Equal(MakeList(NewList(got...), noSpan), ints(1, 2, 3)) {
		t.Errorf("sorted ints = %v", got)
	}

	got = sortValues([]Value{MakeString("b", noSpan), MakeString("a", noSpan)})
	if s, _ := got[0].AsString(); s != "a" {
		t.Errorf("sorted strings = %v", got)
	}

	mixed := []Value{
		MakeNothing(noSpan),
		MakeString("z", noSpan),
		MakeFloat(1.5, noSpan),
		MakeBool(true, noSpan),
		MakeInt(1, noSpan),
		MakeFloat(math.NaN(), noSpan),
		MakeInt(2, noSpan),
	}
	got = sortValues(mixed)
	want := []Kind{KindBool, KindInt, KindFloat, KindInt, KindFloat, KindString, KindNothing}
	for i, v := range got {
		if v.Kind() != want[i] {
			t.Fatalf("mixed sort order: got %v", got)
		}
	}
	if f, _ := got[4].AsFloat(); !math.IsNaN(f) {
		t.Errorf("NaN must sort after every number, got %v", got)
	}
}

func TestSortCompareIsTotal(t *testing.T) {
	vs := sampleValues()
	vs = append(vs, MakeFloat(math.NaN(), noSpan), MakeError(nil, noSpan), ints(), MakeString("", noSpan))
	for _, a := range vs {
		for _, b := range vs {
			ab, ba := SortCompare(a, b, nil), SortCompare(b, a, nil)
			if ab != -ba {
				t.Errorf("antisymmetry broken for %s / %s: %d vs %d", a.Kind(), b.Kind(), ab, ba)
			}
			if ab < -1 || ab > 1 {
				t.Errorf("SortCompare(%s, %s) = %d out of range", a.Kind(), b.Kind(), ab)
			}
		}
	}
}
