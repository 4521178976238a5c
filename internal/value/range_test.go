package value

import (
	"math"
	"slices"
	"testing"

	"nucore/internal/diag"
)

func collect(r Range, limit int) []int64 {
	var out []int64
	for x := range r.All() {
		out = append(out, x)
		if len(out) == limit {
			break
		}
	}
	return out
}

func TestRange(t *testing.T) {
	tests := []struct {
		name             string
		start, step, end int64
		bound            Bound
		want             []int64
		wantLen          uint64
		wantStr          string
	}{
		{"inclusive", 1, 1, 5, BoundInclusive, []int64{1, 2, 3, 4, 5}, 5, "1..5"},
		{"exclusive", 1, 1, 5, BoundExclusive, []int64{1, 2, 3, 4}, 4, "1..<5"},
		{"stepped", 0, 3, 10, BoundInclusive, []int64{0, 3, 6, 9}, 4, "0..3..10"},
		{"descending", 10, -3, 1, BoundInclusive, []int64{10, 7, 4, 1}, 4, "10..7..1"},
		{"empty ascending", 5, 1, 1, BoundInclusive, nil, 0, "5..1"},
		{"empty exclusive", 3, 1, 3, BoundExclusive, nil, 0, "3..<3"},
		{"single", 3, 1, 3, BoundInclusive, []int64{3}, 1, "3..3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRange(tt.start, tt.step, tt.end, tt.bound, noSpan)
			if err != nil {
				t.Fatal(err)
			}
			if got := collect(r, 100); !slices.Equal(got, tt.want) {
				t.Errorf("All() = %v, want %v", got, tt.want)
			}
			if n, ok := r.Len(); !ok || n != tt.wantLen {
				t.Errorf("Len() = %d, %v, want %d", n, ok, tt.wantLen)
			}
			if got := r.String(); got != tt.wantStr {
				t.Errorf("String() = %q, want %q", got, tt.wantStr)
			}
			for i, x := range tt.want {
				if got, ok := r.Nth(uint64(i)); !ok || got != x {
					t.Errorf("Nth(%d) = %d, %v, want %d", i, got, ok, x)
				}
				if !r.Contains(x) {
					t.Errorf("Contains(%d) = false", x)
				}
			}
			if _, ok := r.Nth(tt.wantLen); ok {
				t.Errorf("Nth(len) must fail")
			}
		})
	}
}

func TestRangeContains(t *testing.T) {
	r, _ := NewRange(10, -3, 1, BoundInclusive, noSpan)
	for _, x := range []int64{8, 11, 0, -2} {
		if r.Contains(x) {
			t.Errorf("Contains(%d) = true", x)
		}
	}
}

func TestRangeUnbounded(t *testing.T) {
	r, err := NewRange(math.MaxInt64-2, 1, 0, BoundUnbounded, noSpan)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := r.Len(); ok {
		t.Errorf("unbounded range must not report a length")
	}
	got := collect(r, 10)
	want := []int64{math.MaxInt64 - 2, math.MaxInt64 - 1, math.MaxInt64}
	if !slices.Equal(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}
	if _, ok := r.Nth(3); ok {
		t.Errorf("Nth past overflow must fail")
	}
	if r.String() != "9223372036854775805.." {
		t.Errorf("String() = %q", r.String())
	}

	down, _ := NewRange(math.MinInt64+1, math.MinInt64, 0, BoundUnbounded, noSpan)
	if got := collect(down, 10); !slices.Equal(got, []int64{math.MinInt64 + 1}) {
		t.Errorf("huge negative step: %v", got)
	}
}

func TestRangeZeroStep(t *testing.T) {
	_, err := NewRange(1, 0, 5, BoundInclusive, sp(0, 4))
	if !diag.HasCode(err, diag.RunInvalidRange) {
		t.Errorf("zero step: got %v", err)
	}
}

func TestRangeFullSpanLen(t *testing.T) {
	r, _ := NewRange(math.MinInt64, 1, math.MaxInt64, BoundInclusive, noSpan)
	if n, ok := r.Len(); !ok || n != math.MaxUint64 {
		t.Errorf("Len() = %d, want saturated MaxUint64", n)
	}
	if x, ok := r.Nth(math.MaxUint64 - 1); !ok || x != math.MaxInt64-1 {
		t.Errorf("Nth near the end = %d, %v", x, ok)
	}
}
