package value

import (
	"math"
	"testing"
	"time"

	"nucore/internal/diag"
	"nucore/internal/types"
)

func TestDisplay(t *testing.T) {
	r, _ := NewRange(1, 2, 9, BoundExclusive, noSpan)
	tests := []struct {
		v    Value
		want string
	}{
		{MakeNothing(noSpan), ""},
		{MakeBool(false, noSpan), "false"},
		{MakeInt(-12, noSpan), "-12"},
		{MakeFloat(1, noSpan), "1.0"},
		{MakeFloat(0.25, noSpan), "0.25"},
		{MakeFloat(math.Inf(1), noSpan), "+Inf"},
		{MakeBinary([]byte{0x0a, 0xff}, noSpan), "0x[0aff]"},
		{MakeDate(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), noSpan), "2024-05-01T10:00:00Z"},
		{MakeDuration(90*time.Second, noSpan), "1m30s"},
		{MakeFilesize(1024, noSpan), "1.0 KiB"},
		{MakeFilesize(-1024, noSpan), "-1.0 KiB"},
		{MakeRange(r, noSpan), "1..3..<9"},
		{rec("a", MakeInt(1, noSpan), "b", ints(1, 2)), "{a: 1, b: [1, 2]}"},
		{MakeClosure(NewClosure(12), noSpan), "<closure 12>"},
		{MakeCellPath(NewCellPath(FieldMember("a", noSpan), IndexMember(0, noSpan).Opt()), noSpan), "$.a.0?"},
		{MakeError(diag.Runtime(diag.RunOverflow, noSpan, "too big"), noSpan), "error: Operation overflowed"},
		{MakeCustom(NewCustom("widget", types.Any(), 5), noSpan), "<widget>"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%s: String() = %q, want %q", tt.v.Kind(), got, tt.want)
		}
	}
}

func TestDisplayCustomWithOps(t *testing.T) {
	v := MakeList(NewList(MakeCustom(NewCustom("widget", types.Any(), 5), noSpan)), noSpan)
	if got := v.Display(widgetOps{}); got != "[widget(5)]" {
		t.Errorf("Display = %q", got)
	}
}

func TestAbbreviate(t *testing.T) {
	v := MakeString("hello world", noSpan)
	if got := v.Abbreviate(5, nil); got != "hell…" {
		t.Errorf("Abbreviate(5) = %q", got)
	}
	if got := v.Abbreviate(40, nil); got != "hello world" {
		t.Errorf("Abbreviate(40) = %q", got)
	}
	wide := MakeString("日本語テキスト", noSpan)
	if got := wide.Abbreviate(7, nil); got != "日本語…" {
		t.Errorf("wide Abbreviate(7) = %q", got)
	}
}
