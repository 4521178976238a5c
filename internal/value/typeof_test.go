package value

import (
	"testing"

	"nucore/internal/types"
)

func TestType(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{MakeInt(1, noSpan), "int"},
		{MakeNothing(noSpan), "nothing"},
		{rec("a", MakeInt(1, noSpan), "b", MakeString("x", noSpan)), "record<a: int, b: string>"},
		{ints(1, 2), "list<int>"},
		{MakeList(NewList(MakeInt(1, noSpan), MakeString("a", noSpan), MakeInt(2, noSpan)), noSpan), "list<oneof<int, string>>"},
		{ints(), "list<any>"},
		{MakeList(NewList(rec("a", MakeInt(1, noSpan)), rec("a", MakeInt(2, noSpan))), noSpan), "list<record<a: int>>"},
		{MakeCustom(NewCustom("dataframe", types.Any(), nil), noSpan), "dataframe"},
	}
	for _, tt := range tests {
		if got := tt.v.Type().String(); got != tt.want {
			t.Errorf("Type() = %s, want %s", got, tt.want)
		}
	}
}

func TestAccepts(t *testing.T) {
	frame := MakeCustom(NewCustom("dataframe",
		types.OneOf(types.Table(types.F("name", types.String())), types.String()), nil), noSpan)

	tests := []struct {
		name string
		t    types.Type
		v    Value
		want bool
	}{
		{"record width", types.Record(types.F("a", types.Int())), rec("a", MakeInt(1, noSpan), "b", MakeInt(2, noSpan)), true},
		{"record missing field", types.Record(types.F("c", types.Int())), rec("a", MakeInt(1, noSpan)), false},
		{"closed record exact", types.ClosedRecord(types.F("a", types.Int())), rec("a", MakeInt(1, noSpan)), true},
		{"closed record extra", types.ClosedRecord(types.F("a", types.Int())), rec("a", MakeInt(1, noSpan), "b", MakeInt(1, noSpan)), false},
		{"no widening", types.Float(), MakeInt(1, noSpan), false},
		{"heterogeneous list", types.List(types.OneOf(types.Int(), types.String())), MakeList(NewList(MakeInt(1, noSpan), MakeString("a", noSpan)), noSpan), true},
		{"empty list fits any list", types.List(types.Int()), ints(), true},
		{"custom by name", types.Custom("dataframe"), frame, true},
		{"custom by declared table", types.List(types.Any()), frame, true},
		{"custom by declared alternative", types.String(), frame, true},
		{"custom not declared", types.Int(), frame, false},
		{"custom inside record", types.Record(types.F("df", types.String())), rec("df", frame), true},
		{"oneof target", types.Number(), MakeFloat(1, noSpan), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accepts(tt.t, tt.v); got != tt.want {
				t.Errorf("Accepts(%s, %s) = %v, want %v", tt.t, tt.v, got, tt.want)
			}
		})
	}
}

func TestAcceptsAgreesWithType(t *testing.T) {
	targets := []types.Type{
		types.Any(), types.Int(), types.String(), types.AnyRecord(),
		types.List(types.Int()), types.Table(), types.Record(types.F("a", types.Int())),
	}
	for _, v := range append(sampleValues(), ints()) {
		if v.Kind() == KindCustom {
			continue
		}
		empty := false
		if l, ok := v.AsList(); ok && l.Len() == 0 {
			empty = true
		}
		for _, target := range targets {
			if empty && target.Kind == types.KindList {
				// the one exception: an empty list fits any list type
				if !Accepts(target, v) {
					t.Errorf("Accepts(%s, []) = false", target)
				}
				continue
			}
			if Accepts(target, v) != v.Type().IsSubtypeOf(target) {
				t.Errorf("Accepts(%s, %s) disagrees with subsumption", target, v.Type())
			}
		}
	}
}
