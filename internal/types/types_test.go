package types

import (
	"testing"

	"nucore/internal/diag"
)

func TestIsSubtypeOf(t *testing.T) {
	tests := []struct {
		name  string
		sub   Type
		super Type
		want  bool
	}{
		{"any subsumes int", Int(), Any(), true},
		{"any subsumes record", Record(F("a", Int())), Any(), true},
		{"int is not any's supertype", Any(), Int(), false},
		{"nothing only nothing", Nothing(), Nothing(), true},
		{"nothing not int", Nothing(), Int(), false},
		{"int not nothing", Int(), Nothing(), false},
		{"no widening int to float", Int(), Float(), false},
		{"no widening filesize to int", Filesize(), Int(), false},
		{"string not glob", String(), Glob(), false},
		{"list covariant", List(Int()), List(Any()), true},
		{"list element mismatch", List(String()), List(Int()), false},
		{"list of list", List(List(Int())), List(List(Int())), true},
		{"record width extension", Record(F("a", Int()), F("b", String())), Record(F("a", Int())), true},
		{"record missing field", Record(F("a", Int())), Record(F("a", Int()), F("b", String())), false},
		{"record field depth", Record(F("a", List(Int()))), Record(F("a", List(Any()))), true},
		{"record field mismatch", Record(F("a", String())), Record(F("a", Int())), false},
		{"any record shape", ClosedRecord(F("x", Bool())), AnyRecord(), true},
		{"closed super rejects extra", ClosedRecord(F("a", Int()), F("b", Int())), ClosedRecord(F("a", Int())), false},
		{"closed super rejects open sub", Record(F("a", Int())), ClosedRecord(F("a", Int())), false},
		{"closed matches closed", ClosedRecord(F("a", Int())), ClosedRecord(F("a", Any())), true},
		{"oneof super picks alternative", Int(), Number(), true},
		{"oneof super no alternative", String(), Number(), false},
		{"oneof sub needs all", Number(), Int(), false},
		{"oneof sub all fit", OneOf(Int(), Float()), OneOf(Float(), Int(), String()), true},
		{"custom same name", Custom("dataframe"), Custom("dataframe"), true},
		{"custom other name", Custom("dataframe"), Custom("lazyframe"), false},
		{"custom not record", Custom("dataframe"), AnyRecord(), false},
		{"custom under any", Custom("dataframe"), Any(), true},
		{"table to list of any", Table(F("name", String())), List(Any()), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.IsSubtypeOf(tt.super); got != tt.want {
				t.Errorf("%s.IsSubtypeOf(%s) = %v, want %v", tt.sub, tt.super, got, tt.want)
			}
		})
	}
}

func TestOneOfConstructor(t *testing.T) {
	if got := OneOf(Int()); got.Kind != KindInt {
		t.Errorf("single alternative must unwrap, got %s", got)
	}
	if got := OneOf(Int(), Any()); got.Kind != KindAny {
		t.Errorf("union with any must collapse, got %s", got)
	}
	got := OneOf(Int(), OneOf(Float(), Int()), String())
	if len(got.Alts) != 3 {
		t.Errorf("nested unions must flatten and dedup, got %s", got)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Int(), "int"},
		{CellPath(), "cell-path"},
		{List(String()), "list<string>"},
		{List(Type{Kind: KindList}), "list<list<any>>"},
		{AnyRecord(), "record"},
		{Record(F("a", Int())), "record<a: int, ...>"},
		{ClosedRecord(F("a", Int()), F("file name", String())), `record<a: int, "file name": string>`},
		{ClosedRecord(), "record<>"},
		{Number(), "oneof<int, float>"},
		{Custom("dataframe"), "dataframe"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Table(F("a", Int()), F("b", Number())).Validate(); err != nil {
		t.Fatalf("valid type rejected: %v", err)
	}

	dup := Record(F("a", Int()), F("a", String()))
	if err := dup.Validate(); !diag.HasCode(err, diag.TypeMalformed) {
		t.Errorf("duplicate record field: got %v", err)
	}

	if err := (Type{Kind: KindOneOf}).Validate(); !diag.HasCode(err, diag.TypeMalformed) {
		t.Errorf("empty oneof: got %v", err)
	}

	if err := Custom("").Validate(); !diag.HasCode(err, diag.TypeMalformed) {
		t.Errorf("unnamed custom: got %v", err)
	}

	self := List(Int())
	self.Elem = &self
	if err := self.Validate(); !diag.HasCode(err, diag.TypeMalformed) {
		t.Errorf("self-referential list: got %v", err)
	}
}

func TestEqual(t *testing.T) {
	a := ClosedRecord(F("a", Int()), F("b", String()))
	b := ClosedRecord(F("b", String()), F("a", Int()))
	if !Equal(a, b) {
		t.Errorf("field order must not affect equality")
	}
	if Equal(a, Record(F("a", Int()), F("b", String()))) {
		t.Errorf("closed and open records must differ")
	}
	if !Equal(OneOf(Int(), Float()), OneOf(Float(), Int())) {
		t.Errorf("oneof equality must ignore order")
	}
}

func TestCommon(t *testing.T) {
	if got := Common(Int(), Any(), false); got.Kind != KindAny {
		t.Errorf("Common(int, any) = %s", got)
	}
	if got := Common(Int(), String(), true); got.Kind != KindOneOf {
		t.Errorf("Common(int, string, union) = %s", got)
	}
	if got := Common(Int(), String(), false); got.Kind != KindAny {
		t.Errorf("Common(int, string) = %s", got)
	}
}
