package testkit

import (
	"strings"
	"testing"

	"nucore/internal/source"
	"nucore/internal/value"
)

func TestCheckValueInvariants(t *testing.T) {
	sf := source.NewFile("t.nu", []byte("{a: [1, 2]}"))
	inner := value.MakeList(value.NewList(
		value.MakeInt(1, source.MustSpan(5, 6)),
		value.MakeInt(2, source.MustSpan(8, 9)),
	), source.MustSpan(4, 10))
	v := value.MakeRecord(value.MustRecord([]string{"a"}, []value.Value{inner}), source.MustSpan(0, 11))

	if err := CheckValueInvariants(v, sf); err != nil {
		t.Fatalf("valid value rejected: %v", err)
	}

	outside := value.MakeRecord(value.MustRecord([]string{"a"}, []value.Value{
		value.MakeInt(1, source.MustSpan(20, 30)),
	}), source.MustSpan(0, 11))
	err := CheckValueInvariants(outside, sf)
	if err == nil || !strings.Contains(err.Error(), "$.a") {
		t.Errorf("span beyond content: got %v", err)
	}

	if err := CheckValueInvariants(value.MakeError(nil, source.Unknown), nil); err == nil {
		t.Errorf("error value without diagnostic accepted")
	}
}
