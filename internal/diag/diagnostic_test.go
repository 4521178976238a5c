package diag

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"nucore/internal/source"
)

func TestCodeKindAndID(t *testing.T) {
	tests := []struct {
		code Code
		kind Kind
		id   string
	}{
		{TypeMismatch, KindType, "TYP1001"},
		{PathNotFound, KindPath, "PTH2001"},
		{RunDivisionByZero, KindRuntime, "RUN3001"},
		{IOFailure, KindIO, "IO4001"},
		{PluginUnknownType, KindPlugin, "PLG5001"},
		{ParseFailure, KindParse, "PRS6001"},
		{LabeledError, KindLabeled, "LBL7001"},
		{UnknownCode, KindUnknown, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.Kind(); got != tt.kind {
			t.Errorf("%d.Kind() = %v, want %v", tt.code, got, tt.kind)
		}
		if got := tt.code.ID(); got != tt.id {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.id)
		}
	}
}

func TestBuilderReturnsCopies(t *testing.T) {
	base := New(TypeMismatch, source.Span{Start: 1, End: 2}, "type mismatch", "here")
	withHelp := base.WithHelp("try `into int`")
	withLabel := base.WithLabel(source.Span{Start: 5, End: 6}, "declared here")

	if base.Help != "" {
		t.Fatalf("WithHelp mutated the receiver")
	}
	if len(base.Labels) != 1 {
		t.Fatalf("WithLabel mutated the receiver: %d labels", len(base.Labels))
	}
	if withHelp.Help == "" || len(withLabel.Labels) != 2 {
		t.Fatalf("builder did not apply changes")
	}

	// appending to one derived diagnostic must not leak into a sibling
	a := withLabel.WithLabel(source.Span{Start: 7, End: 8}, "a")
	b := withLabel.WithLabel(source.Span{Start: 9, End: 10}, "b")
	if a.Labels[2].Text != "a" || b.Labels[2].Text != "b" {
		t.Fatalf("sibling diagnostics share label storage")
	}
}

func TestHasCodeWalksCauseChain(t *testing.T) {
	inner := Plugin(PluginUnknownType, source.Span{Start: 3, End: 9}, "no decoder for \"widget\"")
	outer := New(RunGeneric, source.Span{Start: 0, End: 12}, "pipeline failed", "").WithCause(inner)
	wrapped := fmt.Errorf("stage 2: %w", outer)

	if !HasCode(wrapped, PluginUnknownType) {
		t.Errorf("HasCode must find the nested plugin diagnostic")
	}
	if !HasCode(wrapped, RunGeneric) {
		t.Errorf("HasCode must find the outer diagnostic")
	}
	if HasCode(wrapped, TypeMismatch) {
		t.Errorf("HasCode matched an absent code")
	}
	if got := CodeOf(wrapped); got != RunGeneric {
		t.Errorf("CodeOf = %v, want outermost", got)
	}
}

func TestIOWrapsUnderlyingError(t *testing.T) {
	d := IO(io.ErrUnexpectedEOF, source.Span{Start: 0, End: 4}, "cannot read envelope")
	if !errors.Is(d, io.ErrUnexpectedEOF) {
		t.Fatalf("IO diagnostic must unwrap to the I/O error")
	}
	if d.Kind() != KindIO {
		t.Fatalf("Kind() = %v", d.Kind())
	}
}

func TestFromKeepsDiagnostics(t *testing.T) {
	d := Labeled("custom failure")
	if got := From(fmt.Errorf("wrap: %w", d), source.Unknown); got != d {
		t.Fatalf("From must return the wrapped diagnostic itself")
	}
	plain := From(errors.New("boom"), source.Span{Start: 2, End: 3})
	if plain.Code != RunGeneric || plain.Primary() != (source.Span{Start: 2, End: 3}) {
		t.Fatalf("From(plain) = %+v", plain)
	}
}

func TestBagSortAndDedup(t *testing.T) {
	bag := NewBag(10)
	bag.Add(New(TypeMismatch, source.Span{Start: 9, End: 10}, "late", ""))
	bag.Add(New(PathNotFound, source.Span{Start: 1, End: 2}, "early", ""))
	bag.Add(New(PathNotFound, source.Span{Start: 1, End: 2}, "early", ""))

	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("Dedup left %d items, want 2", bag.Len())
	}
	bag.Sort()
	if bag.Items()[0].Message != "early" {
		t.Fatalf("Sort must order by primary span")
	}
	if !bag.HasErrors() {
		t.Fatalf("HasErrors = false")
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(Labeled("one")) {
		t.Fatalf("first Add rejected")
	}
	if bag.Add(Labeled("two")) {
		t.Fatalf("Add beyond the limit accepted")
	}
}
