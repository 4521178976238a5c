package trace

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLevelFiltering(t *testing.T) {
	cases := []struct {
		level Level
		kind  Kind
		scope Scope
		want  bool
	}{
		{LevelOff, KindFailure, ScopeCommand, false},
		{LevelError, KindFailure, ScopeValue, true},
		{LevelError, KindPoint, ScopeCommand, false},
		{LevelInfo, KindPoint, ScopeRegistry, true},
		{LevelInfo, KindSpanBegin, ScopeProtocol, false},
		{LevelDetail, KindSpanBegin, ScopeProtocol, true},
		{LevelDetail, KindPoint, ScopeValue, false},
		{LevelDebug, KindPoint, ScopeValue, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.kind, tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s, %s) = %v, want %v", tc.level, tc.kind, tc.scope, got, tc.want)
		}
	}
}

func TestRingEvictsOldest(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	Failure(r, ScopeRegistry, "register", errors.New("duplicate"))
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopeRegistry, name, "")
	}
	if got := strings.Join(r.Names(), " "); got != "point:a point:b point:c" {
		t.Errorf("names = %s", got)
	}
	if r.Failures() != 1 {
		t.Errorf("evicted failures must still count, got %d", r.Failures())
	}
	ev := r.Snapshot()
	if !(ev[0].Seq < ev[1].Seq && ev[1].Seq < ev[2].Seq) {
		t.Errorf("snapshot out of order: %+v", ev)
	}
}

func TestSpanEndsOnce(t *testing.T) {
	saved := now
	defer func() { now = saved }()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now = func() time.Time {
		at = at.Add(5 * time.Millisecond)
		return at
	}

	r := NewRingTracer(8, LevelDebug)
	s := Begin(r, ScopeProtocol, "decode", 0).WithExtra("tag", "point")
	if d := s.End("ok"); d != 5*time.Millisecond {
		t.Errorf("duration = %v", d)
	}
	if d := s.End("again"); d != 0 {
		t.Errorf("second End = %v, want 0", d)
	}
	ev := r.Snapshot()
	if len(ev) != 2 || ev[1].Extra["tag"] != "point" || ev[1].Detail != "ok" {
		t.Errorf("events = %+v", ev)
	}

	inert := Begin(NewRingTracer(8, LevelInfo), ScopeValue, "skip", 0)
	if inert.ID() != 0 || inert.End("") != 0 {
		t.Errorf("filtered spans must be inert")
	}
}

func TestBeginCtxParents(t *testing.T) {
	r := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), r)

	outer, ctx := BeginCtx(ctx, ScopeCommand, "inspect")
	inner, _ := BeginCtx(ctx, ScopeCommand, "file")
	inner.End("")
	outer.End("")

	ev := r.Snapshot()
	if len(ev) != 4 {
		t.Fatalf("events = %+v", ev)
	}
	if ev[1].ParentID != outer.ID() || ev[0].ParentID != 0 {
		t.Errorf("file span parent = %d, want %d", ev[1].ParentID, outer.ID())
	}
	if SpanFromContext(context.Background()) != nil {
		t.Errorf("empty context has no span")
	}
}

func TestTee(t *testing.T) {
	if Tee(Nop, nil) != Nop {
		t.Errorf("Tee of disabled tracers must be Nop")
	}
	one := NewRingTracer(4, LevelInfo)
	if Tee(one, Nop) != one {
		t.Errorf("Tee of one live tracer must return it")
	}

	var buf bytes.Buffer
	stream := NewStreamTracer(&buf, LevelError, FormatText)
	ring := NewRingTracer(4, LevelDebug)
	tee := Tee(stream, ring)
	if tee.Level() != LevelDebug {
		t.Errorf("level = %s, want the most verbose", tee.Level())
	}
	Point(tee, ScopeValue, "lift", "")
	Failure(tee, ScopeProtocol, "decode", errors.New("bad payload"))
	if err := tee.Close(); err != nil {
		t.Fatal(err)
	}
	if len(ring.Names()) != 2 {
		t.Errorf("ring = %v", ring.Names())
	}
	if out := buf.String(); strings.Contains(out, "lift") || !strings.Contains(out, "! protocol/decode (bad payload)") {
		t.Errorf("stream output = %q", out)
	}
}

func TestFormatNDJSON(t *testing.T) {
	ev := &Event{Seq: 7, Kind: KindPoint, Scope: ScopeRegistry, Name: "seal", Extra: map[string]string{"n": "2"}}
	got := string(FormatEvent(ev, FormatNDJSON))
	for _, want := range []string{`"seq":7`, `"kind":"point"`, `"scope":"registry"`, `"extra":{"n":"2"}`} {
		if !strings.Contains(got, want) {
			t.Errorf("%s lacks %s", got, want)
		}
	}
	if !strings.HasSuffix(got, "\n") {
		t.Errorf("NDJSON lines end with newline")
	}
}

func TestNewPicksFormatByExtension(t *testing.T) {
	if tr, err := New(Config{Level: LevelOff}); err != nil || tr != Nop {
		t.Errorf("off level must give Nop, got %v, %v", tr, err)
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Errorf("ParseMode accepted disk")
	}
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelInfo, Mode: ModeStream, Output: &buf, OutputPath: "trace.ndjson"})
	if err != nil {
		t.Fatal(err)
	}
	Point(tr, ScopeCommand, "convert", "json")
	if err := tr.Flush(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf(".ndjson output must be JSON, got %q", buf.String())
	}
}
