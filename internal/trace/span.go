package trace

import (
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
)

// now is swapped in tests that need stable timestamps.
var now = time.Now

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return globalSeq.Add(1) }

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 { return globalSpans.Add(1) }

// Span tracks one logical operation between Begin and End. A span whose
// begin event was filtered out is inert: End and WithExtra do nothing.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	scope    Scope
	name     string
	started  time.Time
	extra    map[string]string
	ended    atomic.Bool
}

// Begin starts a span and emits its begin event. parent is the parent span
// ID, 0 for a root span.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(KindSpanBegin, scope) {
		return &Span{}
	}
	s := &Span{
		tracer:   t,
		id:       NextSpanID(),
		parentID: parent,
		scope:    scope,
		name:     name,
		started:  now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		Name:     name,
	})
	return s
}

// End emits the end event once and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil || s.ended.Swap(true) {
		return 0
	}
	at := now()
	s.tracer.Emit(&Event{
		Time:     at,
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		Name:     s.name,
		Detail:   detail,
		Extra:    s.extra,
	})
	return at.Sub(s.started)
}

// WithExtra adds a key-value pair to the end event. Not safe for concurrent
// use with End.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for nil or inert spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}
