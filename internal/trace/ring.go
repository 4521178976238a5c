package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory. Tests read it back
// with Names; the CLI dumps it when a command exits.
type RingTracer struct {
	mu     sync.Mutex
	buf    []Event
	start  int // oldest event
	n      int
	level  Level
	failed int // failures seen, including evicted ones
}

// NewRingTracer creates a RingTracer holding up to capacity events.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

// Emit stores ev, evicting the oldest event when full.
func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Kind, ev.Scope) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()

	t.mu.Lock()
	defer t.mu.Unlock()
	if ev.Kind == KindFailure {
		t.failed++
	}
	if t.n < len(t.buf) {
		t.buf[(t.start+t.n)%len(t.buf)] = stored
		t.n++
		return
	}
	t.buf[t.start] = stored
	t.start = (t.start + 1) % len(t.buf)
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, t.n)
	for i := range t.n {
		out[i] = t.buf[(t.start+i)%len(t.buf)]
	}
	return out
}

// Names returns "kind:name" for each stored event, oldest first.
func (t *RingTracer) Names() []string {
	events := t.Snapshot()
	names := make([]string, len(events))
	for i := range events {
		names[i] = events[i].Kind.String() + ":" + events[i].Name
	}
	return names
}

// Failures reports how many failure events were emitted, evicted or not.
func (t *RingTracer) Failures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// Dump writes the stored events to w in the given format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
