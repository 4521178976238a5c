package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes events to an io.Writer as they arrive. Output is
// buffered; failures flush immediately so they survive a crash.
type StreamTracer struct {
	mu     sync.Mutex
	out    io.Writer
	bw     *bufio.Writer
	level  Level
	format Format
}

// NewStreamTracer creates a StreamTracer writing to w.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{out: w, bw: bufio.NewWriter(w), level: level, format: format}
}

// Emit formats and writes ev. Write errors are dropped: tracing must never
// break the caller.
func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Kind, ev.Scope) {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = t.bw.Write(data)
	if ev.Kind == KindFailure {
		_ = t.bw.Flush()
	}
}

// Flush writes buffered events to the underlying writer.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bw.Flush()
}

// Close flushes and closes the writer unless it is stderr.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if _, ok := t.out.(nopCloser); ok {
		return nil
	}
	if c, ok := t.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
