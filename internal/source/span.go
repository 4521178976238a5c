// Package source defines byte-offset spans into the shell's source buffer
// and the minimal line/column machinery needed to show them to a user.
package source

import (
	"fmt"

	"fortio.org/safecast"
)

// Span is a half-open byte range [Start, End) into an immutable source
// buffer. Spans are plain values: copy them freely.
type Span struct {
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

// Unknown marks values and diagnostics with no known origin (synthetic
// values, data decoded from another process). It is the zero Span.
var Unknown = Span{}

// NewSpan builds a span from int offsets, as handed out by the parser.
func NewSpan(start, end int) (Span, error) {
	if start > end {
		return Span{}, fmt.Errorf("invalid span: start %d > end %d", start, end)
	}
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		return Span{}, fmt.Errorf("span start: %w", err)
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		return Span{}, fmt.Errorf("span end: %w", err)
	}
	return Span{Start: s, End: e}, nil
}

// MustSpan is NewSpan for literals known to be valid.
func MustSpan(start, end int) Span {
	sp, err := NewSpan(start, end)
	if err != nil {
		panic(err)
	}
	return sp
}

// IsUnknown reports whether s is the Unknown sentinel.
func (s Span) IsUnknown() bool {
	return s == Unknown
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

func (s Span) String() string {
	if s.IsUnknown() {
		return "<unknown>"
	}
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Compare orders spans by start offset, then by end offset.
func (s Span) Compare(other Span) int {
	switch {
	case s.Start < other.Start:
		return -1
	case s.Start > other.Start:
		return 1
	case s.End < other.End:
		return -1
	case s.End > other.End:
		return 1
	}
	return 0
}

// Less is Compare(other) < 0, for sort.Slice style callers.
func (s Span) Less(other Span) bool {
	return s.Compare(other) < 0
}

// Merge returns the smallest span covering both a and b. Unknown is the
// identity: merging with it returns the other span unchanged.
func Merge(a, b Span) Span {
	if a.IsUnknown() {
		return b
	}
	if b.IsUnknown() {
		return a
	}
	if b.Start < a.Start {
		a.Start = b.Start
	}
	if b.End > a.End {
		a.End = b.End
	}
	return a
}

// MergeAll folds Merge over spans; an empty input yields Unknown.
func MergeAll(spans ...Span) Span {
	out := Unknown
	for _, sp := range spans {
		out = Merge(out, sp)
	}
	return out
}
