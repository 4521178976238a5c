package value

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"nucore/internal/diag"
	"nucore/internal/source"
)

// MemberKind distinguishes field access from index access.
type MemberKind uint8

const (
	MemberField MemberKind = iota
	MemberIndex
)

// Member is one step of a CellPath.
type Member struct {
	Kind        MemberKind
	Name        string // for MemberField
	Index       int    // for MemberIndex
	Span        source.Span
	Optional    bool // a missing target yields Nothing instead of an error
	Insensitive bool // field names match case-insensitively
}

// FieldMember builds a field accessor.
func FieldMember(name string, sp source.Span) Member {
	return Member{Kind: MemberField, Name: name, Span: sp}
}

// IndexMember builds an index accessor.
func IndexMember(i int, sp source.Span) Member {
	return Member{Kind: MemberIndex, Index: i, Span: sp}
}

// Opt returns m marked optional.
func (m Member) Opt() Member {
	m.Optional = true
	return m
}

// Fold returns m marked case-insensitive.
func (m Member) Fold() Member {
	m.Insensitive = true
	return m
}

func (m Member) String() string {
	var sb strings.Builder
	if m.Kind == MemberIndex {
		sb.WriteString(strconv.Itoa(m.Index))
	} else if needsQuote(m.Name) {
		sb.WriteString(strconv.Quote(m.Name))
	} else {
		sb.WriteString(m.Name)
	}
	if m.Optional {
		sb.WriteByte('?')
	}
	if m.Insensitive {
		sb.WriteByte('!')
	}
	return sb.String()
}

func needsQuote(name string) bool {
	if name == "" {
		return true
	}
	if _, err := strconv.Atoi(name); err == nil {
		return true
	}
	return strings.ContainsAny(name, ".?!\" \t")
}

// CellPath addresses a nested value: a.1.name.
type CellPath struct {
	Members []Member
}

// NewCellPath builds a path from members.
func NewCellPath(members ...Member) CellPath {
	return CellPath{Members: append([]Member(nil), members...)}
}

// Span covers every member of the path.
func (p CellPath) Span() source.Span {
	out := source.Unknown
	for _, m := range p.Members {
		out = source.Merge(out, m.Span)
	}
	return out
}

func (p CellPath) String() string {
	parts := make([]string, len(p.Members))
	for i, m := range p.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, ".")
}

// ParseCellPath reads the dotted form used on the command line:
// a.1."file name"?.b!  Digits form an index unless quoted; a trailing ?
// marks a member optional and ! case-insensitive. Spans are byte offsets
// into text and cover the member without its suffixes.
func ParseCellPath(text string) (CellPath, error) {
	var members []Member
	i := 0
	if strings.HasPrefix(text, "$.") {
		i = 2
	}
	for {
		start := i
		var m Member
		if i < len(text) && text[i] == '"' {
			end := i + 1
			for end < len(text) && text[end] != '"' {
				if text[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(text) {
				return CellPath{}, diag.Parse(spanAt(start, len(text)), "invalid cell path", "unterminated quoted member")
			}
			name, err := strconv.Unquote(text[i : end+1])
			if err != nil {
				return CellPath{}, diag.Parse(spanAt(start, end+1), "invalid cell path", "malformed quoted member")
			}
			i = end + 1
			m = FieldMember(name, spanAt(start, i))
		} else {
			for i < len(text) && !strings.ContainsRune(".?!", rune(text[i])) {
				i++
			}
			raw := text[start:i]
			if raw == "" {
				return CellPath{}, diag.Parse(spanAt(start, i), "invalid cell path", "empty member")
			}
			if n, err := strconv.Atoi(raw); err == nil && raw[0] != '-' && raw[0] != '+' {
				m = IndexMember(n, spanAt(start, i))
			} else {
				m = FieldMember(raw, spanAt(start, i))
			}
		}
		for i < len(text) && (text[i] == '?' || text[i] == '!') {
			if text[i] == '?' {
				m.Optional = true
			} else {
				m.Insensitive = true
			}
			i++
		}
		members = append(members, m)
		if i == len(text) {
			return CellPath{Members: members}, nil
		}
		if text[i] != '.' {
			return CellPath{}, diag.Parse(spanAt(i, i+1), "invalid cell path", fmt.Sprintf("unexpected %q", text[i]))
		}
		i++
	}
}

func spanAt(start, end int) source.Span {
	sp, err := source.NewSpan(start, end)
	if err != nil {
		return source.Unknown
	}
	return sp
}

// FollowCellPath navigates v along path without custom-value support.
func (v Value) FollowCellPath(path CellPath) (Value, error) {
	return v.FollowCellPathWith(path, nil)
}

// FollowCellPathWith navigates v along path. Custom values on the way are
// reduced to their base value through ops. Failures are tagged with the
// span of the failing member and carry the whole path as a second label.
func (v Value) FollowCellPathWith(path CellPath, ops CustomOps) (Value, error) {
	w := walker{whole: path.Span(), ops: ops}
	cur := v
	for _, m := range path.Members {
		next, stop, err := w.step(cur, m)
		if err != nil {
			return Value{}, err
		}
		if stop {
			return next, nil
		}
		cur = next
	}
	return cur, nil
}

type walker struct {
	whole source.Span
	ops   CustomOps
}

// step applies one member. stop is set when an optional member misses: the
// whole path then evaluates to Nothing.
func (w walker) step(cur Value, m Member) (next Value, stop bool, err error) {
	switch cur.kind {
	case KindError:
		d, _ := cur.AsError()
		if d == nil {
			d = diag.Runtime(diag.RunGeneric, cur.span, "error value without a diagnostic")
		}
		return Value{}, false, d
	case KindCustom:
		if w.ops == nil {
			c, _ := cur.AsCustom()
			return Value{}, false, diag.PathTypeMismatchf(m.Span, w.whole,
				"cannot follow a cell path into custom value %q without its plugin", c.Tag)
		}
		base, err := w.ops.BaseValue(cur)
		if err != nil {
			return Value{}, false, diag.From(err, m.Span)
		}
		return w.step(base, m)
	case KindNothing:
		if m.Optional {
			return MakeNothing(m.Span), true, nil
		}
	}

	if m.Kind == MemberIndex {
		return w.index(cur, m)
	}
	return w.field(cur, m)
}

func (w walker) field(cur Value, m Member) (Value, bool, error) {
	switch cur.kind {
	case KindRecord:
		r, _ := cur.AsRecord()
		if got, ok := lookupField(r, m); ok {
			return got, false, nil
		}
		if m.Optional {
			return MakeNothing(m.Span), true, nil
		}
		d := diag.PathNotFoundf(m.Span, w.whole, "column %q not found", m.Name)
		if _, ok := lookupField(r, m.Fold()); ok && !m.Insensitive {
			d = d.WithHelp(fmt.Sprintf("a column differing only in case exists; use %s! to match it", m.Name))
		} else if r.Len() > 0 {
			d = d.WithHelp("available columns: " + strings.Join(r.cols, ", "))
		}
		return Value{}, false, d
	case KindList:
		// a column over a table maps over its rows
		l, _ := cur.AsList()
		out := make([]Value, 0, l.Len())
		for _, item := range l.items {
			got, stop, err := w.step(item, m)
			if err != nil {
				return Value{}, false, err
			}
			if stop {
				got = MakeNothing(item.span)
			}
			out = append(out, got)
		}
		return MakeList(List{items: out}, cur.span), false, nil
	}
	return Value{}, false, diag.PathTypeMismatchf(m.Span, w.whole,
		"cannot access column %q on a value of kind %s", m.Name, cur.kind)
}

func lookupField(r Record, m Member) (Value, bool) {
	if !m.Insensitive {
		return r.Get(m.Name)
	}
	want := cases.Fold().String(m.Name)
	for i, c := range r.cols {
		if cases.Fold().String(c) == want {
			return r.vals[i], true
		}
	}
	return Value{}, false
}

func (w walker) index(cur Value, m Member) (Value, bool, error) {
	missing := func(size string) (Value, bool, error) {
		if m.Optional {
			return MakeNothing(m.Span), true, nil
		}
		return Value{}, false, diag.PathNotFoundf(m.Span, w.whole,
			"index %d is out of range (%s)", m.Index, size)
	}
	switch cur.kind {
	case KindList:
		l, _ := cur.AsList()
		if got, ok := l.At(m.Index); ok {
			return got, false, nil
		}
		return missing(fmt.Sprintf("list has %d items", l.Len()))
	case KindRange:
		r, _ := cur.AsRange()
		if m.Index >= 0 {
			if x, ok := r.Nth(uint64(m.Index)); ok {
				return MakeInt(x, cur.span), false, nil
			}
		}
		if n, bounded := r.Len(); bounded {
			return missing(fmt.Sprintf("range has %d elements", n))
		}
		return missing("range overflows before reaching it")
	case KindBinary:
		if m.Index >= 0 && m.Index < len(cur.s) {
			return MakeInt(int64(cur.s[m.Index]), cur.span), false, nil
		}
		return missing(fmt.Sprintf("binary has %d bytes", len(cur.s)))
	}
	return Value{}, false, diag.PathTypeMismatchf(m.Span, w.whole,
		"cannot index into a value of kind %s", cur.kind)
}
