package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"nucore/internal/source"
	"nucore/internal/value"
)

// CheckValueInvariants walks v and everything it contains and checks the
// invariants the value layer never recovers from at runtime:
// 1) every span is well-formed and, when sf is given, within its content
// 2) record field names are unique
// 3) Error values carry a diagnostic and ranges have a non-zero step
func CheckValueInvariants(v value.Value, sf *source.File) error {
	var limit uint32
	if sf != nil {
		n, err := safecast.Conv[uint32](len(sf.Content))
		if err != nil {
			return fmt.Errorf("len content overflow: %w", err)
		}
		limit = n
	}
	return check(v, sf != nil, limit, "$")
}

func check(v value.Value, bounded bool, limit uint32, at string) error {
	sp := v.Span()
	if sp.Start > sp.End {
		return fmt.Errorf("%s: inverted span %v", at, sp)
	}
	if bounded && !sp.IsUnknown() && sp.End > limit {
		return fmt.Errorf("%s: span %v beyond content (%d bytes)", at, sp, limit)
	}

	switch v.Kind() {
	case value.KindRecord:
		r, _ := v.AsRecord()
		seen := make(map[string]struct{}, r.Len())
		for name, child := range r.All() {
			if _, dup := seen[name]; dup {
				return fmt.Errorf("%s: duplicate field %q", at, name)
			}
			seen[name] = struct{}{}
			if err := check(child, bounded, limit, at+"."+name); err != nil {
				return err
			}
		}
	case value.KindList:
		l, _ := v.AsList()
		i := 0
		for child := range l.All() {
			if err := check(child, bounded, limit, fmt.Sprintf("%s.%d", at, i)); err != nil {
				return err
			}
			i++
		}
	case value.KindError:
		if d, _ := v.AsError(); d == nil {
			return fmt.Errorf("%s: error value without diagnostic", at)
		}
	case value.KindRange:
		if r, _ := v.AsRange(); r.Step() == 0 {
			return fmt.Errorf("%s: range with zero step", at)
		}
	}
	return nil
}
