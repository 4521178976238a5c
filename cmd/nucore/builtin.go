package main

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	"nucore/internal/plugin"
	"nucore/internal/source"
	"nucore/internal/trace"
	"nucore/internal/types"
	"nucore/internal/value"
)

// Custom types the CLI understands natively. Documents may carry them on the
// wire; with lifting enabled, plain strings of the right shape become them.
const (
	tagSemver = "semver"
	tagUUID   = "uuid"
)

// newRegistry returns a sealed registry holding the built-in custom types.
func newRegistry(t trace.Tracer) *plugin.Registry {
	r := plugin.NewRegistry(plugin.WithTracer(t))
	r.MustRegister(tagSemver, semverCaps())
	r.MustRegister(tagUUID, uuidCaps())
	r.Seal()
	return r
}

func semverCaps() plugin.Capabilities {
	return plugin.Capabilities{
		Declared: types.String(),
		Encode: func(p any) ([]byte, error) {
			v, ok := p.(*semver.Version)
			if !ok {
				return nil, fmt.Errorf("semver payload has type %T", p)
			}
			return []byte(v.String()), nil
		},
		Decode: func(b []byte) (any, error) {
			return semver.StrictNewVersion(string(b))
		},
		ToBaseValue: func(p any, sp source.Span) (value.Value, error) {
			v, ok := p.(*semver.Version)
			if !ok {
				return value.Value{}, fmt.Errorf("semver payload has type %T", p)
			}
			return value.MakeString(v.String(), sp), nil
		},
		Compare: func(a, b any) value.Ordering {
			return value.Ordering(a.(*semver.Version).Compare(b.(*semver.Version)))
		},
		Display: func(p any) string {
			return "v" + p.(*semver.Version).String()
		},
	}
}

func uuidCaps() plugin.Capabilities {
	return plugin.Capabilities{
		Declared: types.String(),
		Encode: func(p any) ([]byte, error) {
			id, ok := p.(uuid.UUID)
			if !ok {
				return nil, fmt.Errorf("uuid payload has type %T", p)
			}
			return id.MarshalBinary()
		},
		Decode: func(b []byte) (any, error) {
			return uuid.FromBytes(b)
		},
		ToBaseValue: func(p any, sp source.Span) (value.Value, error) {
			id, ok := p.(uuid.UUID)
			if !ok {
				return value.Value{}, fmt.Errorf("uuid payload has type %T", p)
			}
			return value.MakeString(id.String(), sp), nil
		},
		Display: func(p any) string {
			return p.(uuid.UUID).String()
		},
	}
}

// lift replaces strings that parse as a strict semantic version or a
// canonical UUID with the matching custom value, recursively.
func lift(v value.Value) value.Value {
	switch v.Kind() {
	case value.KindString:
		s, _ := v.AsString()
		if ver, err := semver.StrictNewVersion(s); err == nil {
			return value.MakeCustom(value.NewCustom(tagSemver, types.String(), ver), v.Span())
		}
		if len(s) == 36 {
			if id, err := uuid.Parse(s); err == nil {
				return value.MakeCustom(value.NewCustom(tagUUID, types.String(), id), v.Span())
			}
		}
		return v
	case value.KindRecord:
		rec, _ := v.AsRecord()
		vals := rec.Values()
		for i, item := range vals {
			vals[i] = lift(item)
		}
		return value.MakeRecord(value.MustRecord(rec.Columns(), vals), v.Span())
	case value.KindList:
		l, _ := v.AsList()
		items := l.Items()
		for i, item := range items {
			items[i] = lift(item)
		}
		return value.MakeList(value.NewList(items...), v.Span())
	default:
		return v
	}
}
