package value

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"nucore/internal/diag"
	"nucore/internal/source"
)

// FromTOML decodes a TOML document into a Record value. Keys keep document
// order; every produced value has an Unknown span since it did not come
// from shell source. Syntax errors are Parse diagnostics spanning the
// offending bytes of text.
func FromTOML(text string) (Value, error) {
	var doc map[string]any
	meta, err := toml.Decode(text, &doc)
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			sp := spanAt(perr.Position.Start, perr.Position.Start+perr.Position.Len)
			d := diag.Parse(sp, "invalid TOML", perr.Message)
			d.Err = err
			return Value{}, d
		}
		return Value{}, diag.IO(err, source.Unknown, "cannot decode TOML")
	}
	order := make(map[string]int, len(meta.Keys()))
	for i, k := range meta.Keys() {
		order[strings.Join(k, "\x00")] = i
	}
	c := tomlConverter{order: order}
	return c.convert(nil, doc), nil
}

type tomlConverter struct {
	order map[string]int
}

func (c tomlConverter) convert(path []string, raw any) Value {
	switch x := raw.(type) {
	case map[string]any:
		return c.table(path, x)
	case []map[string]any:
		items := make([]Value, len(x))
		for i, t := range x {
			items[i] = c.table(path, t)
		}
		return MakeList(List{items: items}, source.Unknown)
	case []any:
		items := make([]Value, len(x))
		for i, it := range x {
			items[i] = c.convert(path, it)
		}
		return MakeList(List{items: items}, source.Unknown)
	case string:
		return MakeString(x, source.Unknown)
	case int64:
		return MakeInt(x, source.Unknown)
	case float64:
		return MakeFloat(x, source.Unknown)
	case bool:
		return MakeBool(x, source.Unknown)
	case time.Time:
		return MakeDate(x, source.Unknown)
	}
	return MakeString(fmt.Sprint(raw), source.Unknown)
}

func (c tomlConverter) table(path []string, t map[string]any) Value {
	cols := make([]string, 0, len(t))
	for k := range t {
		cols = append(cols, k)
	}
	pos := func(k string) int {
		if p, ok := c.order[strings.Join(append(slices.Clone(path), k), "\x00")]; ok {
			return p
		}
		return len(c.order)
	}
	slices.SortFunc(cols, func(a, b string) int {
		if d := pos(a) - pos(b); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	vals := make([]Value, len(cols))
	for i, k := range cols {
		vals[i] = c.convert(append(slices.Clone(path), k), t[k])
	}
	return MakeRecord(Record{cols: cols, vals: vals}, source.Unknown)
}
