package plugin

import (
	"fmt"

	"nucore/internal/diag"
	"nucore/internal/source"
	"nucore/internal/types"
)

// Wire* types are the codec-neutral serialised forms. Both codecs encode
// exactly these structs, so a value survives a trip through either one.
// 64-bit integers travel as JSON strings: canonical JSON numbers are
// doubles and would lose precision above 2^53.

// WireType mirrors types.Type.
type WireType struct {
	Kind   string      `json:"kind" msgpack:"kind"`
	Elem   *WireType   `json:"elem,omitempty" msgpack:"elem,omitempty"`
	Fields []WireField `json:"fields,omitempty" msgpack:"fields,omitempty"`
	Closed bool        `json:"closed,omitempty" msgpack:"closed,omitempty"`
	Alts   []WireType  `json:"alts,omitempty" msgpack:"alts,omitempty"`
	Name   string      `json:"name,omitempty" msgpack:"name,omitempty"`
}

// WireField is one record field of a WireType.
type WireField struct {
	Name string   `json:"name" msgpack:"name"`
	Type WireType `json:"type" msgpack:"type"`
}

// WireSpan is [start, end).
type WireSpan [2]uint32

// WireEnvelope mirrors Envelope.
type WireEnvelope struct {
	Tag      string     `json:"tag" msgpack:"tag"`
	Payload  []byte     `json:"payload" msgpack:"payload"`
	Declared WireType   `json:"declared" msgpack:"declared"`
	Span     WireSpan   `json:"span" msgpack:"span"`
	Source   string     `json:"source,omitempty" msgpack:"source,omitempty"`
	Version  string     `json:"version" msgpack:"version"`
	ID       string     `json:"id,omitempty" msgpack:"id,omitempty"`
	Fallback *WireValue `json:"fallback,omitempty" msgpack:"fallback,omitempty"`
}

// WireValue is one node of a serialised value tree. Kind selects which of
// the remaining fields are meaningful.
type WireValue struct {
	Kind string   `json:"kind" msgpack:"kind"`
	Span WireSpan `json:"span" msgpack:"span"`

	Bool  bool   `json:"bool,omitempty" msgpack:"bool,omitempty"`
	Int   int64  `json:"int,omitempty,string" msgpack:"int,omitempty"`     // int, duration (ns), filesize (bytes)
	Float string `json:"float,omitempty" msgpack:"float,omitempty"` // shortest round-trip text; covers NaN and Inf
	Str   string `json:"str,omitempty" msgpack:"str,omitempty"`     // string, glob, date (RFC 3339)
	Bytes []byte `json:"bytes,omitempty" msgpack:"bytes,omitempty"`

	Cols  []string    `json:"cols,omitempty" msgpack:"cols,omitempty"`
	Items []WireValue `json:"items,omitempty" msgpack:"items,omitempty"` // record values or list items

	Range   *WireRange    `json:"range,omitempty" msgpack:"range,omitempty"`
	Closure *WireClosure  `json:"closure,omitempty" msgpack:"closure,omitempty"`
	Path    []WireMember  `json:"path,omitempty" msgpack:"path,omitempty"`
	Error   *WireError    `json:"error,omitempty" msgpack:"error,omitempty"`
	Custom  *WireEnvelope `json:"custom,omitempty" msgpack:"custom,omitempty"`
}

type WireRange struct {
	Start int64 `json:"start,string" msgpack:"start"`
	Step  int64 `json:"step,string" msgpack:"step"`
	End   int64 `json:"end,string" msgpack:"end"`
	Bound uint8 `json:"bound" msgpack:"bound"`
}

type WireClosure struct {
	Block    uint64        `json:"block,string" msgpack:"block"`
	Captures []WireCapture `json:"captures,omitempty" msgpack:"captures,omitempty"`
}

type WireCapture struct {
	Var   uint64    `json:"var,string" msgpack:"var"`
	Value WireValue `json:"value" msgpack:"value"`
}

type WireMember struct {
	Index       *int     `json:"index,omitempty" msgpack:"index,omitempty"` // nil for field members
	Name        string   `json:"name,omitempty" msgpack:"name,omitempty"`
	Span        WireSpan `json:"span" msgpack:"span"`
	Optional    bool     `json:"optional,omitempty" msgpack:"optional,omitempty"`
	Insensitive bool     `json:"insensitive,omitempty" msgpack:"insensitive,omitempty"`
}

type WireError struct {
	Code     uint16      `json:"code" msgpack:"code"`
	Severity uint8       `json:"severity,omitempty" msgpack:"severity,omitempty"`
	Message  string      `json:"message" msgpack:"message"`
	Labels   []WireLabel `json:"labels,omitempty" msgpack:"labels,omitempty"`
	Help     string      `json:"help,omitempty" msgpack:"help,omitempty"`
	Cause    *WireError  `json:"cause,omitempty" msgpack:"cause,omitempty"`
}

type WireLabel struct {
	Span WireSpan `json:"span" msgpack:"span"`
	Text string   `json:"text,omitempty" msgpack:"text,omitempty"`
}

// Spans -----------------------------------------------------------------------

func spanToWire(sp source.Span) WireSpan {
	return WireSpan{sp.Start, sp.End}
}

func (w WireSpan) span() (source.Span, error) {
	if w[0] > w[1] {
		return source.Unknown, diag.Plugin(diag.PluginMalformedEnvelope, source.Unknown,
			fmt.Sprintf("span %d-%d is inverted", w[0], w[1]))
	}
	return source.Span{Start: w[0], End: w[1]}, nil
}

// Types -----------------------------------------------------------------------

var typeKinds = func() map[string]types.Kind {
	m := make(map[string]types.Kind)
	for k := types.KindAny; k <= types.KindCustom; k++ {
		m[k.String()] = k
	}
	return m
}()

// TypeToWire converts t for serialisation.
func TypeToWire(t types.Type) WireType {
	w := WireType{Kind: t.Kind.String(), Closed: t.Closed, Name: t.Name}
	if t.Kind == types.KindList {
		elem := TypeToWire(t.Element())
		w.Elem = &elem
	}
	for _, f := range t.Fields {
		w.Fields = append(w.Fields, WireField{Name: f.Name, Type: TypeToWire(f.Type)})
	}
	for _, a := range t.Alts {
		w.Alts = append(w.Alts, TypeToWire(a))
	}
	return w
}

// TypeFromWire rebuilds a type and validates it.
func TypeFromWire(w WireType) (types.Type, error) {
	t, err := typeFromWire(w, 0)
	if err != nil {
		return types.Type{}, err
	}
	if err := t.Validate(); err != nil {
		return types.Type{}, err
	}
	return t, nil
}

const maxWireDepth = 256

func typeFromWire(w WireType, depth int) (types.Type, error) {
	if depth > maxWireDepth {
		return types.Type{}, malformed("type nests deeper than %d levels", maxWireDepth)
	}
	kind, ok := typeKinds[w.Kind]
	if !ok {
		return types.Type{}, malformed("unknown type kind %q", w.Kind)
	}
	switch kind {
	case types.KindList:
		if w.Elem == nil {
			return types.List(types.Any()), nil
		}
		elem, err := typeFromWire(*w.Elem, depth+1)
		if err != nil {
			return types.Type{}, err
		}
		return types.List(elem), nil
	case types.KindRecord:
		fields := make([]types.Field, 0, len(w.Fields))
		for _, f := range w.Fields {
			ft, err := typeFromWire(f.Type, depth+1)
			if err != nil {
				return types.Type{}, err
			}
			fields = append(fields, types.F(f.Name, ft))
		}
		if w.Closed {
			return types.ClosedRecord(fields...), nil
		}
		return types.Record(fields...), nil
	case types.KindOneOf:
		alts := make([]types.Type, 0, len(w.Alts))
		for _, a := range w.Alts {
			at, err := typeFromWire(a, depth+1)
			if err != nil {
				return types.Type{}, err
			}
			alts = append(alts, at)
		}
		return types.OneOf(alts...), nil
	case types.KindCustom:
		return types.Custom(w.Name), nil
	default:
		return types.Type{Kind: kind}, nil
	}
}

func malformed(format string, args ...any) *diag.Diagnostic {
	return diag.Plugin(diag.PluginMalformedEnvelope, source.Unknown, fmt.Sprintf(format, args...))
}
