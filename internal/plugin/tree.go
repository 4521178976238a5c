package plugin

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"nucore/internal/diag"
	"nucore/internal/source"
	"nucore/internal/value"
)

var valueKinds = func() map[string]value.Kind {
	m := make(map[string]value.Kind)
	for k := value.KindNothing; k <= value.KindCustom; k++ {
		m[k.String()] = k
	}
	return m
}()

// EncodeValue converts a whole value tree for the wire. Custom values at
// any depth become envelopes.
func (r *Registry) EncodeValue(v value.Value) (*WireValue, error) {
	w, err := treeEncoder{reg: r}.encode(v)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// DecodeValue rebuilds a value tree. Any nested envelope that fails to
// decode fails the whole tree.
func (r *Registry) DecodeValue(w *WireValue) (value.Value, error) {
	if w == nil {
		return value.Value{}, malformed("missing value")
	}
	return treeDecoder{reg: r}.decode(*w, 0)
}

// DecodeValueOrFallback is DecodeValue with nested envelopes decoded by
// DecodeOrFallback, so only a structurally broken tree fails.
func (r *Registry) DecodeValueOrFallback(w *WireValue) (value.Value, error) {
	if w == nil {
		return value.Value{}, malformed("missing value")
	}
	return treeDecoder{reg: r, lenient: true}.decode(*w, 0)
}

// EnvelopeToWire converts env for serialisation.
func EnvelopeToWire(env Envelope) (*WireEnvelope, error) {
	w := &WireEnvelope{
		Tag:      env.TypeTag,
		Payload:  env.Payload,
		Declared: TypeToWire(env.DeclaredType),
		Span:     spanToWire(env.Span),
		Source:   env.Source,
		Version:  env.Version,
	}
	if env.ID != uuid.Nil {
		w.ID = env.ID.String()
	}
	if env.Fallback != nil {
		// запасное значение всегда без пользовательских значений
		fb, err := treeEncoder{}.encode(*env.Fallback)
		if err != nil {
			return nil, err
		}
		w.Fallback = &fb
	}
	return w, nil
}

// EnvelopeFromWire converts a received envelope. Only the wire structure is
// checked here; Decode performs the semantic checks.
func EnvelopeFromWire(w *WireEnvelope) (Envelope, error) {
	if w == nil {
		return Envelope{}, malformed("missing envelope")
	}
	sp, err := w.Span.span()
	if err != nil {
		return Envelope{}, err
	}
	declared, err := TypeFromWire(w.Declared)
	if err != nil {
		return Envelope{}, diag.Plugin(diag.PluginMalformedEnvelope, sp,
			fmt.Sprintf("envelope for %q declares a malformed type", w.Tag)).WithCause(diag.From(err, sp))
	}
	env := Envelope{
		TypeTag:      w.Tag,
		Payload:      w.Payload,
		DeclaredType: declared,
		Span:         sp,
		Source:       w.Source,
		Version:      w.Version,
	}
	if w.ID != "" {
		id, err := uuid.Parse(w.ID)
		if err != nil {
			d := diag.Plugin(diag.PluginMalformedEnvelope, sp, fmt.Sprintf("invalid value id %q", w.ID))
			d.Err = err
			return Envelope{}, d
		}
		env.ID = id
	}
	if w.Fallback != nil {
		fb, err := treeDecoder{}.decode(*w.Fallback, 0)
		if err != nil {
			return Envelope{}, err
		}
		env.Fallback = &fb
	}
	return env, nil
}

// Encoding --------------------------------------------------------------------

// treeEncoder without a registry rejects custom values.
type treeEncoder struct {
	reg *Registry
}

func (e treeEncoder) encode(v value.Value) (WireValue, error) {
	w := WireValue{Kind: v.Kind().String(), Span: spanToWire(v.Span())}
	switch v.Kind() {
	case value.KindNothing:
	case value.KindBool:
		w.Bool, _ = v.AsBool()
	case value.KindInt:
		w.Int, _ = v.AsInt()
	case value.KindFloat:
		f, _ := v.AsFloat()
		w.Float = strconv.FormatFloat(f, 'g', -1, 64)
	case value.KindString, value.KindGlob:
		w.Str, _ = v.AsString()
	case value.KindBinary:
		w.Bytes, _ = v.AsBinary()
	case value.KindDate:
		t, _ := v.AsDate()
		w.Str = t.Format(time.RFC3339Nano)
	case value.KindDuration:
		d, _ := v.AsDuration()
		w.Int = int64(d)
	case value.KindFilesize:
		w.Int, _ = v.AsFilesize()
	case value.KindRecord:
		rec, _ := v.AsRecord()
		w.Cols = rec.Columns()
		for _, item := range rec.All() {
			iw, err := e.encode(item)
			if err != nil {
				return WireValue{}, err
			}
			w.Items = append(w.Items, iw)
		}
	case value.KindList:
		l, _ := v.AsList()
		for item := range l.All() {
			iw, err := e.encode(item)
			if err != nil {
				return WireValue{}, err
			}
			w.Items = append(w.Items, iw)
		}
	case value.KindRange:
		r, _ := v.AsRange()
		w.Range = &WireRange{Start: r.Start(), Step: r.Step(), End: r.End(), Bound: uint8(r.Bound())}
	case value.KindClosure:
		c, _ := v.AsClosure()
		wc := &WireClosure{Block: uint64(c.Block)}
		for _, capt := range c.Captures {
			cw, err := e.encode(capt.Value)
			if err != nil {
				return WireValue{}, err
			}
			wc.Captures = append(wc.Captures, WireCapture{Var: capt.VarID, Value: cw})
		}
		w.Closure = wc
	case value.KindCellPath:
		p, _ := v.AsCellPath()
		for _, m := range p.Members {
			wm := WireMember{Span: spanToWire(m.Span), Optional: m.Optional, Insensitive: m.Insensitive}
			if m.Kind == value.MemberIndex {
				idx := m.Index
				wm.Index = &idx
			} else {
				wm.Name = m.Name
			}
			w.Path = append(w.Path, wm)
		}
	case value.KindError:
		d, _ := v.AsError()
		w.Error = errorToWire(d)
	case value.KindCustom:
		if e.reg == nil {
			return WireValue{}, diag.Plugin(diag.PluginEncodeFailed, v.Span(),
				"fallback values must not contain custom values")
		}
		env, err := e.reg.Encode(v)
		if err != nil {
			return WireValue{}, err
		}
		we, err := EnvelopeToWire(env)
		if err != nil {
			return WireValue{}, err
		}
		w.Custom = we
	default:
		return WireValue{}, diag.Plugin(diag.PluginEncodeFailed, v.Span(), fmt.Sprintf("cannot encode %s", v.Kind()))
	}
	return w, nil
}

func errorToWire(d *diag.Diagnostic) *WireError {
	if d == nil {
		return nil
	}
	w := &WireError{
		Code:     uint16(d.Code),
		Severity: uint8(d.Severity),
		Message:  d.Message,
		Help:     d.Help,
		Cause:    errorToWire(d.Cause),
	}
	if w.Message == "" && d.Err != nil {
		w.Message = d.Err.Error()
	}
	for _, l := range d.Labels {
		w.Labels = append(w.Labels, WireLabel{Span: spanToWire(l.Span), Text: l.Text})
	}
	return w
}

// Decoding --------------------------------------------------------------------

type treeDecoder struct {
	reg     *Registry
	lenient bool
}

func (d treeDecoder) decode(w WireValue, depth int) (value.Value, error) {
	if depth > maxWireDepth {
		return value.Value{}, malformed("value nests deeper than %d levels", maxWireDepth)
	}
	sp, err := w.Span.span()
	if err != nil {
		return value.Value{}, err
	}
	kind, ok := valueKinds[w.Kind]
	if !ok {
		return value.Value{}, diag.Plugin(diag.PluginMalformedEnvelope, sp, fmt.Sprintf("unknown value kind %q", w.Kind))
	}

	switch kind {
	case value.KindNothing:
		return value.MakeNothing(sp), nil
	case value.KindBool:
		return value.MakeBool(w.Bool, sp), nil
	case value.KindInt:
		return value.MakeInt(w.Int, sp), nil
	case value.KindFloat:
		// ParseFloat understands the NaN and ±Inf spellings FormatFloat emits.
		f, err := strconv.ParseFloat(w.Float, 64)
		if err != nil {
			bad := diag.Plugin(diag.PluginMalformedEnvelope, sp, fmt.Sprintf("invalid float %q", w.Float))
			bad.Err = err
			return value.Value{}, bad
		}
		return value.MakeFloat(f, sp), nil
	case value.KindString:
		return value.MakeString(w.Str, sp), nil
	case value.KindGlob:
		return value.MakeGlob(w.Str, sp), nil
	case value.KindBinary:
		return value.MakeBinary(w.Bytes, sp), nil
	case value.KindDate:
		t, err := time.Parse(time.RFC3339Nano, w.Str)
		if err != nil {
			bad := diag.Plugin(diag.PluginMalformedEnvelope, sp, fmt.Sprintf("invalid date %q", w.Str))
			bad.Err = err
			return value.Value{}, bad
		}
		return value.MakeDate(t, sp), nil
	case value.KindDuration:
		return value.MakeDuration(time.Duration(w.Int), sp), nil
	case value.KindFilesize:
		return value.MakeFilesize(w.Int, sp), nil
	case value.KindRecord:
		vals, err := d.items(w.Items, depth)
		if err != nil {
			return value.Value{}, err
		}
		rec, err := value.NewRecord(w.Cols, vals)
		if err != nil {
			return value.Value{}, diag.Plugin(diag.PluginMalformedEnvelope, sp, "invalid record").
				WithCause(diag.From(err, sp))
		}
		return value.MakeRecord(rec, sp), nil
	case value.KindList:
		items, err := d.items(w.Items, depth)
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeList(value.NewList(items...), sp), nil
	case value.KindRange:
		if w.Range == nil {
			return value.Value{}, diag.Plugin(diag.PluginMalformedEnvelope, sp, "range value without bounds")
		}
		r, err := value.NewRange(w.Range.Start, w.Range.Step, w.Range.End, value.Bound(w.Range.Bound), sp)
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeRange(r, sp), nil
	case value.KindClosure:
		if w.Closure == nil {
			return value.Value{}, diag.Plugin(diag.PluginMalformedEnvelope, sp, "closure value without a block")
		}
		caps := make([]value.Capture, 0, len(w.Closure.Captures))
		for _, c := range w.Closure.Captures {
			cv, err := d.decode(c.Value, depth+1)
			if err != nil {
				return value.Value{}, err
			}
			caps = append(caps, value.Capture{VarID: c.Var, Value: cv})
		}
		return value.MakeClosure(value.NewClosure(value.BlockID(w.Closure.Block), caps...), sp), nil
	case value.KindCellPath:
		members := make([]value.Member, 0, len(w.Path))
		for _, wm := range w.Path {
			msp, err := wm.Span.span()
			if err != nil {
				return value.Value{}, err
			}
			var m value.Member
			if wm.Index != nil {
				m = value.IndexMember(*wm.Index, msp)
			} else {
				m = value.FieldMember(wm.Name, msp)
			}
			m.Optional, m.Insensitive = wm.Optional, wm.Insensitive
			members = append(members, m)
		}
		return value.MakeCellPath(value.NewCellPath(members...), sp), nil
	case value.KindError:
		if w.Error == nil {
			return value.Value{}, diag.Plugin(diag.PluginMalformedEnvelope, sp, "error value without a diagnostic")
		}
		de, err := errorFromWire(w.Error, 0)
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeError(de, sp), nil
	case value.KindCustom:
		if d.reg == nil {
			return value.Value{}, diag.Plugin(diag.PluginMalformedEnvelope, sp,
				"fallback values must not contain custom values")
		}
		env, err := EnvelopeFromWire(w.Custom)
		if err != nil {
			return value.Value{}, err
		}
		if d.lenient {
			return d.reg.DecodeOrFallback(env), nil
		}
		return d.reg.Decode(env)
	}
	return value.Value{}, diag.Plugin(diag.PluginMalformedEnvelope, sp, fmt.Sprintf("cannot decode %s", kind))
}

func (d treeDecoder) items(ws []WireValue, depth int) ([]value.Value, error) {
	out := make([]value.Value, 0, len(ws))
	for _, iw := range ws {
		v, err := d.decode(iw, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func errorFromWire(w *WireError, depth int) (*diag.Diagnostic, error) {
	if depth > maxWireDepth {
		return nil, malformed("error causes nest deeper than %d levels", maxWireDepth)
	}
	d := &diag.Diagnostic{
		Severity: diag.Severity(w.Severity),
		Code:     diag.Code(w.Code),
		Message:  w.Message,
		Help:     w.Help,
	}
	for _, l := range w.Labels {
		sp, err := l.Span.span()
		if err != nil {
			return nil, err
		}
		d.Labels = append(d.Labels, diag.Label{Span: sp, Text: l.Text})
	}
	if len(d.Labels) == 0 {
		d.Labels = []diag.Label{{Span: source.Unknown}}
	}
	if w.Cause != nil {
		cause, err := errorFromWire(w.Cause, depth+1)
		if err != nil {
			return nil, err
		}
		d.Cause = cause
	}
	return d, nil
}
