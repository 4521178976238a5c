package plugin

import (
	"fmt"

	"github.com/google/uuid"

	"nucore/internal/diag"
	"nucore/internal/trace"
	"nucore/internal/types"
	"nucore/internal/value"
)

// Encode serialises a custom value into an envelope. The envelope carries
// the value's base rendition as its fallback when one can be produced.
func (r *Registry) Encode(v value.Value) (Envelope, error) {
	c, ok := v.AsCustom()
	if !ok {
		return Envelope{}, diag.Plugin(diag.PluginNotCustom, v.Span(),
			fmt.Sprintf("expected a custom value, found %s", v.Kind()))
	}
	span := trace.Begin(r.tracer, trace.ScopeProtocol, "encode", 0).WithExtra("tag", c.Tag)

	caps, ok := r.Lookup(c.Tag)
	if !ok {
		err := r.unknownType(c.Tag, v.Span())
		trace.Failure(r.tracer, trace.ScopeProtocol, "encode", err)
		span.End("unknown type")
		return Envelope{}, err
	}
	payload, err := caps.Encode(c.Payload)
	if err != nil {
		d := diag.Plugin(diag.PluginEncodeFailed, v.Span(), fmt.Sprintf("%q payload could not be encoded", c.Tag))
		d.Err = err
		trace.Failure(r.tracer, trace.ScopeProtocol, "encode", d)
		span.End("failed")
		return Envelope{}, d
	}

	env := Envelope{
		TypeTag:      c.Tag,
		Payload:      payload,
		DeclaredType: c.Declared,
		Span:         v.Span(),
		Source:       c.Source,
		Version:      r.info.Version,
		ID:           c.ID(),
	}
	if base, err := r.ToBaseValue(v); err == nil {
		env.Fallback = &base
	} else {
		// без запасного значения хост без плагина покажет ошибку
		trace.Point(r.tracer, trace.ScopeProtocol, "encode.no-fallback", err.Error())
	}
	span.End("")
	return env, nil
}

// Decode rebuilds a custom value from env. Failures are, in order of
// checking: malformed envelope, incompatible version, unknown type, missing
// decode capability, and a payload the decoder rejects.
func (r *Registry) Decode(env Envelope) (value.Value, error) {
	span := trace.Begin(r.tracer, trace.ScopeProtocol, "decode", 0).WithExtra("tag", env.TypeTag)
	v, err := r.decode(env)
	if err != nil {
		trace.Failure(r.tracer, trace.ScopeProtocol, "decode", err)
		span.End("failed")
		return value.Value{}, err
	}
	span.End("")
	return v, nil
}

func (r *Registry) decode(env Envelope) (value.Value, error) {
	if err := env.validate(); err != nil {
		return value.Value{}, err
	}
	if err := r.info.checkVersion(env.Version, env.Span); err != nil {
		return value.Value{}, err
	}
	caps, ok := r.Lookup(env.TypeTag)
	if !ok {
		return value.Value{}, r.unknownType(env.TypeTag, env.Span)
	}
	if caps.Decode == nil {
		return value.Value{}, diag.Plugin(diag.PluginMissingCapability, env.Span,
			fmt.Sprintf("%q cannot be decoded", env.TypeTag))
	}
	payload, err := caps.Decode(env.Payload)
	if err != nil {
		d := diag.Plugin(diag.PluginDecodeFailed, env.Span, fmt.Sprintf("%q payload was rejected", env.TypeTag))
		d.Err = err
		return value.Value{}, d
	}

	declared := env.DeclaredType
	if declared.Kind == types.KindAny {
		declared = caps.Declared
	}
	c := value.NewCustom(env.TypeTag, declared, payload)
	if env.ID != uuid.Nil {
		c = c.WithID(env.ID)
	}
	if env.Source != "" {
		c = c.WithSource(env.Source)
	}
	return value.MakeCustom(c, env.Span), nil
}

// DecodeOrFallback never fails: when Decode does, it returns the envelope's
// fallback, or an Error value carrying the failure when there is none.
func (r *Registry) DecodeOrFallback(env Envelope) value.Value {
	v, err := r.Decode(env)
	if err == nil {
		return v
	}
	if env.Fallback != nil {
		trace.Point(r.tracer, trace.ScopeProtocol, "decode.fallback", env.TypeTag)
		fb := *env.Fallback
		if fb.Span().IsUnknown() {
			fb = fb.WithSpan(env.Span)
		}
		return fb
	}
	return value.MakeError(diag.From(err, env.Span), env.Span)
}

// maxBaseDepth bounds the chain of custom values a base conversion may
// produce along one path.
const maxBaseDepth = 64

// ToBaseValue replaces every custom value inside v with its base value,
// recursively, so the result contains no custom values at all.
func (r *Registry) ToBaseValue(v value.Value) (value.Value, error) {
	return r.toBase(v, 0)
}

func (r *Registry) toBase(v value.Value, depth int) (value.Value, error) {
	if depth > maxBaseDepth {
		return value.Value{}, diag.Plugin(diag.PluginEncodeFailed, v.Span(),
			fmt.Sprintf("base value conversion did not terminate after %d steps", maxBaseDepth))
	}
	switch v.Kind() {
	case value.KindCustom:
		c, _ := v.AsCustom()
		base, err := r.baseOf(c, v.Span())
		if err != nil {
			return value.Value{}, err
		}
		return r.toBase(base, depth+1)
	case value.KindRecord:
		rec, _ := v.AsRecord()
		cols := rec.Columns()
		vals := make([]value.Value, 0, len(cols))
		for _, item := range rec.All() {
			b, err := r.toBase(item, depth)
			if err != nil {
				return value.Value{}, err
			}
			vals = append(vals, b)
		}
		out, err := value.NewRecord(cols, vals)
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeRecord(out, v.Span()), nil
	case value.KindList:
		l, _ := v.AsList()
		items := make([]value.Value, 0, l.Len())
		for item := range l.All() {
			b, err := r.toBase(item, depth)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, b)
		}
		return value.MakeList(value.NewList(items...), v.Span()), nil
	case value.KindClosure:
		cl, _ := v.AsClosure()
		caps := make([]value.Capture, len(cl.Captures))
		for i, c := range cl.Captures {
			b, err := r.toBase(c.Value, depth)
			if err != nil {
				return value.Value{}, err
			}
			caps[i] = value.Capture{VarID: c.VarID, Value: b}
		}
		return value.MakeClosure(value.NewClosure(cl.Block, caps...), v.Span()), nil
	default:
		return v, nil
	}
}
