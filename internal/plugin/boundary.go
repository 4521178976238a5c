package plugin

import (
	"fmt"
	"iter"
	"sync"

	"nucore/internal/diag"
	"nucore/internal/pipeline"
	"nucore/internal/source"
	"nucore/internal/trace"
	"nucore/internal/value"
)

// Boundary is the host side of one plugin connection. Data only flows after
// the plugin's hello was accepted. Custom values received are attributed to
// the plugin; custom values sent must either be host-made or come from this
// same plugin.
type Boundary struct {
	Registry *Registry
	Identity string // e.g. the plugin's file name

	mu   sync.Mutex
	peer *ProtocolInfo
}

// NewBoundary binds reg to the plugin named identity.
func NewBoundary(reg *Registry, identity string) *Boundary {
	return &Boundary{Registry: reg, Identity: identity}
}

// Hello records the plugin's protocol info after checking that both sides
// can talk. A rejected hello leaves the boundary closed.
func (b *Boundary) Hello(info ProtocolInfo) error {
	ours := b.Registry.Protocol()
	ok, err := ours.CompatibleWith(info)
	if err != nil {
		d := diag.Plugin(diag.PluginIncompatibleVersion, source.Unknown,
			fmt.Sprintf("plugin %s sent an unreadable hello", b.Identity))
		d.Err = err
		trace.Failure(b.Registry.tracer, trace.ScopeProtocol, "hello", d)
		return d
	}
	if !ok {
		d := diag.Plugin(diag.PluginIncompatibleVersion, source.Unknown,
			fmt.Sprintf("plugin is compiled for %s %s, which is not compatible with %s %s",
				info.Protocol, info.Version, ours.Protocol, ours.Version))
		trace.Failure(b.Registry.tracer, trace.ScopeProtocol, "hello", d)
		return d
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.peer = &info
	trace.Point(b.Registry.tracer, trace.ScopeProtocol, "hello", b.Identity+" "+info.Version)
	return nil
}

// Peer returns the accepted hello, if any.
func (b *Boundary) Peer() (ProtocolInfo, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.peer == nil {
		return ProtocolInfo{}, false
	}
	return *b.peer, true
}

func (b *Boundary) ready() error {
	if _, ok := b.Peer(); !ok {
		return diag.Plugin(diag.PluginNoHello, source.Unknown,
			fmt.Sprintf("plugin %s must send hello before any other message", b.Identity))
	}
	return nil
}

// AddSource attributes every custom value inside v to this plugin.
func (b *Boundary) AddSource(v value.Value) value.Value {
	return mapCustom(v, func(c *value.Custom, sp source.Span) value.Value {
		return value.MakeCustom(c.WithSource(b.Identity), sp)
	})
}

// VerifySource fails if v contains a custom value made by another plugin.
func (b *Boundary) VerifySource(v value.Value) error {
	var bad error
	mapCustom(v, func(c *value.Custom, sp source.Span) value.Value {
		if bad == nil && c.Source != "" && c.Source != b.Identity {
			bad = diag.Plugin(diag.PluginSourceMismatch, sp,
				fmt.Sprintf("%q value came from plugin %s and cannot be sent to %s", c.Tag, c.Source, b.Identity))
		}
		return value.MakeCustom(c, sp)
	})
	return bad
}

// Receive decodes one value sent by the plugin.
func (b *Boundary) Receive(frame []byte, c Codec) (value.Value, error) {
	if err := b.ready(); err != nil {
		return value.Value{}, err
	}
	v, err := b.Registry.Unmarshal(frame, c)
	if err != nil {
		return value.Value{}, err
	}
	return b.AddSource(v), nil
}

// ReceiveStream turns a stream of frames from the plugin into pipeline
// data. A frame that fails to decode becomes an Error value in the stream.
func (b *Boundary) ReceiveStream(frames iter.Seq[[]byte], c Codec, meta *pipeline.Metadata) (pipeline.Data, error) {
	if err := b.ready(); err != nil {
		return pipeline.Empty(), err
	}
	return pipeline.FromStream(func(yield func(value.Value) bool) {
		for frame := range frames {
			v, err := b.Registry.Unmarshal(frame, c)
			if err != nil {
				v = value.MakeError(diag.From(err, source.Unknown), source.Unknown)
			} else {
				v = b.AddSource(v)
			}
			if !yield(v) {
				return
			}
		}
	}, meta), nil
}

// PrepareOutput checks data about to be sent to the plugin. A single value
// that fails verification fails the call; stream items that fail are
// replaced by Error values so the rest of the stream still flows.
func (b *Boundary) PrepareOutput(d pipeline.Data) (pipeline.Data, error) {
	if err := b.ready(); err != nil {
		return pipeline.Empty(), err
	}
	switch d.Kind() {
	case pipeline.KindValue:
		v, _ := d.Value()
		if err := b.VerifySource(v); err != nil {
			return pipeline.Empty(), err
		}
		return d, nil
	case pipeline.KindListStream:
		return d.Map(func(v value.Value) value.Value {
			if err := b.VerifySource(v); err != nil {
				return value.MakeError(diag.From(err, v.Span()), v.Span())
			}
			return v
		}), nil
	default:
		return d, nil
	}
}

// Send encodes prepared data as frames, one per item for streams. Encoding
// failures are yielded alongside and do not stop the stream.
func (b *Boundary) Send(d pipeline.Data, c Codec) (iter.Seq2[[]byte, error], error) {
	prepared, err := b.PrepareOutput(d)
	if err != nil {
		return nil, err
	}
	encode := func(v value.Value) ([]byte, error) {
		return b.Registry.Marshal(v, c)
	}
	if prepared.Kind() == pipeline.KindValue {
		v, _ := prepared.Value()
		return func(yield func([]byte, error) bool) { yield(encode(v)) }, nil
	}
	return func(yield func([]byte, error) bool) {
		for v := range prepared.Values() {
			if !yield(encode(v)) {
				return
			}
		}
	}, nil
}

// mapCustom rebuilds v with f applied to every custom value.
func mapCustom(v value.Value, f func(c *value.Custom, sp source.Span) value.Value) value.Value {
	switch v.Kind() {
	case value.KindCustom:
		c, _ := v.AsCustom()
		return f(c, v.Span())
	case value.KindRecord:
		rec, _ := v.AsRecord()
		vals := rec.Values()
		for i, item := range vals {
			vals[i] = mapCustom(item, f)
		}
		return value.MakeRecord(value.MustRecord(rec.Columns(), vals), v.Span())
	case value.KindList:
		l, _ := v.AsList()
		items := l.Items()
		for i, item := range items {
			items[i] = mapCustom(item, f)
		}
		return value.MakeList(value.NewList(items...), v.Span())
	case value.KindClosure:
		// captured values travel with the closure
		cl, _ := v.AsClosure()
		caps := make([]value.Capture, len(cl.Captures))
		for i, c := range cl.Captures {
			caps[i] = value.Capture{VarID: c.VarID, Value: mapCustom(c.Value, f)}
		}
		return value.MakeClosure(value.NewClosure(cl.Block, caps...), v.Span())
	default:
		return v
	}
}
