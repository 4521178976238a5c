package plugin

import (
	"fmt"
	"slices"
	"sync"

	"nucore/internal/diag"
	"nucore/internal/source"
	"nucore/internal/trace"
	"nucore/internal/value"
)

// Registry maps type tags to capabilities. It is safe for concurrent use;
// once sealed it rejects further registrations and lookups take only a read
// lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Capabilities
	sealed  bool

	tracer trace.Tracer
	info   ProtocolInfo
}

// Option configures a Registry.
type Option func(*Registry)

// WithTracer routes registry and protocol events to t.
func WithTracer(t trace.Tracer) Option {
	return func(r *Registry) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithProtocol overrides the protocol the registry speaks. Mostly for tests
// of version negotiation.
func WithProtocol(info ProtocolInfo) Option {
	return func(r *Registry) { r.info = info }
}

// NewRegistry creates an empty, unsealed registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]Capabilities),
		tracer:  trace.Nop,
		info:    DefaultProtocolInfo(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Protocol returns the protocol info the registry speaks.
func (r *Registry) Protocol() ProtocolInfo {
	return r.info
}

// Register adds tag. It fails on an empty or duplicate tag, on missing
// required capabilities, and after Seal.
func (r *Registry) Register(tag string, caps Capabilities) error {
	if tag == "" {
		return diag.Plugin(diag.PluginMalformedEnvelope, source.Unknown, "type tag must not be empty")
	}
	if miss := caps.missing(); len(miss) > 0 {
		err := diag.Plugin(diag.PluginMissingCapability, source.Unknown,
			fmt.Sprintf("%q: %s", tag, missingText(miss)))
		trace.Failure(r.tracer, trace.ScopeRegistry, "register", err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		err := diag.Plugin(diag.PluginRegistrySealed, source.Unknown,
			fmt.Sprintf("cannot register %q after the registry was sealed", tag))
		trace.Failure(r.tracer, trace.ScopeRegistry, "register", err)
		return err
	}
	if _, dup := r.entries[tag]; dup {
		err := diag.Plugin(diag.PluginDuplicateType, source.Unknown,
			fmt.Sprintf("%q is already registered", tag))
		trace.Failure(r.tracer, trace.ScopeRegistry, "register", err)
		return err
	}
	r.entries[tag] = caps
	trace.Point(r.tracer, trace.ScopeRegistry, "register", tag)
	return nil
}

// MustRegister is Register for static setup code.
func (r *Registry) MustRegister(tag string, caps Capabilities) {
	if err := r.Register(tag, caps); err != nil {
		panic(err)
	}
}

// Seal freezes the registry. Sealing twice is harmless.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sealed {
		r.sealed = true
		trace.Point(r.tracer, trace.ScopeRegistry, "seal", fmt.Sprintf("%d types", len(r.entries)))
	}
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Lookup returns the capabilities for tag.
func (r *Registry) Lookup(tag string) (Capabilities, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	caps, ok := r.entries[tag]
	return caps, ok
}

// Tags lists registered tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		out = append(out, tag)
	}
	slices.Sort(out)
	return out
}

func (r *Registry) unknownType(tag string, sp source.Span) *diag.Diagnostic {
	d := diag.Plugin(diag.PluginUnknownType, sp, fmt.Sprintf("no custom type registered as %q", tag))
	if tags := r.Tags(); len(tags) > 0 {
		d = d.WithHelp(fmt.Sprintf("registered types: %v", tags))
	}
	return d
}

// CustomOps --------------------------------------------------------------------

var _ value.CustomOps = (*Registry)(nil)

// CompareCustom implements value.CustomOps.
func (r *Registry) CompareCustom(a, b *value.Custom) (value.Ordering, bool) {
	if a.Tag != b.Tag {
		return value.OrderIncomparable, false
	}
	caps, ok := r.Lookup(a.Tag)
	if !ok || caps.Compare == nil {
		return value.OrderIncomparable, false
	}
	return caps.Compare(a.Payload, b.Payload), true
}

// DisplayCustom implements value.CustomOps.
func (r *Registry) DisplayCustom(c *value.Custom) (string, bool) {
	caps, ok := r.Lookup(c.Tag)
	if !ok || caps.Display == nil {
		return "", false
	}
	return caps.Display(c.Payload), true
}

// BaseValue implements value.CustomOps. It reduces one level: the result
// may itself contain custom values. See ToBaseValue for the full reduction.
func (r *Registry) BaseValue(v value.Value) (value.Value, error) {
	c, ok := v.AsCustom()
	if !ok {
		return v, nil
	}
	return r.baseOf(c, v.Span())
}

func (r *Registry) baseOf(c *value.Custom, sp source.Span) (value.Value, error) {
	caps, ok := r.Lookup(c.Tag)
	if !ok {
		return value.Value{}, r.unknownType(c.Tag, sp)
	}
	base, err := caps.ToBaseValue(c.Payload, sp)
	if err != nil {
		return value.Value{}, diag.Plugin(diag.PluginEncodeFailed, sp,
			fmt.Sprintf("%q could not produce a base value", c.Tag)).WithCause(diag.From(err, sp))
	}
	return base, nil
}
