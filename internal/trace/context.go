package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
)

// FromContext extracts the Tracer from context, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches a Tracer to context.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// SpanFromContext returns the innermost span started with BeginCtx, or nil.
func SpanFromContext(ctx context.Context) *Span {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(spanKey{}).(*Span)
	return s
}

// BeginCtx starts a span on the context's tracer, parented to the context's
// current span, and returns a context in which the new span is current.
// Work on other goroutines inherits the parent through the returned context.
func BeginCtx(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	s := Begin(FromContext(ctx), scope, name, SpanFromContext(ctx).ID())
	if s.id == 0 {
		return s, ctx
	}
	return s, context.WithValue(ctx, spanKey{}, s)
}
