// Package trace provides a tracing subsystem for the nucore value core.
//
// The core itself never logs: operations on values and types are pure. The
// places where something worth recording happens are the plugin registry
// (registration, sealing) and the custom-value protocol (encode, decode,
// fallback to base values). Those paths accept a Tracer and emit events
// through it.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	nucore inspect --trace=- --trace-level=detail payload.mp
//
// # Architecture
//
//   - Nop: zero-overhead tracer used when tracing is disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, handy for tests and crash dumps
//   - Tee: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only failures
//   - LevelInfo: command and registry boundaries
//   - LevelDetail: protocol operations (encode/decode per envelope)
//   - LevelDebug: everything including per-value events
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeProtocol, "decode", 0)
//	defer span.End("")
//
// BeginCtx does the same with the tracer and parent span taken from ctx:
//
//	span, ctx := trace.BeginCtx(ctx, trace.ScopeCommand, "inspect")
package trace
