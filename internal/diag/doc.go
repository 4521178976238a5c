// Package diag defines the diagnostic model shared by every part of the
// shell that can fail.
//
// # Purpose
//
//   - Provide immutable, serialisable records describing a failure together
//     with every source span needed to explain it.
//   - Classify failures into a small taxonomy (Kind) with stable numeric codes
//     so callers can branch on them and renderers can label them.
//
// # Scope
//
// Package diag never prints. Rendering lives in internal/diagfmt and in
// external collaborators (the line editor, the CLI); both consume the data
// defined here read-only.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Code – numeric identifier; its range determines the Kind
//     (type, path, runtime, io, plugin, parse, labeled).
//   - Message – short human-oriented headline.
//   - Labels – ordered (Span, text) pairs; the first is the primary location.
//   - Help – optional suggestion.
//   - Cause – optional nested diagnostic explaining the failure underneath.
//
// Builder methods (WithLabel, WithHelp, WithCause) return modified copies,
// so a Diagnostic is never mutated once it has been handed to anyone.
//
// *Diagnostic implements error. errors.Is(err, diag.Sentinel(code)) and the
// HasCode shortcut match on Code anywhere in the cause chain.
package diag
