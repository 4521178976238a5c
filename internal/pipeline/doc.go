// Package pipeline carries data between commands: either a single Value, a
// lazily produced stream of Values, or nothing at all.
//
// A stream is consumed by the first operation that iterates it. Callers that
// need the items twice collect them with IntoValue first.
package pipeline
