package pipeline

import (
	"fmt"

	"nucore/internal/diag"
	"nucore/internal/source"
	"nucore/internal/value"
)

// ErrorRecord exposes a failure to user code as {msg, debug, raw}: the
// rendered message, a debug dump, and the error itself as an Error value.
// A nil error gives Nothing.
func ErrorRecord(err error, span source.Span) value.Value {
	d := diag.From(err, span)
	if d == nil {
		return value.MakeNothing(span)
	}
	return value.MakeRecord(value.MustRecord(
		[]string{"msg", "debug", "raw"},
		[]value.Value{
			value.MakeString(d.Error(), span),
			value.MakeString(fmt.Sprintf("%+v", *d), span),
			value.MakeError(d, span),
		},
	), span)
}
