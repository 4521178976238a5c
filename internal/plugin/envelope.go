package plugin

import (
	"fmt"

	"github.com/google/uuid"

	"nucore/internal/diag"
	"nucore/internal/source"
	"nucore/internal/types"
	"nucore/internal/value"
)

// Envelope is the serialised form of one custom value.
type Envelope struct {
	TypeTag      string
	Payload      []byte
	DeclaredType types.Type
	Span         source.Span

	Source   string       // plugin identity that produced the value
	Version  string       // protocol version of the encoder
	ID       uuid.UUID    // instance identity, uuid.Nil when unknown
	Fallback *value.Value // plain rendition for hosts without the type
}

// validate reports structural problems that make an envelope unusable
// regardless of what is registered.
func (e Envelope) validate() error {
	switch {
	case e.TypeTag == "":
		return diag.Plugin(diag.PluginMalformedEnvelope, e.Span, "envelope has no type tag")
	case e.Span.Start > e.Span.End:
		return diag.Plugin(diag.PluginMalformedEnvelope, source.Unknown,
			fmt.Sprintf("envelope span %d-%d is inverted", e.Span.Start, e.Span.End))
	case e.Version == "":
		return diag.Plugin(diag.PluginMalformedEnvelope, e.Span,
			fmt.Sprintf("envelope for %q has no protocol version", e.TypeTag))
	}
	if err := e.DeclaredType.Validate(); err != nil {
		d := diag.Plugin(diag.PluginMalformedEnvelope, e.Span,
			fmt.Sprintf("envelope for %q declares a malformed type", e.TypeTag))
		return d.WithCause(diag.From(err, e.Span))
	}
	return nil
}
