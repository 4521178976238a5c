package diag

import (
	"slices"
	"strings"

	"nucore/internal/source"
)

// Label attaches explanatory text to one span.
type Label struct {
	Span source.Span
	Text string
}

// Diagnostic is an immutable description of one failure.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Labels   []Label // Labels[0] is the primary location
	Help     string
	Cause    *Diagnostic
	Err      error // non-diagnostic failure underneath (I/O, codec)
}

// Kind returns the taxonomy entry for the diagnostic's code.
func (d *Diagnostic) Kind() Kind {
	if d == nil {
		return KindUnknown
	}
	return d.Code.Kind()
}

// Primary returns the span of the first label, or source.Unknown.
func (d *Diagnostic) Primary() source.Span {
	if d == nil || len(d.Labels) == 0 {
		return source.Unknown
	}
	return d.Labels[0].Span
}

// Spans returns every labelled span in order.
func (d *Diagnostic) Spans() []source.Span {
	if d == nil {
		return nil
	}
	out := make([]source.Span, len(d.Labels))
	for i, l := range d.Labels {
		out[i] = l.Span
	}
	return out
}

// Error implements error: "<ID>: <message>[: cause]".
func (d *Diagnostic) Error() string {
	if d == nil {
		return "<nil diagnostic>"
	}
	var sb strings.Builder
	sb.WriteString(d.Code.ID())
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	if d.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(d.Cause.Error())
	} else if d.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(d.Err.Error())
	}
	return sb.String()
}

// Unwrap exposes both the nested diagnostic and the wrapped error.
func (d *Diagnostic) Unwrap() []error {
	if d == nil {
		return nil
	}
	var out []error
	if d.Cause != nil {
		out = append(out, d.Cause)
	}
	if d.Err != nil {
		out = append(out, d.Err)
	}
	return out
}

// Is matches sentinels built with Sentinel: same code, no message.
func (d *Diagnostic) Is(target error) bool {
	t, ok := target.(*Diagnostic)
	if !ok || d == nil || t == nil {
		return false
	}
	return t.Message == "" && len(t.Labels) == 0 && t.Code == d.Code
}

// clone copies the slices so builder methods never share backing arrays.
func (d *Diagnostic) clone() *Diagnostic {
	out := *d
	out.Labels = slices.Clone(d.Labels)
	return &out
}

// WithLabel returns a copy with one more label.
func (d *Diagnostic) WithLabel(sp source.Span, text string) *Diagnostic {
	out := d.clone()
	out.Labels = append(out.Labels, Label{Span: sp, Text: text})
	return out
}

// WithHelp returns a copy carrying help text.
func (d *Diagnostic) WithHelp(help string) *Diagnostic {
	out := d.clone()
	out.Help = help
	return out
}

// WithCause returns a copy whose cause chain starts at cause.
func (d *Diagnostic) WithCause(cause *Diagnostic) *Diagnostic {
	out := d.clone()
	out.Cause = cause
	return out
}

// WithSeverity returns a copy at the given severity.
func (d *Diagnostic) WithSeverity(sev Severity) *Diagnostic {
	out := d.clone()
	out.Severity = sev
	return out
}
