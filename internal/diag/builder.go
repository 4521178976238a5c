package diag

import (
	"errors"
	"fmt"

	"nucore/internal/source"
)

// New creates an error-severity diagnostic with one primary label.
func New(code Code, primary source.Span, msg, label string) *Diagnostic {
	return &Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  msg,
		Labels:   []Label{{Span: primary, Text: label}},
	}
}

// Sentinel returns a value usable as errors.Is target for code.
func Sentinel(code Code) error {
	return &Diagnostic{Code: code}
}

// HasCode reports whether code appears anywhere in err's chain.
func HasCode(err error, code Code) bool {
	return errors.Is(err, Sentinel(code))
}

// CodeOf returns the code of the outermost diagnostic in err, or UnknownCode.
func CodeOf(err error) Code {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d.Code
	}
	return UnknownCode
}

// From converts any error into a diagnostic; diagnostics pass through.
func From(err error, span source.Span) *Diagnostic {
	if err == nil {
		return nil
	}
	var d *Diagnostic
	if errors.As(err, &d) {
		return d
	}
	return &Diagnostic{
		Severity: SevError,
		Code:     RunGeneric,
		Message:  err.Error(),
		Labels:   []Label{{Span: span, Text: "originates from here"}},
		Err:      err,
	}
}

// TypeMismatchf reports a value whose type does not fit the expectation.
func TypeMismatchf(span source.Span, expected, found string) *Diagnostic {
	return New(TypeMismatch, span, "type mismatch", fmt.Sprintf("expected %s, found %s", expected, found))
}

// PathNotFoundf reports a missing field or index; pathSpan covers the whole path.
func PathNotFoundf(member, pathSpan source.Span, format string, args ...any) *Diagnostic {
	d := New(PathNotFound, member, "cell path member not found", fmt.Sprintf(format, args...))
	if pathSpan != member && !pathSpan.IsUnknown() {
		d = d.WithLabel(pathSpan, "while following this path")
	}
	return d
}

// PathTypeMismatchf reports a member kind that cannot apply to the value.
func PathTypeMismatchf(member, pathSpan source.Span, format string, args ...any) *Diagnostic {
	d := New(PathTypeMismatch, member, "cell path does not apply to value", fmt.Sprintf(format, args...))
	if pathSpan != member && !pathSpan.IsUnknown() {
		d = d.WithLabel(pathSpan, "while following this path")
	}
	return d
}

// Runtime reports an operation failure such as overflow or division by zero.
func Runtime(code Code, span source.Span, msg string) *Diagnostic {
	return New(code, span, code.Title(), msg)
}

// IO wraps an external I/O failure with the span that triggered it.
func IO(err error, span source.Span, msg string) *Diagnostic {
	d := New(IOFailure, span, msg, "while performing I/O here")
	d.Err = err
	return d
}

// Plugin reports a registry or wire protocol failure.
func Plugin(code Code, span source.Span, msg string) *Diagnostic {
	return New(code, span, code.Title(), msg)
}

// Parse carries a parser failure through the core unchanged.
func Parse(span source.Span, msg, label string) *Diagnostic {
	return New(ParseFailure, span, msg, label)
}

// Labeled is the user-constructible diagnostic for custom commands.
func Labeled(msg string, labels ...Label) *Diagnostic {
	if len(labels) == 0 {
		labels = []Label{{Span: source.Unknown}}
	}
	return &Diagnostic{
		Severity: SevError,
		Code:     LabeledError,
		Message:  msg,
		Labels:   append([]Label(nil), labels...),
	}
}
