package diagfmt

import (
	"encoding/json"
	"io"
	"strings"

	"nucore/internal/diag"
	"nucore/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	Unknown   bool   `json:"unknown,omitempty"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// LabelJSON is one spanned label.
type LabelJSON struct {
	Text     string       `json:"text,omitempty"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string          `json:"severity"`
	Code     string          `json:"code"`
	Kind     string          `json:"kind"`
	Message  string          `json:"message"`
	Location LocationJSON    `json:"location"`
	Labels   []LabelJSON     `json:"labels,omitempty"`
	Help     string          `json:"help,omitempty"`
	Cause    *DiagnosticJSON `json:"cause,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(span source.Span, f *source.File, opts JSONOpts) LocationJSON {
	loc := LocationJSON{
		File:      formatPath(f, opts.PathMode),
		Unknown:   span.IsUnknown(),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if opts.IncludePositions && f != nil && !span.IsUnknown() {
		startPos, endPos := f.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

func makeDiagnostic(d *diag.Diagnostic, f *source.File, opts JSONOpts) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: strings.ToUpper(d.Severity.String()),
		Code:     d.Code.ID(),
		Kind:     d.Kind().String(),
		Message:  d.Message,
		Location: makeLocation(d.Primary(), f, opts),
		Help:     d.Help,
	}
	if len(d.Labels) > 0 {
		out.Labels = make([]LabelJSON, len(d.Labels))
		for i, l := range d.Labels {
			out.Labels[i] = LabelJSON{Text: l.Text, Location: makeLocation(l.Span, f, opts)}
		}
	}
	if opts.IncludeCauses {
		if d.Cause != nil {
			cause := makeDiagnostic(d.Cause, f, opts)
			out.Cause = &cause
		}
		if d.Err != nil {
			out.Error = d.Err.Error()
		}
	}
	return out
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, f *source.File, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	for _, d := range items[:maxItems] {
		diagnostics = append(diagnostics, makeDiagnostic(d, f, opts))
	}
	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, bag *diag.Bag, f *source.File, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, f, opts))
}
