package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"nucore/internal/diag"
	"nucore/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку исходника с подчёркиванием: ^ для основной метки, ~ для остальных.
// Вывод детерминирован: одинаковый вход даёт одинаковые байты.
func Pretty(w io.Writer, bag *diag.Bag, f *source.File, opts PrettyOpts) {
	p := newPrinter(w, f, opts)
	for _, d := range bag.Items() {
		p.diagnostic(d, "")
	}
}

// PrettyOne renders a single diagnostic, for callers without a Bag.
func PrettyOne(w io.Writer, d *diag.Diagnostic, f *source.File, opts PrettyOpts) {
	newPrinter(w, f, opts).diagnostic(d, "")
}

type printer struct {
	w     io.Writer
	f     *source.File
	opts  PrettyOpts
	path  string
	sev   map[diag.Severity]*color.Color
	code  *color.Color
	bold  *color.Color
	gut   *color.Color
	prim  *color.Color
	sec   *color.Color
	help  *color.Color
	limit uint32
}

func newPrinter(w io.Writer, f *source.File, opts PrettyOpts) *printer {
	p := &printer{
		w:    w,
		f:    f,
		opts: opts,
		path: formatPath(f, opts.PathMode),
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		code: color.New(color.FgMagenta),
		bold: color.New(color.Bold),
		gut:  color.New(color.FgBlue, color.Bold),
		prim: color.New(color.FgRed, color.Bold),
		sec:  color.New(color.FgBlue),
		help: color.New(color.FgGreen),
	}
	all := []*color.Color{p.code, p.bold, p.gut, p.prim, p.sec, p.help}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		// цвет задаётся опцией, а не глобальным color.NoColor
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	if f != nil {
		p.limit = uint32(len(f.Content)) //nolint:gosec // source.NewFile indexes with uint32 already
	}
	return p
}

// located reports whether sp can be shown against the source file.
func (p *printer) located(sp source.Span) bool {
	return p.f != nil && !sp.IsUnknown() && sp.End <= p.limit
}

func (p *printer) location(sp source.Span) string {
	if !p.located(sp) {
		return p.path
	}
	pos := p.f.Position(sp.Start)
	return fmt.Sprintf("%s:%d:%d", p.path, pos.Line, pos.Col)
}

func (p *printer) diagnostic(d *diag.Diagnostic, prefix string) {
	if d == nil {
		return
	}
	sevColor, ok := p.sev[d.Severity]
	if !ok {
		sevColor = p.sev[diag.SevError]
	}
	fmt.Fprintf(p.w, "%s%s: %s %s: %s\n",
		prefix,
		p.location(d.Primary()),
		sevColor.Sprint(strings.ToUpper(d.Severity.String())),
		p.code.Sprint(d.Code.ID()),
		p.bold.Sprint(d.Message),
	)

	var loose []diag.Label
	gutter := p.gutterWidth(d.Labels)
	for i, l := range d.Labels {
		if !p.located(l.Span) {
			if l.Text != "" {
				loose = append(loose, l)
			}
			continue
		}
		p.snippet(l, i == 0, gutter)
	}

	if !p.opts.ShowNotes {
		return
	}
	pad := strings.Repeat(" ", gutter+1)
	for _, l := range loose {
		fmt.Fprintf(p.w, "%s= note: %s\n", pad, l.Text)
	}
	if d.Help != "" {
		fmt.Fprintf(p.w, "%s= %s %s\n", pad, p.help.Sprint("help:"), d.Help)
	}
	switch {
	case d.Cause != nil:
		p.diagnostic(d.Cause, "caused by: ")
	case d.Err != nil:
		fmt.Fprintf(p.w, "caused by: %s\n", d.Err)
	}
}

func (p *printer) gutterWidth(labels []diag.Label) int {
	width := 1
	for _, l := range labels {
		if p.located(l.Span) {
			width = max(width, len(strconv.FormatUint(uint64(p.f.Position(l.Span.Start).Line), 10)))
		}
	}
	return width
}

// snippet prints the label's first line with an underline below it.
// Spans running past the end of the line are underlined to its end.
func (p *printer) snippet(l diag.Label, primary bool, gutter int) {
	start, end := p.f.Resolve(l.Span)
	line := p.f.Line(start.Line)

	if primary && p.opts.Context > 0 {
		first := max(int64(start.Line)-int64(p.opts.Context), 1)
		for n := first; n < int64(start.Line); n++ {
			p.sourceLine(uint32(n), p.f.Line(uint32(n)), gutter) //nolint:gosec // n is within [1, start.Line)
		}
	}
	p.sourceLine(start.Line, line, gutter)

	from := min(int(start.Col-1), len(line))
	to := len(line)
	if end.Line == start.Line {
		to = min(int(end.Col-1), len(line))
	}
	width := max(runewidth.StringWidth(line[from:to]), 1)

	mark, c := "~", p.sec
	if primary {
		mark, c = "^", p.prim
	}
	underline := strings.Repeat(" ", runewidth.StringWidth(line[:from])) + c.Sprint(strings.Repeat(mark, width))
	if l.Text != "" {
		underline += " " + c.Sprint(l.Text)
	}
	fmt.Fprintf(p.w, "%s %s %s\n", strings.Repeat(" ", gutter+1), p.gut.Sprint("|"), underline)
}

func (p *printer) sourceLine(n uint32, text string, gutter int) {
	fmt.Fprintf(p.w, " %s %s %s\n", p.gut.Sprintf("%*d", gutter, n), p.gut.Sprint("|"), text)
}
