package value

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// String renders v without custom-value support.
func (v Value) String() string {
	return v.Display(nil)
}

// Display renders v as a single line. Custom values use ops when it knows
// their tag and fall back to <tag> otherwise.
func (v Value) Display(ops CustomOps) string {
	var sb strings.Builder
	v.write(&sb, ops)
	return sb.String()
}

// Abbreviate renders v and truncates the result to width terminal cells.
func (v Value) Abbreviate(width int, ops CustomOps) string {
	return runewidth.Truncate(v.Display(ops), width, "…")
}

func (v Value) write(sb *strings.Builder, ops CustomOps) {
	switch v.kind {
	case KindNothing:
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.i != 0))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		sb.WriteString(formatFloat(v.f))
	case KindString, KindGlob:
		sb.WriteString(v.s)
	case KindBinary:
		sb.WriteString("0x[")
		sb.WriteString(hex.EncodeToString([]byte(v.s)))
		sb.WriteByte(']')
	case KindDate:
		sb.WriteString(v.t.Format(time.RFC3339Nano))
	case KindDuration:
		sb.WriteString(time.Duration(v.i).String())
	case KindFilesize:
		sb.WriteString(formatFilesize(v.i))
	case KindRange:
		r, _ := v.AsRange()
		sb.WriteString(r.String())
	case KindRecord:
		r, _ := v.AsRecord()
		sb.WriteByte('{')
		for i, c := range r.cols {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(c)
			sb.WriteString(": ")
			r.vals[i].write(sb, ops)
		}
		sb.WriteByte('}')
	case KindList:
		l, _ := v.AsList()
		sb.WriteByte('[')
		for i, it := range l.items {
			if i > 0 {
				sb.WriteString(", ")
			}
			it.write(sb, ops)
		}
		sb.WriteByte(']')
	case KindClosure:
		c, _ := v.AsClosure()
		sb.WriteString("<closure ")
		sb.WriteString(strconv.FormatUint(uint64(c.Block), 10))
		sb.WriteByte('>')
	case KindCellPath:
		p, _ := v.AsCellPath()
		sb.WriteString("$.")
		sb.WriteString(p.String())
	case KindError:
		d, _ := v.AsError()
		sb.WriteString("error: ")
		if d != nil {
			sb.WriteString(d.Message)
		}
	case KindCustom:
		c, _ := v.AsCustom()
		if ops != nil {
			if text, ok := ops.DisplayCustom(c); ok {
				sb.WriteString(text)
				return
			}
		}
		sb.WriteByte('<')
		sb.WriteString(c.Tag)
		sb.WriteByte('>')
	}
}

// formatFloat keeps a fractional part on whole numbers so 1.0 does not read
// as an int.
func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatFilesize(n int64) string {
	if n >= 0 {
		return humanize.IBytes(uint64(n))
	}
	return "-" + humanize.IBytes(uint64(-(n+1))+1)
}
