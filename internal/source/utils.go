package source

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// NewFile normalises CRLF and a leading BOM and indexes line starts.
// Spans handed to the renderer must refer to the normalised content.
func NewFile(name string, content []byte) *File {
	content, _ = removeBOM(content)
	content, _ = normalizeCRLF(content)
	return &File{
		Name:    name,
		Content: content,
		LineIdx: buildLineIndex(content),
	}
}

// Position resolves a byte offset to 1-based line and column.
func (f *File) Position(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// Resolve returns the start and end positions of a span.
func (f *File) Resolve(span Span) (start, end LineCol) {
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Line returns line n (1-based) without its trailing newline, or "" when
// the file has no such line.
func (f *File) Line(n uint32) string {
	if n == 0 {
		return ""
	}
	lenIdx := mustU32(len(f.LineIdx))
	lenContent := mustU32(len(f.Content))

	var start, end uint32
	switch {
	case n == 1:
		start = 0
	case n-2 < lenIdx:
		start = f.LineIdx[n-2] + 1
	default:
		return ""
	}
	if n-1 < lenIdx {
		end = f.LineIdx[n-1]
	} else {
		end = lenContent
	}
	if start > lenContent {
		return ""
	}
	return string(f.Content[start:min(end, lenContent)])
}

// Slice returns the source text covered by span, clamped to the buffer.
func (f *File) Slice(span Span) string {
	n := mustU32(len(f.Content))
	start, end := min(span.Start, n), min(span.End, n)
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

func mustU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("source buffer too large: %w", err))
	}
	return v
}

// normalizeCRLF заменяет все \r\n на \n, не трогая одиночные \r.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, 16)
	for i, b := range content {
		if b == '\n' {
			out = append(out, mustU32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// бинпоиск: находим число переводов строки строго до off
	line, _ := slices.BinarySearch(lineIdx, off)
	if line == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	startOff := lineIdx[line-1] + 1
	return LineCol{Line: mustU32(line + 1), Col: off - startOff + 1}
}
