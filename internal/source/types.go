package source

// File is one source buffer with a precomputed newline index, enough for a
// renderer to turn spans into line/column positions.
type File struct {
	Name    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}
