package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps short paths and shortens long absolute ones to the basename.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeAsIs
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Context   int8 // строк исходника перед основной меткой
	PathMode  PathMode
	ShowNotes bool // метки без позиции, help и цепочка причин
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeCauses    bool
}
