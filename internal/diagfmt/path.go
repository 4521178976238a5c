package diagfmt

import (
	"path/filepath"

	"nucore/internal/source"
)

// autoPathLimit is the length above which PathModeAuto shows only the basename.
const autoPathLimit = 40

func formatPath(f *source.File, mode PathMode) string {
	if f == nil {
		return "<input>"
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(f.Name); err == nil {
			return abs
		}
		return f.Name
	case PathModeBasename:
		return filepath.Base(f.Name)
	case PathModeAuto:
		if filepath.IsAbs(f.Name) && len(f.Name) > autoPathLimit {
			return filepath.Base(f.Name)
		}
	}
	return f.Name
}
