package pipeline

// DataSource records where pipeline data came from, so later stages can
// pick a better rendering.
type DataSource uint8

const (
	// SourceNone means the origin is not tracked.
	SourceNone DataSource = iota
	// SourceFilePath marks data read from a file; Metadata.Path names it.
	SourceFilePath
)

func (s DataSource) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceFilePath:
		return "filepath"
	default:
		return "unknown"
	}
}

// Metadata travels alongside pipeline data.
type Metadata struct {
	Source DataSource
	Path   string // only for SourceFilePath
}

// FileMetadata is shorthand for data read from path.
func FileMetadata(path string) *Metadata {
	return &Metadata{Source: SourceFilePath, Path: path}
}
