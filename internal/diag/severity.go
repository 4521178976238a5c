package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevError is the default: values and operations fail with errors.
	SevError Severity = iota
	// SevWarning is for diagnostics that do not stop a pipeline.
	SevWarning
	SevInfo
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}
