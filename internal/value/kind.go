package value

import "fmt"

// Kind identifies the runtime shape of a Value.
type Kind uint8

const (
	// KindNothing represents absence. It is the zero Kind, so the zero Value is Nothing.
	KindNothing Kind = iota
	// KindBool represents a boolean value.
	KindBool
	// KindInt represents a signed 64-bit integer.
	KindInt
	// KindFloat represents a double precision float.
	KindFloat
	// KindString represents UTF-8 text.
	KindString
	// KindGlob represents a glob pattern kept apart from plain strings.
	KindGlob
	// KindBinary represents a raw byte sequence.
	KindBinary
	// KindDate represents a timezone-aware instant.
	KindDate
	// KindDuration represents a signed nanosecond count.
	KindDuration
	// KindFilesize represents a signed byte count.
	KindFilesize
	// KindRecord represents an ordered mapping with unique field names.
	KindRecord
	// KindList represents an ordered, possibly heterogeneous sequence.
	KindList
	// KindRange represents a lazy integer range.
	KindRange
	// KindClosure represents a block reference with captured bindings.
	KindClosure
	// KindCellPath represents a path of field and index accessors.
	KindCellPath
	// KindError represents a diagnostic flowing as data.
	KindError
	// KindCustom represents an opaque plugin-defined payload.
	KindCustom
)

// String returns the name the shell uses for the kind.
func (k Kind) String() string {
	switch k {
	case KindNothing:
		return "nothing"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindGlob:
		return "glob"
	case KindBinary:
		return "binary"
	case KindDate:
		return "date"
	case KindDuration:
		return "duration"
	case KindFilesize:
		return "filesize"
	case KindRecord:
		return "record"
	case KindList:
		return "list"
	case KindRange:
		return "range"
	case KindClosure:
		return "closure"
	case KindCellPath:
		return "cell-path"
	case KindError:
		return "error"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}
