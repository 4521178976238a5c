package diag

import (
	"fmt"
)

// Kind is the coarse taxonomy a renderer or caller branches on.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindType         // coercion / subsumption failures
	KindPath         // cell-path navigation failures
	KindRuntime      // overflow, division by zero, out-of-range index...
	KindIO           // wrapped external I/O failures
	KindPlugin       // registry and wire protocol failures
	KindParse        // carried only, produced by the parser
	KindLabeled      // user-constructed diagnostics from custom commands
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindPath:
		return "path"
	case KindRuntime:
		return "runtime"
	case KindIO:
		return "io"
	case KindPlugin:
		return "plugin"
	case KindParse:
		return "parse"
	case KindLabeled:
		return "labeled"
	}
	return "unknown"
}

type Code uint16

const (
	UnknownCode Code = 0

	// Типы
	TypeInfo          Code = 1000
	TypeMismatch      Code = 1001 // value does not fit the expected type
	TypeMalformed     Code = 1002 // type descriptor failed construction checks
	TypeLossyCoercion Code = 1003 // coercion would lose information

	// Cell paths
	PathInfo         Code = 2000
	PathNotFound     Code = 2001 // no such field / index
	PathTypeMismatch Code = 2002 // member kind does not apply to the value
	PathIncompatible Code = 2003 // pipeline data has no addressable value

	// Runtime
	RunGeneric          Code = 3000
	RunDivisionByZero   Code = 3001
	RunOverflow         Code = 3002
	RunIndexOutOfBounds Code = 3003
	RunInvalidRange     Code = 3004
	RunDuplicateField   Code = 3005 // record built with a repeated column
	RunLengthMismatch   Code = 3006 // record built from unequal columns/values

	// IO
	IOFailure Code = 4001

	// Plugin protocol
	PluginInfo                Code = 5000
	PluginUnknownType         Code = 5001 // no registry entry for the type tag
	PluginMalformedEnvelope   Code = 5002
	PluginMissingCapability   Code = 5003
	PluginIncompatibleVersion Code = 5004
	PluginSourceMismatch      Code = 5005 // custom value sent to a plugin that did not make it
	PluginEncodeFailed        Code = 5006
	PluginDecodeFailed        Code = 5007
	PluginNotCustom           Code = 5008
	PluginDuplicateType       Code = 5009
	PluginRegistrySealed      Code = 5010
	PluginNoHello             Code = 5011 // plugin data exchanged before the hello handshake

	// Parse
	ParseFailure Code = 6001

	// Labeled
	LabeledError Code = 7001
)

var codeDescription = map[Code]string{
	UnknownCode:               "Unknown error",
	TypeInfo:                  "Type information",
	TypeMismatch:              "Type mismatch",
	TypeMalformed:             "Malformed type",
	TypeLossyCoercion:         "Lossy coercion rejected",
	PathInfo:                  "Cell path information",
	PathNotFound:              "Cell path member not found",
	PathTypeMismatch:          "Cell path does not apply to value",
	PathIncompatible:          "Incompatible path access",
	RunGeneric:                "Runtime error",
	RunDivisionByZero:         "Division by zero",
	RunOverflow:               "Operation overflowed",
	RunIndexOutOfBounds:       "Index out of bounds",
	RunInvalidRange:           "Invalid range",
	RunDuplicateField:         "Duplicate record field",
	RunLengthMismatch:         "Record columns and values differ in length",
	IOFailure:                 "I/O failure",
	PluginInfo:                "Plugin information",
	PluginUnknownType:         "Unknown custom value type",
	PluginMalformedEnvelope:   "Malformed custom value envelope",
	PluginMissingCapability:   "Custom value type is missing a required capability",
	PluginIncompatibleVersion: "Incompatible plugin protocol version",
	PluginSourceMismatch:      "Custom value sent to the wrong plugin",
	PluginEncodeFailed:        "Failed to encode custom value",
	PluginDecodeFailed:        "Failed to decode custom value",
	PluginNotCustom:           "Value is not a custom value",
	PluginDuplicateType:       "Custom value type already registered",
	PluginRegistrySealed:      "Plugin registry is sealed",
	PluginNoHello:             "Plugin protocol used before hello",
	ParseFailure:              "Parse error",
	LabeledError:              "Error",
}

// Kind derives the taxonomy entry from the code range.
func (c Code) Kind() Kind {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return KindType
	case ic >= 2000 && ic < 3000:
		return KindPath
	case ic >= 3000 && ic < 4000:
		return KindRuntime
	case ic >= 4000 && ic < 5000:
		return KindIO
	case ic >= 5000 && ic < 6000:
		return KindPlugin
	case ic >= 6000 && ic < 7000:
		return KindParse
	case ic >= 7000 && ic < 8000:
		return KindLabeled
	}
	return KindUnknown
}

func (c Code) ID() string {
	ic := int(c)
	switch c.Kind() {
	case KindType:
		return fmt.Sprintf("TYP%04d", ic)
	case KindPath:
		return fmt.Sprintf("PTH%04d", ic)
	case KindRuntime:
		return fmt.Sprintf("RUN%04d", ic)
	case KindIO:
		return fmt.Sprintf("IO%04d", ic)
	case KindPlugin:
		return fmt.Sprintf("PLG%04d", ic)
	case KindParse:
		return fmt.Sprintf("PRS%04d", ic)
	case KindLabeled:
		return fmt.Sprintf("LBL%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
