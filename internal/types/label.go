package types

import (
	"strconv"
	"strings"
	"unicode"
)

// String renders the type the way the shell prints signatures:
// int, list<int>, record<a: int, ...>, oneof<int, float>.
func (t Type) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t Type) write(sb *strings.Builder) {
	switch t.Kind {
	case KindList:
		sb.WriteString("list<")
		t.Element().write(sb)
		sb.WriteByte('>')
	case KindRecord:
		if len(t.Fields) == 0 && !t.Closed {
			sb.WriteString("record")
			return
		}
		sb.WriteString("record<")
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fieldName(f.Name))
			sb.WriteString(": ")
			f.Type.write(sb)
		}
		if !t.Closed {
			sb.WriteString(", ...")
		}
		sb.WriteByte('>')
	case KindOneOf:
		sb.WriteString("oneof<")
		for i, alt := range t.Alts {
			if i > 0 {
				sb.WriteString(", ")
			}
			alt.write(sb)
		}
		sb.WriteByte('>')
	case KindCustom:
		sb.WriteString(t.Name)
	default:
		sb.WriteString(t.Kind.String())
	}
}

func fieldName(name string) string {
	if name == "" {
		return `""`
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return strconv.Quote(name)
		}
	}
	return name
}
