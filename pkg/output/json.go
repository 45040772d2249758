package output

import (
	"strings"

	"github.com/albertocavalcante/hashver/pkg/util"
)

// FormatJSON renders a flat string map as a JSON object with sorted keys:
//
//	{"a": "b",
//	 "x": "y"}
//
// followed by a newline. Strings are escaped with every non-ASCII character
// written as \uXXXX, so the output is pure ASCII.
func FormatJSON(m map[string]string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range util.SortedKeys(m) {
		if i > 0 {
			b.WriteString(",\n ")
		}
		writeJSONString(&b, k)
		b.WriteString(": ")
		writeJSONString(&b, m[k])
	}
	b.WriteString("}\n")
	return b.String()
}

func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '/':
			b.WriteString(`\/`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r > 0x7f {
				writeUnicodeEscape(b, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}
