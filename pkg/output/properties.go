// Package output renders computed hashversions into the files consumed by
// the build: a properties file, a JSON object, a maven.config fragment and
// the list of projects to build.
//
// Every format is deterministic: keys are sorted and no timestamps are
// written, so unchanged hashversions produce byte identical files.
package output

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/hashver/pkg/util"
)

const hexDigits = "0123456789ABCDEF"

// FormatProperties renders versions as sorted key=value lines using Java
// properties escaping.
func FormatProperties(versions map[string]string) string {
	var b strings.Builder
	for _, k := range util.SortedKeys(versions) {
		escapeProperty(&b, k, true)
		b.WriteByte('=')
		escapeProperty(&b, versions[k], false)
		b.WriteByte('\n')
	}
	return b.String()
}

// escapeProperty writes s escaped like java.util.Properties.store. Spaces
// are escaped everywhere in keys and only at the start of values.
func escapeProperty(b *strings.Builder, s string, isKey bool) {
	for i, r := range s {
		switch r {
		case ' ':
			if isKey || i == 0 {
				b.WriteByte('\\')
			}
			b.WriteByte(' ')
		case '\\':
			b.WriteString(`\\`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\f':
			b.WriteString(`\f`)
		case '=', ':', '#', '!':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			if r < 0x20 || r > 0x7e {
				writeUnicodeEscape(b, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
}

// writeUnicodeEscape writes r as one \uXXXX escape, or a surrogate pair for
// runes outside the basic multilingual plane.
func writeUnicodeEscape(b *strings.Builder, r rune) {
	if r > 0xffff {
		r -= 0x10000
		writeUnit(b, 0xd800+(r>>10))
		writeUnit(b, 0xdc00+(r&0x3ff))
		return
	}
	writeUnit(b, r)
}

func writeUnit(b *strings.Builder, u rune) {
	b.WriteString(`\u`)
	for shift := 12; shift >= 0; shift -= 4 {
		b.WriteByte(hexDigits[(u>>shift)&0xf])
	}
}

// FormatMavenConfig renders versions as "-Dkey=value" lines, the format of
// .mvn/maven.config.
func FormatMavenConfig(versions map[string]string) string {
	var b strings.Builder
	for _, k := range util.SortedKeys(versions) {
		fmt.Fprintf(&b, "-D%s=%s\n", k, versions[k])
	}
	return b.String()
}

// FormatProjectList renders artifactIds as a Maven --projects value:
// ":a,:b". Order is preserved.
func FormatProjectList(artifactIDs []string) string {
	parts := make([]string, len(artifactIDs))
	for i, id := range artifactIDs {
		parts[i] = ":" + id
	}
	return strings.Join(parts, ",")
}
