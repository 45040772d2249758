package probe

import "strings"

// JoinURL joins a base URL and a relative path with exactly one slash
// between them.
func JoinURL(base, path string) string {
	switch {
	case base == "":
		return path
	case path == "":
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
