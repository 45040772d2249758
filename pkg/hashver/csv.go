package hashver

import "strings"

// CSVListMember reports whether item is one of the comma separated entries
// of list. Entries are compared exactly, without trimming whitespace.
func CSVListMember(list, item string) bool {
	if list == "" {
		return false
	}
	for _, entry := range strings.Split(list, ",") {
		if entry == item {
			return true
		}
	}
	return false
}
