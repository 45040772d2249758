// Package util holds small generic helpers shared across hashver packages.
package util

import (
	"cmp"
	"maps"
	"slices"
)

// SortedKeys returns the keys of a map in sorted order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

// ChangedKeys returns, in sorted order, the keys whose value differs
// between old and cur, including keys present in only one of them.
func ChangedKeys[K cmp.Ordered, V comparable](old, cur map[K]V) []K {
	changed := make(map[K]struct{})
	for k, v := range cur {
		if ov, ok := old[k]; !ok || ov != v {
			changed[k] = struct{}{}
		}
	}
	for k := range old {
		if _, ok := cur[k]; !ok {
			changed[k] = struct{}{}
		}
	}
	return SortedKeys(changed)
}
