package util

import (
	"slices"
	"testing"
)

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]int{"b": 1, "a": 2, "C": 3})
	want := []string{"C", "a", "b"}
	if !slices.Equal(got, want) {
		t.Errorf("SortedKeys() = %v, want %v", got, want)
	}
}

func TestChangedKeys(t *testing.T) {
	old := map[string]string{"a": "1", "b": "2", "gone": "x"}
	cur := map[string]string{"a": "1", "b": "3", "new": "y"}

	got := ChangedKeys(old, cur)
	want := []string{"b", "gone", "new"}
	if !slices.Equal(got, want) {
		t.Errorf("ChangedKeys() = %v, want %v", got, want)
	}

	if got := ChangedKeys(cur, cur); len(got) != 0 {
		t.Errorf("ChangedKeys(same) = %v, want empty", got)
	}
}
