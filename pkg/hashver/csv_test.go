package hashver

import "testing"

func TestCSVListMember(t *testing.T) {
	tests := []struct {
		list string
		item string
		want bool
	}{
		{"", "a", false},
		{"a,b,c", "a", true},
		{"c,a,b", "a", true},
		{"c,  a, b", "a", false},
		{"c,,a,b", "a", true},
		{"a, b, c", "b", false},
		{"org.example:parent", "org.example:parent", true},
		{"org.example:parent", "org.example:par", false},
	}

	for _, tt := range tests {
		if got := CSVListMember(tt.list, tt.item); got != tt.want {
			t.Errorf("CSVListMember(%q, %q) = %v, want %v", tt.list, tt.item, got, tt.want)
		}
	}
}
