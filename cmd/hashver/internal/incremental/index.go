package incremental

import (
	"time"

	"github.com/albertocavalcante/hashver/pkg/hashver"
)

// IndexVersion is the current version of the index format.
const IndexVersion = 1

// Index is a snapshot of module hashversions.
type Index struct {
	Version   int               `json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
	Entries   map[string]*Entry `json:"entries"`
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		Version:   IndexVersion,
		UpdatedAt: time.Now(),
		Entries:   make(map[string]*Entry),
	}
}

// FromResult builds an index from a computation result.
func FromResult(res *hashver.Result) *Index {
	idx := NewIndex()
	if res == nil {
		return idx
	}
	for _, mv := range res.Modules {
		idx.Add(&Entry{
			Module:      mv.Module.Key(),
			Key:         mv.Key,
			OwnHash:     mv.OwnHash,
			HashVersion: mv.HashVersion,
		})
	}
	return idx
}

// Add adds or updates an entry.
func (idx *Index) Add(e *Entry) {
	if idx == nil || e == nil {
		return
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]*Entry)
	}
	idx.Entries[e.Module] = e
}

// Get retrieves an entry by module key.
func (idx *Index) Get(module string) (*Entry, bool) {
	if idx == nil || idx.Entries == nil {
		return nil, false
	}
	e, ok := idx.Entries[module]
	return e, ok
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Entries)
}

// Versions returns the recorded hashversions keyed by output key.
func (idx *Index) Versions() map[string]string {
	out := make(map[string]string, idx.Len())
	if idx == nil {
		return out
	}
	for _, e := range idx.Entries {
		out[e.Key] = e.HashVersion
	}
	return out
}

// Diff compares this index against another, returning changes.
// The receiver (idx) is the "old" state, other is the "new" state.
func (idx *Index) Diff(other *Index) *ChangeSet {
	cs := NewChangeSet()

	var oldEntries, newEntries map[string]*Entry
	if idx != nil {
		oldEntries = idx.Entries
	}
	if other != nil {
		newEntries = other.Entries
	}

	for module, newEntry := range newEntries {
		oldEntry, exists := oldEntries[module]
		switch {
		case !exists:
			cs.Added = append(cs.Added, module)
		case oldEntry.HashVersion == newEntry.HashVersion:
		case oldEntry.OwnHash != newEntry.OwnHash:
			cs.Modified = append(cs.Modified, module)
		default:
			cs.Propagated = append(cs.Propagated, module)
		}
	}

	for module := range oldEntries {
		if _, exists := newEntries[module]; !exists {
			cs.Deleted = append(cs.Deleted, module)
		}
	}

	cs.sort()
	return cs
}
