package incremental

import (
	"slices"

	"github.com/albertocavalcante/hashver/pkg/maven"
)

// ChangeSet represents the differences between two indexes. Module keys
// land in Modified when their own content changed and in Propagated when
// only their dependencies or ancestors did.
type ChangeSet struct {
	Added      []string `json:"added"`
	Modified   []string `json:"modified"`
	Propagated []string `json:"propagated"`
	Deleted    []string `json:"deleted"`
}

// NewChangeSet creates an empty ChangeSet.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{
		Added:      []string{},
		Modified:   []string{},
		Propagated: []string{},
		Deleted:    []string{},
	}
}

// IsEmpty returns true if there are no changes.
func (cs *ChangeSet) IsEmpty() bool {
	return cs.TotalChanges() == 0
}

// TotalChanges returns the total number of changed modules.
func (cs *ChangeSet) TotalChanges() int {
	if cs == nil {
		return 0
	}
	return len(cs.Added) + len(cs.Modified) + len(cs.Propagated) + len(cs.Deleted)
}

// Affected returns the sorted module keys that still exist and whose
// hashversion changed.
func (cs *ChangeSet) Affected() []string {
	if cs == nil {
		return nil
	}
	out := slices.Concat(cs.Added, cs.Modified, cs.Propagated)
	slices.Sort(out)
	return out
}

// AsProjects converts affected modules to Maven project selectors
// (":artifactId").
func (cs *ChangeSet) AsProjects() []string {
	affected := cs.Affected()
	projects := make([]string, 0, len(affected))
	for _, key := range affected {
		projects = append(projects, ":"+artifactID(key))
	}
	return projects
}

// artifactID extracts the artifactId from a groupId:artifactId:version key.
func artifactID(key string) string {
	c, err := maven.ParseKey(key)
	if err != nil {
		return key
	}
	return c.ArtifactID
}

// sort sorts all slices for deterministic output.
func (cs *ChangeSet) sort() {
	if cs == nil {
		return
	}
	slices.Sort(cs.Added)
	slices.Sort(cs.Modified)
	slices.Sort(cs.Propagated)
	slices.Sort(cs.Deleted)
}
