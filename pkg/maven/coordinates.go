// Package maven provides the Maven domain model used by hashver.
//
// It covers only what hashversion computation needs: artifact coordinates,
// reactor modules with their ancestor chain, resolved dependency trees,
// snapshot detection and the default (Maven 2) repository layout.
//
// # Identity
//
// A module is identified by its groupId:artifactId:version key (see
// Coordinates.Key). This is the key used to look up own hashes while a
// dependency tree is rendered, so a reactor module referenced from another
// module's tree resolves to the same entry regardless of type or scope.
package maven

import (
	"fmt"
	"strings"
)

// DefaultType is the artifact type assumed when none is given.
const DefaultType = "jar"

// Coordinates identify an artifact.
//
// Type, Classifier and Scope are optional. An empty Type means DefaultType.
type Coordinates struct {
	GroupID    string
	ArtifactID string
	Version    string
	Type       string
	Classifier string
	Scope      string
}

// Key returns groupId:artifactId:version.
func (c Coordinates) Key() string {
	return Key(c.GroupID, c.ArtifactID, c.Version)
}

// Key builds a module identity key from its parts.
func Key(groupID, artifactID, version string) string {
	return groupID + ":" + artifactID + ":" + version
}

// ParseKey parses a groupId:artifactId:version key. All three parts must
// be non-empty.
func ParseKey(key string) (Coordinates, error) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Coordinates{}, fmt.Errorf("invalid module key %q: want groupId:artifactId:version", key)
	}
	return Coordinates{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}, nil
}

// ArtifactType returns Type, or DefaultType when unset.
func (c Coordinates) ArtifactType() string {
	if c.Type == "" {
		return DefaultType
	}
	return c.Type
}

// GroupArtifact returns groupId:artifactId.
func (c Coordinates) GroupArtifact() string {
	return c.GroupID + ":" + c.ArtifactID
}

// IsSnapshot reports whether the coordinates refer to a snapshot version.
func (c Coordinates) IsSnapshot() bool {
	return IsSnapshot(c.Version)
}

// String renders the coordinates in Maven artifact notation:
// groupId:artifactId:type[:classifier]:version[:scope].
func (c Coordinates) String() string {
	var b strings.Builder
	if c.GroupID != "" {
		b.WriteString(c.GroupID)
		b.WriteByte(':')
	}
	b.WriteString(c.ArtifactID)
	b.WriteByte(':')
	b.WriteString(c.ArtifactType())
	if c.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(c.Classifier)
	}
	b.WriteByte(':')
	b.WriteString(c.Version)
	if c.Scope != "" {
		b.WriteByte(':')
		b.WriteString(c.Scope)
	}
	return b.String()
}
