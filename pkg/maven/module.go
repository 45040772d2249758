package maven

import "path/filepath"

// PackagingPOM is the packaging of aggregator and parent modules. Such
// modules never produce a buildable binary artifact.
const PackagingPOM = "pom"

// DescriptorName is the conventional project descriptor file name.
const DescriptorName = "pom.xml"

// Repository is a remote artifact repository.
type Repository struct {
	ID  string
	URL string
}

// Module is one project of a multi-module build.
//
// Coordinates.Type carries the module packaging. A Module is treated as
// immutable once handed to the hashversion engine.
type Module struct {
	Coordinates

	// Name is a human readable name, used only in log output.
	Name string

	// BaseDir is the module's base directory.
	BaseDir string

	// POMFile is the module descriptor. Empty means BaseDir/pom.xml.
	POMFile string

	// Parent is the first link of the ancestor chain, nil for a root project.
	Parent *Ancestor

	// Repositories are the remote repositories the module resolves from.
	Repositories []Repository
}

// Packaging returns the module packaging, "jar" when unset.
func (m *Module) Packaging() string {
	return m.ArtifactType()
}

// IsPOM reports whether the module has pom packaging.
func (m *Module) IsPOM() bool {
	return m.Packaging() == PackagingPOM
}

// Descriptor returns the path of the module descriptor.
func (m *Module) Descriptor() string {
	if m.POMFile != "" {
		return m.POMFile
	}
	return filepath.Join(m.BaseDir, DescriptorName)
}

// SourceDir returns the module's src directory.
func (m *Module) SourceDir() string {
	return filepath.Join(m.BaseDir, "src")
}

// DisplayName returns Name, falling back to groupId:artifactId.
func (m *Module) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.GroupArtifact()
}

func (m *Module) String() string {
	return m.Key()
}

// Ancestor is one link of a module's parent chain.
//
// File is the locally present descriptor (set when the parent is part of the
// reactor or found through relativePath). ArtifactFile is the descriptor
// resolved from a repository. Either may be empty.
type Ancestor struct {
	Coordinates

	File         string
	ArtifactFile string
	Parent       *Ancestor
}

// Descriptor returns File, else ArtifactFile, else "".
func (a *Ancestor) Descriptor() string {
	if a.File != "" {
		return a.File
	}
	return a.ArtifactFile
}

// DependencyNode is one node of a resolved dependency tree. The root node is
// the module itself.
type DependencyNode struct {
	Coordinates

	Optional bool
	Children []*DependencyNode
}

// Walk visits n and its descendants depth-first in pre-order. Returning
// false from fn skips the node's children.
func (n *DependencyNode) Walk(fn func(node *DependencyNode, depth int) bool) {
	n.walk(fn, 0)
}

func (n *DependencyNode) walk(fn func(*DependencyNode, int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}
