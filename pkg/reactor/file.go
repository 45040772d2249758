// Package reactor loads the project graph of a multi-module build from a
// file: the reactor modules, their ancestor chains, repositories and
// resolved dependency trees.
//
// The file is produced by the build tool and may be JSON or YAML:
//
//	repositories:
//	  - {id: central, url: https://repo.maven.apache.org/maven2}
//	modules:
//	  - groupId: org.example
//	    artifactId: lib-b
//	    version: "${lib-b.version}"
//	    basedir: lib-b
//	    parent: {groupId: org.example, artifactId: parent, version: "1"}
//	    dependencies:
//	      - {groupId: org.example, artifactId: lib-a, version: "${lib-a.version}", scope: compile}
//
// Relative paths resolve against the directory of the graph file.
package reactor

// FileNames are the graph file names searched for in a project root, in
// order.
var FileNames = []string{"hashver-reactor.json", "hashver-reactor.yaml", "hashver-reactor.yml"}

// File is the on-disk graph document.
type File struct {
	Repositories []RepositorySpec `json:"repositories" yaml:"repositories"`
	Modules      []ModuleSpec     `json:"modules" yaml:"modules"`
}

// RepositorySpec is a remote repository.
type RepositorySpec struct {
	ID  string `json:"id" yaml:"id"`
	URL string `json:"url" yaml:"url"`
}

// ModuleSpec describes one reactor module.
type ModuleSpec struct {
	GroupID      string           `json:"groupId" yaml:"groupId"`
	ArtifactID   string           `json:"artifactId" yaml:"artifactId"`
	Version      string           `json:"version" yaml:"version"`
	Packaging    string           `json:"packaging" yaml:"packaging"`
	Name         string           `json:"name" yaml:"name"`
	BaseDir      string           `json:"basedir" yaml:"basedir"`
	POMFile      string           `json:"pomFile" yaml:"pomFile"`
	Parent       *ParentSpec      `json:"parent" yaml:"parent"`
	Repositories []RepositorySpec `json:"repositories" yaml:"repositories"`
	Dependencies []NodeSpec       `json:"dependencies" yaml:"dependencies"`
}

// ParentSpec is one link of an ancestor chain.
type ParentSpec struct {
	GroupID      string      `json:"groupId" yaml:"groupId"`
	ArtifactID   string      `json:"artifactId" yaml:"artifactId"`
	Version      string      `json:"version" yaml:"version"`
	File         string      `json:"file" yaml:"file"`
	ArtifactFile string      `json:"artifactFile" yaml:"artifactFile"`
	Parent       *ParentSpec `json:"parent" yaml:"parent"`
}

// NodeSpec is a resolved dependency and its own dependencies.
type NodeSpec struct {
	GroupID      string     `json:"groupId" yaml:"groupId"`
	ArtifactID   string     `json:"artifactId" yaml:"artifactId"`
	Version      string     `json:"version" yaml:"version"`
	Type         string     `json:"type" yaml:"type"`
	Classifier   string     `json:"classifier" yaml:"classifier"`
	Scope        string     `json:"scope" yaml:"scope"`
	Optional     bool       `json:"optional" yaml:"optional"`
	Dependencies []NodeSpec `json:"dependencies" yaml:"dependencies"`
}
