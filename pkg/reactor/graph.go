package reactor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/hashver/pkg/maven"
)

// ErrNotFound is returned by Find when no graph file exists.
var ErrNotFound = errors.New("project graph file not found")

// Graph is a loaded project graph. It implements
// hashver.DependencyGraphSource.
type Graph struct {
	// Root is the directory relative paths were resolved against.
	Root string

	// Modules are the reactor modules in file order.
	Modules []*maven.Module

	trees map[string]*maven.DependencyNode
}

// Find returns the first graph file present in dir.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s (expected one of %s)", ErrNotFound, dir, strings.Join(FileNames, ", "))
}

// Load reads a graph file; the format follows the file extension.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project graph: %w", err)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".json":
		err = json.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported project graph format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse project graph %s: %w", path, err)
	}

	return New(&f, root)
}

// New builds a Graph from a decoded document.
func New(f *File, root string) (*Graph, error) {
	g := &Graph{
		Root:  root,
		trees: make(map[string]*maven.DependencyNode, len(f.Modules)),
	}
	defaults := convertRepositories(f.Repositories)

	for i := range f.Modules {
		spec := &f.Modules[i]
		if spec.GroupID == "" || spec.ArtifactID == "" || spec.Version == "" {
			return nil, fmt.Errorf("module #%d: groupId, artifactId and version are required", i+1)
		}

		m := &maven.Module{
			Coordinates: maven.Coordinates{
				GroupID:    spec.GroupID,
				ArtifactID: spec.ArtifactID,
				Version:    spec.Version,
				Type:       spec.Packaging,
			},
			Name:         spec.Name,
			BaseDir:      g.resolve(spec.BaseDir),
			Parent:       g.convertParent(spec.Parent),
			Repositories: convertRepositories(spec.Repositories),
		}
		if spec.POMFile != "" {
			m.POMFile = g.resolve(spec.POMFile)
		}
		if len(m.Repositories) == 0 {
			m.Repositories = defaults
		}

		if _, dup := g.trees[m.Key()]; dup {
			return nil, fmt.Errorf("duplicate module %s", m.Key())
		}

		root := &maven.DependencyNode{Coordinates: m.Coordinates}
		for _, dep := range spec.Dependencies {
			root.Children = append(root.Children, convertNode(dep))
		}
		g.trees[m.Key()] = root
		g.Modules = append(g.Modules, m)
	}

	g.linkParents()
	return g, nil
}

// DependencyGraph returns the resolved dependency tree of m.
func (g *Graph) DependencyGraph(_ context.Context, m *maven.Module) (*maven.DependencyNode, error) {
	tree, ok := g.trees[m.Key()]
	if !ok {
		return nil, fmt.Errorf("module %s is not part of the project graph", m.Key())
	}
	return tree, nil
}

// Module returns the reactor module with the given key.
func (g *Graph) Module(key string) (*maven.Module, bool) {
	for _, m := range g.Modules {
		if m.Key() == key {
			return m, true
		}
	}
	return nil, false
}

// Select returns the modules whose groupId:artifactId matches any of the
// glob patterns, in graph order. No patterns selects every module.
func (g *Graph) Select(patterns []string) ([]*maven.Module, error) {
	if len(patterns) == 0 {
		return g.Modules, nil
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		// Patterns without a colon match the artifactId of any group.
		if !strings.Contains(p, ":") {
			p = "*:" + p
		}
		gl, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid module pattern %q: %w", p, err)
		}
		globs = append(globs, gl)
	}

	var selected []*maven.Module
	for _, m := range g.Modules {
		for _, gl := range globs {
			if gl.Match(m.GroupArtifact()) {
				selected = append(selected, m)
				break
			}
		}
	}
	return selected, nil
}

// linkParents points ancestors that are reactor modules at the module
// descriptor and continues their chain with the module's own parent when
// the file does not spell it out.
func (g *Graph) linkParents() {
	byKey := make(map[string]*maven.Module, len(g.Modules))
	for _, m := range g.Modules {
		byKey[m.Key()] = m
	}

	for _, m := range g.Modules {
		seen := map[string]bool{m.Key(): true}
		for a := m.Parent; a != nil; a = a.Parent {
			if seen[a.Key()] {
				break
			}
			seen[a.Key()] = true

			pm, ok := byKey[a.Key()]
			if !ok {
				continue
			}
			if a.File == "" {
				a.File = pm.Descriptor()
			}
			if a.Parent == nil && pm.Parent != nil && !seen[pm.Parent.Key()] {
				a.Parent = cloneAncestor(pm.Parent)
			}
		}
	}
}

func (g *Graph) resolve(path string) string {
	if path == "" {
		return g.Root
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(g.Root, filepath.FromSlash(path))
}

func (g *Graph) convertParent(p *ParentSpec) *maven.Ancestor {
	if p == nil {
		return nil
	}
	a := &maven.Ancestor{
		Coordinates: maven.Coordinates{GroupID: p.GroupID, ArtifactID: p.ArtifactID, Version: p.Version, Type: maven.PackagingPOM},
		Parent:      g.convertParent(p.Parent),
	}
	if p.File != "" {
		a.File = g.resolve(p.File)
	}
	if p.ArtifactFile != "" {
		a.ArtifactFile = g.resolve(p.ArtifactFile)
	}
	return a
}

func cloneAncestor(a *maven.Ancestor) *maven.Ancestor {
	if a == nil {
		return nil
	}
	c := *a
	c.Parent = cloneAncestor(a.Parent)
	return &c
}

func convertNode(n NodeSpec) *maven.DependencyNode {
	node := &maven.DependencyNode{
		Coordinates: maven.Coordinates{
			GroupID:    n.GroupID,
			ArtifactID: n.ArtifactID,
			Version:    n.Version,
			Type:       n.Type,
			Classifier: n.Classifier,
			Scope:      n.Scope,
		},
		Optional: n.Optional,
	}
	for _, child := range n.Dependencies {
		node.Children = append(node.Children, convertNode(child))
	}
	return node
}

func convertRepositories(specs []RepositorySpec) []maven.Repository {
	if len(specs) == 0 {
		return nil
	}
	repos := make([]maven.Repository, len(specs))
	for i, r := range specs {
		repos[i] = maven.Repository{ID: r.ID, URL: r.URL}
	}
	return repos
}

// IsNotFound reports whether err means the graph file is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
