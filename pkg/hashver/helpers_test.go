package hashver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/hashver/pkg/maven"
)

// writeFiles creates files under root; keys are slash separated paths.
func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func newModule(t *testing.T, root, artifactID string, files map[string]string) *maven.Module {
	t.Helper()
	dir := filepath.Join(root, artifactID)
	if _, ok := files["pom.xml"]; !ok {
		files["pom.xml"] = fmt.Sprintf("<project><artifactId>%s</artifactId></project>", artifactID)
	}
	writeFiles(t, dir, files)
	return &maven.Module{
		Coordinates: maven.Coordinates{GroupID: "org.example", ArtifactID: artifactID, Version: "${" + artifactID + ".version}"},
		BaseDir:     dir,
	}
}

// staticGraph is a DependencyGraphSource backed by a map of module keys to
// direct dependencies. Trees are built recursively from the map.
type staticGraph struct {
	deps    map[string][]maven.Coordinates
	modules map[string]*maven.Module
}

func newStaticGraph(modules ...*maven.Module) *staticGraph {
	g := &staticGraph{
		deps:    make(map[string][]maven.Coordinates),
		modules: make(map[string]*maven.Module),
	}
	for _, m := range modules {
		g.modules[m.Key()] = m
	}
	return g
}

func (g *staticGraph) dependOn(from *maven.Module, to maven.Coordinates) {
	g.deps[from.Key()] = append(g.deps[from.Key()], to)
}

func (g *staticGraph) DependencyGraph(_ context.Context, m *maven.Module) (*maven.DependencyNode, error) {
	return g.node(m.Coordinates), nil
}

func (g *staticGraph) node(c maven.Coordinates) *maven.DependencyNode {
	n := &maven.DependencyNode{Coordinates: c}
	for _, d := range g.deps[c.Key()] {
		child := g.node(d)
		if child.Scope == "" {
			child.Scope = "compile"
		}
		n.Children = append(n.Children, child)
	}
	return n
}
