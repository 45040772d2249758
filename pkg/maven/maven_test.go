package maven

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsSnapshot(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"1.0", false},
		{"1.0-SNAPSHOT", true},
		{"SNAPSHOT", true},
		{"1.0-20240102.030405-7", true},
		{"1.0-20240102.0304-7", false},
		{"1.0-snapshot", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			if got := IsSnapshot(tt.version); got != tt.want {
				t.Errorf("IsSnapshot(%q) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}

func TestBaseVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"1.0", "1.0"},
		{"1.0-SNAPSHOT", "1.0-SNAPSHOT"},
		{"1.0-20240102.030405-7", "1.0-SNAPSHOT"},
	}

	for _, tt := range tests {
		if got := BaseVersion(tt.version); got != tt.want {
			t.Errorf("BaseVersion(%q) = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestCoordinatesString(t *testing.T) {
	tests := []struct {
		name string
		c    Coordinates
		want string
	}{
		{"minimal", Coordinates{GroupID: "g", ArtifactID: "a", Version: "1"}, "g:a:jar:1"},
		{"full", Coordinates{GroupID: "g", ArtifactID: "a", Version: "1", Type: "test-jar", Classifier: "tests", Scope: "test"}, "g:a:test-jar:tests:1:test"},
		{"no group", Coordinates{ArtifactID: "a", Version: "1", Type: "pom"}, "a:pom:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCoordinatesKey(t *testing.T) {
	c := Coordinates{GroupID: "g", ArtifactID: "a", Version: "1", Type: "war", Scope: "runtime"}
	if got := c.Key(); got != "g:a:1" {
		t.Errorf("Key() = %q, want %q", got, "g:a:1")
	}
}

func TestParseKey(t *testing.T) {
	c, err := ParseKey("com.example:core:1.0")
	if err != nil {
		t.Fatalf("ParseKey() error = %v", err)
	}
	if c.GroupID != "com.example" || c.ArtifactID != "core" || c.Version != "1.0" {
		t.Errorf("ParseKey() = %+v", c)
	}
	if c.Key() != "com.example:core:1.0" {
		t.Errorf("round trip = %q", c.Key())
	}

	for _, bad := range []string{"", "core", "g:a", "g::1", "g:a:1:jar"} {
		if _, err := ParseKey(bad); err == nil {
			t.Errorf("ParseKey(%q) expected error", bad)
		}
	}
}

func TestRepositoryPath(t *testing.T) {
	tests := []struct {
		name string
		c    Coordinates
		want string
	}{
		{
			name: "jar",
			c:    Coordinates{GroupID: "org.example.lib", ArtifactID: "core", Version: "1.2"},
			want: "org/example/lib/core/1.2/core-1.2.jar",
		},
		{
			name: "pom",
			c:    Coordinates{GroupID: "g", ArtifactID: "parent", Version: "3", Type: "pom"},
			want: "g/parent/3/parent-3.pom",
		},
		{
			name: "classifier and plugin",
			c:    Coordinates{GroupID: "g", ArtifactID: "p", Version: "1", Type: "maven-plugin", Classifier: "x"},
			want: "g/p/1/p-1-x.jar",
		},
		{
			name: "timestamped snapshot",
			c:    Coordinates{GroupID: "g", ArtifactID: "a", Version: "1.0-20240102.030405-7"},
			want: "g/a/1.0-SNAPSHOT/a-1.0-20240102.030405-7.jar",
		},
		{
			name: "unknown type",
			c:    Coordinates{GroupID: "g", ArtifactID: "a", Version: "1", Type: "zip"},
			want: "g/a/1/a-1.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RepositoryPath(tt.c); got != tt.want {
				t.Errorf("RepositoryPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModuleDescriptor(t *testing.T) {
	m := &Module{BaseDir: filepath.Join("x", "lib")}
	if got, want := m.Descriptor(), filepath.Join("x", "lib", "pom.xml"); got != want {
		t.Errorf("Descriptor() = %q, want %q", got, want)
	}
	m.POMFile = "custom.xml"
	if got := m.Descriptor(); got != "custom.xml" {
		t.Errorf("Descriptor() = %q, want custom.xml", got)
	}
	if m.IsPOM() {
		t.Error("IsPOM() = true for default packaging")
	}
	m.Type = PackagingPOM
	if !m.IsPOM() {
		t.Error("IsPOM() = false for pom packaging")
	}
}

func TestAncestorDescriptor(t *testing.T) {
	a := &Ancestor{ArtifactFile: "repo.pom"}
	if got := a.Descriptor(); got != "repo.pom" {
		t.Errorf("Descriptor() = %q, want repo.pom", got)
	}
	a.File = "local.pom"
	if got := a.Descriptor(); got != "local.pom" {
		t.Errorf("Descriptor() = %q, want local.pom", got)
	}
}

func TestDependencyNodeWalk(t *testing.T) {
	root := &DependencyNode{
		Coordinates: Coordinates{ArtifactID: "root"},
		Children: []*DependencyNode{
			{Coordinates: Coordinates{ArtifactID: "a"}, Children: []*DependencyNode{
				{Coordinates: Coordinates{ArtifactID: "a1"}},
			}},
			{Coordinates: Coordinates{ArtifactID: "b"}},
		},
	}

	var got []string
	root.Walk(func(n *DependencyNode, depth int) bool {
		got = append(got, n.ArtifactID)
		return n.ArtifactID != "a"
	})

	want := []string{"root", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("Walk visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Walk visited %v, want %v", got, want)
			break
		}
	}
}

func TestReadPOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pom.xml")
	content := `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <parent>
    <groupId>org.example</groupId>
    <artifactId>parent</artifactId>
    <version>${parent.version}</version>
  </parent>
  <artifactId>lib</artifactId>
  <version>
    ${lib.version}
  </version>
  <packaging>jar</packaging>
  <modules>
    <module>a</module>
    <module>b</module>
  </modules>
  <dependencies>
    <dependency>
      <groupId>org.example</groupId>
      <artifactId>core</artifactId>
      <version> ${core.version} </version>
      <scope>test</scope>
    </dependency>
  </dependencies>
</project>
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := ReadPOM(path)
	if err != nil {
		t.Fatalf("ReadPOM() error = %v", err)
	}
	if p.ArtifactID != "lib" {
		t.Errorf("ArtifactID = %q, want lib", p.ArtifactID)
	}
	if p.Version != "${lib.version}" {
		t.Errorf("Version = %q, want ${lib.version}", p.Version)
	}
	if p.EffectiveGroupID() != "org.example" {
		t.Errorf("EffectiveGroupID() = %q, want org.example", p.EffectiveGroupID())
	}
	if p.Parent == nil || p.Parent.Version != "${parent.version}" {
		t.Errorf("Parent = %+v", p.Parent)
	}
	if len(p.Modules) != 2 {
		t.Errorf("Modules = %v, want 2 entries", p.Modules)
	}
	if len(p.Dependencies) != 1 || p.Dependencies[0].Version != "${core.version}" || p.Dependencies[0].Scope != "test" {
		t.Errorf("Dependencies = %+v", p.Dependencies)
	}
}

func TestReadPOMMissing(t *testing.T) {
	if _, err := ReadPOM(filepath.Join(t.TempDir(), "pom.xml")); err == nil {
		t.Error("ReadPOM() expected error for missing file")
	}
}
