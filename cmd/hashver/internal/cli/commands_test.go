package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureGraph = `
modules:
  - groupId: org.example
    artifactId: parent
    version: "1.0"
    packaging: pom
    basedir: .
  - groupId: org.example
    artifactId: core
    version: "1.0"
    basedir: core
    parent: {groupId: org.example, artifactId: parent, version: "1.0"}
  - groupId: org.example
    artifactId: web
    version: "1.0"
    basedir: web
    parent: {groupId: org.example, artifactId: parent, version: "1.0"}
    dependencies:
      - {groupId: org.example, artifactId: core, version: "1.0", scope: compile}
      - {groupId: org.external, artifactId: lib, version: "2.1", scope: compile}
`

// newProject writes a three module project and isolates configuration
// lookups from the user environment.
func newProject(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	root := t.TempDir()
	files := map[string]string{
		".mvn/jvm.config":        "",
		"hashver-reactor.yaml":   fixtureGraph,
		"pom.xml":                pom("", "parent", "${parent.version}"),
		"core/pom.xml":           pom(parentRef, "core", "${core.version}"),
		"core/src/main/A.java":   "class A {}",
		"web/pom.xml":            pom(parentRef, "web", "${web.version}"),
		"web/src/main/B.java":    "class B {}",
		"web/src/test/BTest.txt": "test",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

const parentRef = `<parent><groupId>org.example</groupId><artifactId>parent</artifactId><version>${parent.version}</version></parent>`

func pom(parent, artifactID, version string) string {
	return "<project>" + parent + "<groupId>org.example</groupId><artifactId>" + artifactID +
		"</artifactId><version>" + version + "</version></project>\n"
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := RootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	defer func() {
		root.SetOut(nil)
		root.SetErr(nil)
	}()
	err := root.Execute()
	return out.String(), err
}

func readProperties(t *testing.T, path string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	props := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		k, v, ok := strings.Cut(line, "=")
		require.True(t, ok, "malformed line %q", line)
		props[k] = v
	}
	return props
}

func TestComputeWritesOutputs(t *testing.T) {
	root := newProject(t)

	out, err := run(t, "-C", root, "compute")
	require.NoError(t, err)
	assert.Contains(t, out, "3 hashversions written")

	props := readProperties(t, filepath.Join(root, "target", "hashversions.properties"))
	assert.Len(t, props, 3)
	for _, key := range []string{"parent.version", "core.version", "web.version"} {
		hv := props[key]
		own, composite, ok := strings.Cut(hv, ".")
		assert.True(t, ok && own != "" && composite != "", "hashversion %q of %s", hv, key)
	}

	data, err := os.ReadFile(filepath.Join(root, "target", "hashversions.json"))
	require.NoError(t, err)
	var fromJSON map[string]string
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, props, fromJSON)

	assert.FileExists(t, filepath.Join(root, ".hashver", "state.json"))

	again, err := run(t, "-C", root, "compute")
	require.NoError(t, err)
	assert.Equal(t, out, again)
	assert.Equal(t, props, readProperties(t, filepath.Join(root, "target", "hashversions.properties")),
		"unchanged sources give unchanged hashversions")
}

func TestStatusReportsModifiedAndPropagated(t *testing.T) {
	root := newProject(t)

	_, err := run(t, "-C", root, "compute")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "core", "src", "main", "A.java"), []byte("class A { int x; }"), 0o644))

	out, err := run(t, "-C", root, "status", "--json")
	require.NoError(t, err)

	var status StatusOutput
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.Stale)
	assert.Equal(t, []string{"org.example:core:1.0"}, status.Modified)
	assert.Equal(t, []string{"org.example:web:1.0"}, status.Propagated)
	assert.Empty(t, status.New)
	assert.Empty(t, status.Deleted)
	assert.Equal(t, []string{":core", ":web"}, status.Projects)
}

func TestProjectsToBuildAndMerge(t *testing.T) {
	root := newProject(t)
	dbDir := filepath.Join(t.TempDir(), "db")
	require.NoError(t, os.MkdirAll(dbDir, 0o755))

	_, err := run(t, "-C", root, "projects-to-build", "--db-dir", dbDir)
	require.NoError(t, err)

	list, err := os.ReadFile(filepath.Join(root, "target", "hashver-projects-to-build"))
	require.NoError(t, err)
	assert.Equal(t, ":parent,:core,:web", string(list))

	staged, err := os.ReadDir(filepath.Join(root, "target", "hashver-db-additions"))
	require.NoError(t, err)
	assert.Len(t, staged, 3)

	out, err := run(t, "-C", root, "db", "merge", "--db-dir", dbDir)
	require.NoError(t, err)
	assert.Contains(t, out, "merged 3 markers")

	_, err = run(t, "-C", root, "projects-to-build", "--db-dir", dbDir)
	require.NoError(t, err)
	list, err = os.ReadFile(filepath.Join(root, "target", "hashver-projects-to-build"))
	require.NoError(t, err)
	assert.Empty(t, string(list), "everything is in the database")

	staged, err = os.ReadDir(filepath.Join(root, "target", "hashver-db-additions"))
	require.NoError(t, err)
	assert.Empty(t, staged, "staging is cleaned on every run")
}

func TestProjectsToBuildRequiresDB(t *testing.T) {
	root := newProject(t)
	_, err := run(t, "-C", root, "projects-to-build", "--db-dir", filepath.Join(root, "no-such-db"))
	assert.Error(t, err)
}

// installJar puts an empty artifact for org.example:artifactID:version into
// the local repository.
func installJar(t *testing.T, repo, artifactID, version string) {
	t.Helper()
	jar := filepath.Join(repo, "org", "example", artifactID, version, artifactID+"-"+version+".jar")
	require.NoError(t, os.MkdirAll(filepath.Dir(jar), 0o755))
	require.NoError(t, os.WriteFile(jar, []byte("jar"), 0o644))
}

func TestSkipExistingHashVersions(t *testing.T) {
	root := newProject(t)
	repo := t.TempDir()
	t.Setenv("HASHVER_LOCAL_REPOSITORY", repo)

	_, err := run(t, "-C", root, "compute")
	require.NoError(t, err)
	props := readProperties(t, filepath.Join(root, "target", "hashversions.properties"))

	// Only the hashversion path exists; the declared version does not.
	installJar(t, repo, "core", props["core.version"])

	out, err := run(t, "-C", root, "skip-existing", "--methods", "local")
	require.NoError(t, err)
	assert.Equal(t, ":parent,:web\n", out)
}

func TestSkipExistingDeclaredVersions(t *testing.T) {
	t.Cleanup(func() { skipFlags.declared = false })
	root := newProject(t)
	repo := t.TempDir()
	t.Setenv("HASHVER_LOCAL_REPOSITORY", repo)

	installJar(t, repo, "core", "1.0")

	out, err := run(t, "-C", root, "skip-existing", "--methods", "local", "--declared-versions")
	require.NoError(t, err)
	assert.Equal(t, ":parent,:web\n", out)
}

func TestAuditCleanProject(t *testing.T) {
	root := newProject(t)

	out, err := run(t, "-C", root, "audit")
	require.NoError(t, err)
	assert.Contains(t, out, "3 modules audited, no findings")
}

func TestMissingGraph(t *testing.T) {
	root := newProject(t)
	require.NoError(t, os.Remove(filepath.Join(root, "hashver-reactor.yaml")))

	_, err := run(t, "-C", root, "compute")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project graph file not found")
}
