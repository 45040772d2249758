package hashver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertocavalcante/hashver/pkg/maven"
)

func ancestorModule(parent *maven.Ancestor) *maven.Module {
	return &maven.Module{
		Coordinates: coords("org.example", "child", "1", ""),
		Parent:      parent,
	}
}

func hashAncestors(t *testing.T, opts AncestorOptions, m *maven.Module) (string, error) {
	t.Helper()
	d := SHA1.New()
	if err := NewAncestorHasher(opts, false, nil).Hash(m, d); err != nil {
		return "", err
	}
	return Encode(d.Sum(nil)), nil
}

func TestAncestorHasherUsesDescriptors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"parent/pom.xml": "<parent/>",
		"root.pom":       "<root/>",
	})
	m := ancestorModule(&maven.Ancestor{
		Coordinates: coords("org.example", "parent", "1", ""),
		File:        filepath.Join(dir, "parent", "pom.xml"),
		Parent: &maven.Ancestor{
			Coordinates:  coords("org.example", "root", "7", ""),
			ArtifactFile: filepath.Join(dir, "root.pom"),
		},
	})

	got, err := hashAncestors(t, AncestorOptions{}, m)
	require.NoError(t, err)

	d := SHA1.New()
	_, _ = d.Write([]byte("<parent/><root/>"))
	assert.Equal(t, Encode(d.Sum(nil)), got)
}

func TestAncestorHasherLocalFileWins(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"local.xml": "local", "repo.pom": "repo"})
	m := ancestorModule(&maven.Ancestor{
		Coordinates:  coords("org.example", "parent", "1", ""),
		File:         filepath.Join(dir, "local.xml"),
		ArtifactFile: filepath.Join(dir, "repo.pom"),
	})

	got, err := hashAncestors(t, AncestorOptions{}, m)
	require.NoError(t, err)

	d := SHA1.New()
	_, _ = d.Write([]byte("local"))
	assert.Equal(t, Encode(d.Sum(nil)), got)
}

func TestAncestorHasherMissingDescriptor(t *testing.T) {
	m := ancestorModule(&maven.Ancestor{Coordinates: coords("org.corp", "corp-parent", "3", "")})

	_, err := hashAncestors(t, AncestorOptions{}, m)
	var ancErr *AncestorError
	require.ErrorAs(t, err, &ancErr)
	assert.ErrorIs(t, err, ErrAncestorNotFound)
	assert.Contains(t, err.Error(), "org.corp:corp-parent")
	assert.Contains(t, err.Error(), "ancestors.relaxed_hashing")
	assert.Contains(t, err.Error(), "ancestors.ignore_errors")
}

func TestAncestorHasherFallback(t *testing.T) {
	m := ancestorModule(&maven.Ancestor{Coordinates: coords("org.corp", "corp-parent", "3", "")})

	d := SHA1.New()
	_, _ = d.Write([]byte("org.corp:corp-parent:3"))
	want := Encode(d.Sum(nil))

	tests := []struct {
		name    string
		opts    AncestorOptions
		wantErr bool
	}{
		{"relaxed list", AncestorOptions{RelaxedHashing: "x:y,org.corp:corp-parent"}, false},
		{"ignore errors", AncestorOptions{IgnoreErrors: true}, false},
		{"whitespace is significant", AncestorOptions{RelaxedHashing: "x:y, org.corp:corp-parent"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := hashAncestors(t, tt.opts, m)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrAncestorNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestAncestorHasherNoParent(t *testing.T) {
	got, err := hashAncestors(t, AncestorOptions{}, ancestorModule(nil))
	require.NoError(t, err)
	assert.Equal(t, Encode(SHA1.New().Sum(nil)), got)
}
