package existdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hv = "XyZ0abc.Qrs9tuv"

func TestShardKey(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		in      string
		want    string
		wantErr bool
	}{
		{"default", DefaultLayout, hv, "X.Q", false},
		{"wider", Layout{OwnChars: 2, CompositeChars: 3}, hv, "Xy.Qrs", false},
		{"no dot", DefaultLayout, "XyZ0abc", "", true},
		{"empty own", DefaultLayout, ".Qrs", "", true},
		{"empty composite", DefaultLayout, "XyZ.", "", true},
		{"too short", Layout{OwnChars: 8, CompositeChars: 1}, hv, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.layout.ShardKey(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedHashVersion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathDeterministic(t *testing.T) {
	db := New("/db", DefaultLayout)
	p1, err := db.Path("lib-a", hv)
	require.NoError(t, err)
	p2, err := New("/db", DefaultLayout).Path("lib-a", hv)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, filepath.Join("/db", "lib-a-X.Q", hv), p1)
}

func TestRelPathRejectsSeparators(t *testing.T) {
	_, err := DefaultLayout.RelPath("lib", "a/b.c")
	assert.ErrorIs(t, err, ErrMalformedHashVersion)

	for _, id := range []string{"", ".", "..", "../escape", "a/b", `a\b`, "../../etc"} {
		_, err = DefaultLayout.RelPath(id, hv)
		assert.ErrorIs(t, err, ErrInvalidArtifactID, "artifactId %q", id)
	}
}

func TestStagePendingStaysInsideRoot(t *testing.T) {
	parent := t.TempDir()
	live := filepath.Join(parent, "db")
	staging := filepath.Join(parent, "staging")
	db := New(live, DefaultLayout)

	_, err := db.StagePending(staging, "../../outside", hv)
	require.ErrorIs(t, err, ErrInvalidArtifactID)

	built, err := db.IsBuilt("../outside", hv)
	require.ErrorIs(t, err, ErrInvalidArtifactID)
	assert.False(t, built)

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing may be written next to the roots")
}

func TestIsBuilt(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(dir, DefaultLayout)
	require.NoError(t, err)

	built, err := db.IsBuilt("lib-a", hv)
	require.NoError(t, err)
	assert.False(t, built)

	path, err := db.Path("lib-a", hv)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(MarkerContent), 0o644))

	built, err = db.IsBuilt("lib-a", hv)
	require.NoError(t, err)
	assert.True(t, built)

	built, err = db.IsBuilt("lib-b", hv)
	require.NoError(t, err)
	assert.False(t, built)
}

func TestIsBuiltDirectoryIsNotMarker(t *testing.T) {
	dir := t.TempDir()
	db := New(dir, DefaultLayout)
	path, err := db.Path("lib-a", hv)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(path, 0o755))

	built, err := db.IsBuilt("lib-a", hv)
	require.NoError(t, err)
	assert.False(t, built)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"), DefaultLayout)
	assert.Error(t, err)
}

func TestStagePending(t *testing.T) {
	live := t.TempDir()
	staging := t.TempDir()
	db := New(live, DefaultLayout)

	staged, err := db.StagePending(staging, "lib-a", hv)
	require.NoError(t, err)
	assert.True(t, staged)

	data, err := os.ReadFile(filepath.Join(staging, "lib-a-X.Q", hv))
	require.NoError(t, err)
	assert.Equal(t, MarkerContent, string(data))

	staged, err = db.StagePending(staging, "lib-a", hv)
	require.NoError(t, err)
	assert.False(t, staged, "second stage reports existing marker")

	entries, err := os.ReadDir(live)
	require.NoError(t, err)
	assert.Empty(t, entries, "live database must not be touched")
}

func TestStagePendingRefusesLiveDir(t *testing.T) {
	live := t.TempDir()
	db := New(live, DefaultLayout)

	_, err := db.StagePending(live, "lib-a", hv)
	assert.ErrorIs(t, err, ErrStagingIsLive)
}

func TestCleanStaging(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "target", "hashver-db-additions")
	require.NoError(t, CleanStaging(dir), "missing dir is created")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib-a-X.Q"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib-a-X.Q", hv), []byte("1"), 0o644))

	require.NoError(t, CleanStaging(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMerge(t *testing.T) {
	live := t.TempDir()
	staging := t.TempDir()
	db := New(live, DefaultLayout)

	_, err := db.StagePending(staging, "lib-a", hv)
	require.NoError(t, err)
	_, err = db.StagePending(staging, "lib-b", "AbC.DeF")
	require.NoError(t, err)

	// lib-b is already live with a different payload; it must survive.
	existing := filepath.Join(live, "lib-b-A.D", "AbC.DeF")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("keep"), 0o644))

	added, err := db.Merge(staging)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	built, err := db.IsBuilt("lib-a", hv)
	require.NoError(t, err)
	assert.True(t, built)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	added, err = db.Merge(staging)
	require.NoError(t, err)
	assert.Zero(t, added, "second merge adds nothing")
}

func TestMergeMissingStaging(t *testing.T) {
	db := New(t.TempDir(), DefaultLayout)
	added, err := db.Merge(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestMergeRefusesLiveDir(t *testing.T) {
	live := t.TempDir()
	_, err := New(live, DefaultLayout).Merge(live)
	assert.ErrorIs(t, err, ErrStagingIsLive)
}
