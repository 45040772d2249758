// Package existdb is a sharded, file based record of which module
// hashversions have already been built.
//
// An entry is a marker file
//
//	<dir>/<artifactId>-<shardKey>/<hashVersion>
//
// whose presence is the only thing that matters. The shard key takes the
// first characters of the own hash and of the composite hash, so the number
// of entries per directory stays small. All paths are pure functions of the
// artifactId and hashversion strings.
//
// The live database is read only for an invocation. Newly built
// hashversions are staged into a separate directory with the same layout
// and merged by the operator after the build succeeded.
package existdb

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/albertocavalcante/hashver/internal/telemetry"
)

// MarkerContent is the payload of a marker file.
const MarkerContent = "1"

var (
	// ErrMalformedHashVersion is returned for a hashversion that has no
	// dot or is too short for the configured layout.
	ErrMalformedHashVersion = errors.New("malformed hashversion")

	// ErrInvalidArtifactID is returned for an artifactId that is empty or
	// would not stay a single directory name.
	ErrInvalidArtifactID = errors.New("invalid artifactId")

	// ErrStagingIsLive is returned when asked to stage into the live
	// database directory.
	ErrStagingIsLive = errors.New("staging directory is the live database")
)

// Layout controls shard directory names.
type Layout struct {
	// OwnChars is the number of own hash characters in the shard key.
	OwnChars int
	// CompositeChars is the number of composite hash characters in the
	// shard key.
	CompositeChars int
}

// DefaultLayout uses one character of each hash, e.g. "lib-a.X".
var DefaultLayout = Layout{OwnChars: 1, CompositeChars: 1}

// ShardKey returns the own hash prefix, the dot and the composite hash
// prefix of hashVersion.
func (l Layout) ShardKey(hashVersion string) (string, error) {
	dot := strings.IndexByte(hashVersion, '.')
	if dot < 0 {
		return "", fmt.Errorf("%w: %q has no dot", ErrMalformedHashVersion, hashVersion)
	}
	if dot < l.OwnChars || len(hashVersion)-dot-1 < l.CompositeChars {
		return "", fmt.Errorf("%w: %q is too short", ErrMalformedHashVersion, hashVersion)
	}
	return hashVersion[:l.OwnChars] + hashVersion[dot:dot+1+l.CompositeChars], nil
}

// RelPath returns the slash separated marker path relative to a database
// root.
func (l Layout) RelPath(artifactID, hashVersion string) (string, error) {
	if artifactID == "" || artifactID == "." || artifactID == ".." || strings.ContainsAny(artifactID, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidArtifactID, artifactID)
	}
	if strings.ContainsAny(hashVersion, `/\`) {
		return "", fmt.Errorf("%w: %q contains a path separator", ErrMalformedHashVersion, hashVersion)
	}
	shard, err := l.ShardKey(hashVersion)
	if err != nil {
		return "", err
	}
	return artifactID + "-" + shard + "/" + hashVersion, nil
}

// DB is a live existence database.
type DB struct {
	dir    string
	layout Layout
}

// New returns a database rooted at dir. The directory is not checked.
func New(dir string, layout Layout) *DB {
	return &DB{dir: dir, layout: layout}
}

// Open returns a database rooted at dir, which must be an existing
// directory.
func Open(dir string, layout Layout) (*DB, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open existence database: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("existence database %s is not a directory", dir)
	}
	return New(dir, layout), nil
}

// Dir returns the database root.
func (db *DB) Dir() string { return db.dir }

// Layout returns the shard layout.
func (db *DB) Layout() Layout { return db.layout }

// Path returns the marker path for a module hashversion.
func (db *DB) Path(artifactID, hashVersion string) (string, error) {
	return markerPath(db.dir, db.layout, artifactID, hashVersion)
}

// IsBuilt reports whether the marker for a module hashversion exists as a
// regular file.
func (db *DB) IsBuilt(artifactID, hashVersion string) (bool, error) {
	path, err := db.Path(artifactID, hashVersion)
	if err != nil {
		return false, err
	}

	ok, err := isFile(path)
	if err != nil {
		telemetry.DBLookups.WithLabelValues(telemetry.ResultError).Inc()
		return false, fmt.Errorf("failed to check marker: %w", err)
	}
	if ok {
		telemetry.DBLookups.WithLabelValues(telemetry.ResultHit).Inc()
	} else {
		telemetry.DBLookups.WithLabelValues(telemetry.ResultMiss).Inc()
	}
	return ok, nil
}

// StagePending writes the marker for a module hashversion under
// stagingDir, using the database layout. An already staged marker is left
// untouched and reported with staged == false.
func (db *DB) StagePending(stagingDir, artifactID, hashVersion string) (staged bool, err error) {
	if sameDir(stagingDir, db.dir) {
		return false, ErrStagingIsLive
	}

	path, err := markerPath(stagingDir, db.layout, artifactID, hashVersion)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create shard directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create marker: %w", err)
	}
	if _, err := f.WriteString(MarkerContent); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("failed to write marker: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("failed to write marker: %w", err)
	}
	return true, nil
}

// CleanStaging empties dir, creating it when missing.
func CleanStaging(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read staging directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to clean staging directory: %w", err)
		}
	}
	return nil
}

// Merge copies every staged marker into the live database and returns how
// many were added. Existing live markers are never overwritten. A missing
// staging directory merges nothing.
func (db *DB) Merge(stagingDir string) (added int, err error) {
	if sameDir(stagingDir, db.dir) {
		return 0, ErrStagingIsLive
	}
	if _, err := os.Stat(stagingDir); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	err = filepath.WalkDir(stagingDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(stagingDir, path)
		if err != nil {
			return err
		}
		ok, err := db.addMarker(filepath.Join(db.dir, rel))
		if ok {
			added++
		}
		return err
	})
	if err != nil {
		return added, fmt.Errorf("failed to merge staged markers: %w", err)
	}
	return added, nil
}

func (db *DB) addMarker(path string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := f.WriteString(MarkerContent); err != nil {
		_ = f.Close()
		return false, err
	}
	return true, f.Close()
}

func markerPath(root string, l Layout, artifactID, hashVersion string) (string, error) {
	rel, err := l.RelPath(artifactID, hashVersion)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, filepath.FromSlash(rel)), nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
