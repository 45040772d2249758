package hashver

import (
	"errors"
	"fmt"

	"github.com/albertocavalcante/hashver/pkg/maven"
)

var (
	// ErrAncestorNotFound is matched by every *AncestorError.
	ErrAncestorNotFound = errors.New("ancestor descriptor not found")

	// ErrSnapshotDependency is matched by every *SnapshotDependencyError.
	ErrSnapshotDependency = errors.New("snapshot dependency")

	// ErrInternal reports a broken engine invariant.
	ErrInternal = errors.New("internal error")
)

// Configuration knobs named in remediation messages.
const (
	knobRelaxedHashing = "ancestors.relaxed_hashing (HASHVER_ANCESTOR_POMS_FOR_RELAXED_HASHING)"
	knobIgnoreErrors   = "ancestors.ignore_errors (HASHVER_ANCESTOR_POMS_IGNORE_ERRORS)"
	knobSnapshotMode   = `snapshots.mode = "ignore" (HASHVER_SNAPSHOT_DEPENDENCY_MODE=ignore)`
)

// IOError is a failure to read a file that contributes to a hash.
type IOError struct {
	Module string
	Path   string
	Err    error
}

func (e *IOError) Error() string {
	if e.Module == "" {
		return fmt.Sprintf("failed to hash %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to hash %s of module %s: %v", e.Path, e.Module, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// AncestorError reports an ancestor whose descriptor is neither present
// locally nor resolved.
type AncestorError struct {
	Module   maven.Coordinates
	Ancestor maven.Coordinates
}

func (e *AncestorError) Error() string {
	return fmt.Sprintf(
		"module %s: descriptor of ancestor %s is not available; list %s in %s to hash it by coordinates, or set %s",
		e.Module.Key(), e.Ancestor.Key(), e.Ancestor.GroupArtifact(), knobRelaxedHashing, knobIgnoreErrors)
}

func (e *AncestorError) Unwrap() error { return ErrAncestorNotFound }

// SnapshotDependencyError reports a snapshot dependency that is not part of
// the reactor. Its content is not captured by any hash.
type SnapshotDependencyError struct {
	Artifact maven.Coordinates
}

func (e *SnapshotDependencyError) Error() string {
	return fmt.Sprintf(
		"snapshot dependency %s is outside the reactor; its content cannot be hashed. Add it to the reactor, depend on a release, or set %s",
		e.Artifact, knobSnapshotMode)
}

func (e *SnapshotDependencyError) Unwrap() error { return ErrSnapshotDependency }
