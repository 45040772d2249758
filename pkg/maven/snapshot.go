package maven

import (
	"regexp"
	"strings"
)

const (
	// SnapshotSuffix marks a moving, non-reproducible version.
	SnapshotSuffix = "SNAPSHOT"

	snapshotVersion = "-" + SnapshotSuffix
)

// timestampedSnapshot matches a deployed snapshot version such as
// 1.0-20240102.030405-7.
var timestampedSnapshot = regexp.MustCompile(`^(.*)-(\d{8}\.\d{6})-(\d+)$`)

// IsSnapshot reports whether version is a snapshot, either in its
// "-SNAPSHOT" form or in its timestamped deployed form.
func IsSnapshot(version string) bool {
	return strings.HasSuffix(BaseVersion(version), SnapshotSuffix)
}

// BaseVersion returns the version used for the repository directory.
// Timestamped snapshots collapse to "<base>-SNAPSHOT"; other versions are
// returned unchanged.
func BaseVersion(version string) string {
	if m := timestampedSnapshot.FindStringSubmatch(version); m != nil {
		return m[1] + snapshotVersion
	}
	return version
}
