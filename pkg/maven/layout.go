package maven

import "strings"

// extensions maps artifact types to file extensions, following the
// artifact handlers shipped with Maven core. Unknown types use the type
// itself as extension.
var extensions = map[string]string{
	"pom":          "pom",
	"jar":          "jar",
	"test-jar":     "jar",
	"maven-plugin": "jar",
	"ejb":          "jar",
	"ejb-client":   "jar",
	"javadoc":      "jar",
	"java-source":  "jar",
	"bundle":       "jar",
	"war":          "war",
	"ear":          "ear",
	"rar":          "rar",
	"par":          "par",
}

// Extension returns the file extension used for an artifact type.
func Extension(artifactType string) string {
	if ext, ok := extensions[artifactType]; ok {
		return ext
	}
	return artifactType
}

// RepositoryPath returns the path of an artifact relative to a repository
// root, in the default (Maven 2) repository layout:
//
//	g/r/o/u/p/artifactId/baseVersion/artifactId-version[-classifier].ext
//
// The path always uses forward slashes.
func RepositoryPath(c Coordinates) string {
	var b strings.Builder
	b.WriteString(strings.ReplaceAll(c.GroupID, ".", "/"))
	b.WriteByte('/')
	b.WriteString(c.ArtifactID)
	b.WriteByte('/')
	b.WriteString(BaseVersion(c.Version))
	b.WriteByte('/')
	b.WriteString(c.ArtifactID)
	b.WriteByte('-')
	b.WriteString(c.Version)
	if c.Classifier != "" {
		b.WriteByte('-')
		b.WriteString(c.Classifier)
	}
	if ext := Extension(c.ArtifactType()); ext != "" {
		b.WriteByte('.')
		b.WriteString(ext)
	}
	return b.String()
}
