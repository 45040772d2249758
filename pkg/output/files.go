package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// Default output locations, relative to the project root.
const (
	DefaultDir          = "target"
	PropertiesFile      = "hashversions.properties"
	JSONFile            = "hashversions.json"
	ProjectsToBuildFile = "hashver-projects-to-build"
	DBAdditionsDir      = "hashver-db-additions"
	MavenConfigFile     = ".mvn/maven.config"
)

// WriteFile writes content to path atomically, creating parent
// directories.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
