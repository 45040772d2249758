package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the name of the project-level config file.
const ConfigFileName = "hashver.toml"

// ConfigDirName is the name of the project-level config directory.
const ConfigDirName = ".hashver"

// GlobalConfigDir is the name of the global config directory inside user's config.
const GlobalConfigDir = "hashver"

// Load loads configuration from all layers in order of precedence:
//  1. Built-in defaults
//  2. Global user config (~/.config/hashver/config.toml)
//  3. Project config (.hashver/config.toml or hashver.toml)
//  4. Environment variables
//
// CLI flags are applied separately after Load() returns.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return LoadFrom(wd)
}

// LoadFrom loads configuration starting from a specific directory.
func LoadFrom(dir string) (*Config, error) {
	cfg := NewConfig()

	// Layer 2: Global user config
	if path := GetGlobalConfigPath(); path != "" {
		globalCfg, err := loadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Merge(globalCfg)
	}

	// Layer 3: Project config from specified directory
	projectCfg, err := loadProjectConfigFrom(dir)
	if err != nil {
		return nil, err
	}
	cfg.Merge(projectCfg)

	// Layer 4: Environment variables
	if err := applyEnvironmentVariables(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadProjectConfigFrom looks for project configuration starting from the given directory.
func loadProjectConfigFrom(dir string) (*Config, error) {
	current := dir
	for {
		for _, path := range GetProjectConfigPaths(current) {
			cfg, err := loadConfigFile(path)
			if err != nil || cfg != nil {
				return cfg, err
			}
		}

		// Stop at filesystem root or project root
		if isWorkspaceRoot(current) {
			break
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return nil, nil
}

// FindProjectRoot returns the nearest directory at or above dir holding a
// workspace marker, or dir itself when none is found.
func FindProjectRoot(dir string) string {
	current := dir
	for {
		if isWorkspaceRoot(current) {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

// isWorkspaceRoot checks if the directory is a project root (has .git, .mvn or mvnw).
func isWorkspaceRoot(dir string) bool {
	markers := []string{".git", ".mvn", "mvnw", "mvnw.cmd"}
	for _, marker := range markers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// loadConfigFile loads a configuration from a TOML file. A missing file
// yields (nil, nil).
func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return &cfg, nil
}

// legacyEnv maps the property names understood by the Maven plugin to
// their HASHVER_* equivalent. HASHVER_* wins when both are set.
var legacyEnv = map[string]string{
	"HASHVER_INCLUDE_GROUP_ID":                  "includeGroupId",
	"HASHVER_EXTRA_HASH_DATA":                   "extraHashData",
	"HASHVER_DIGEST_SKIP":                       "hashverDigestSkip",
	"HASHVER_ANCESTOR_POMS_FOR_RELAXED_HASHING": "hashverAncestorPomsForRelaxedHashing",
	"HASHVER_ANCESTOR_POMS_IGNORE_ERRORS":       "hashverAncestorPomsIgnoreErrors",
	"HASHVER_SNAPSHOT_DEPENDENCY_MODE":          "hashVerSnapshotDependencyMode",
	"HASHVER_EXISTENCE_CHECK_METHODS":           "existenceCheckMethods",
	"HASHVER_DB_DIR":                            "dbDir",
}

// presenceEnv lists legacy switches that the Maven plugin turns on whenever
// the property is set.
var presenceEnv = map[string]bool{
	"hashverDigestSkip":               true,
	"hashverAncestorPomsIgnoreErrors": true,
}

// lookupEnv returns the HASHVER_* variable, falling back to its legacy
// name, together with the name that supplied the value.
func lookupEnv(key string) (value, name string) {
	if v := os.Getenv(key); v != "" {
		return v, key
	}
	if legacy, ok := legacyEnv[key]; ok {
		return os.Getenv(legacy), legacy
	}
	return "", key
}

// getenv returns the HASHVER_* variable, falling back to its legacy name.
func getenv(key string) string {
	v, _ := lookupEnv(key)
	return v
}

// applyEnvironmentVariables applies HASHVER_* environment variables to the config.
func applyEnvironmentVariables(cfg *Config) error {
	var errs []error
	errs = append(errs, applyBoolEnv("HASHVER_INCLUDE_GROUP_ID", &cfg.HashVer.IncludeGroupID))
	if v := getenv("HASHVER_EXTRA_HASH_DATA"); v != "" {
		cfg.HashVer.ExtraHashData = v
	}
	if v := getenv("HASHVER_DIGEST_ALGORITHM"); v != "" {
		cfg.HashVer.DigestAlgorithm = v
	}
	errs = append(errs, applyIntEnv("HASHVER_JOBS", &cfg.HashVer.Jobs))

	errs = append(errs, applyBoolEnv("HASHVER_DIGEST_SKIP", &cfg.Digest.InsecureSkipContent))

	if v := getenv("HASHVER_ANCESTOR_POMS_FOR_RELAXED_HASHING"); v != "" {
		cfg.Ancestors.RelaxedHashing = v
	}
	errs = append(errs, applyBoolEnv("HASHVER_ANCESTOR_POMS_IGNORE_ERRORS", &cfg.Ancestors.IgnoreErrors))

	if v := getenv("HASHVER_SNAPSHOT_DEPENDENCY_MODE"); v != "" {
		cfg.Snapshots.Mode = v
	}

	if v := getenv("HASHVER_EXISTENCE_CHECK_METHODS"); v != "" {
		cfg.Existence.Methods = v
	}
	if v := getenv("HASHVER_LOCAL_REPOSITORY"); v != "" {
		cfg.Existence.LocalRepository = v
	}
	if v := getenv("HASHVER_EXISTENCE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid duration %q in HASHVER_EXISTENCE_TIMEOUT", v))
		} else {
			cfg.Existence.Timeout = d
		}
	}

	if v := getenv("HASHVER_DB_DIR"); v != "" {
		cfg.DB.Dir = v
	}
	if v := getenv("HASHVER_DB_STAGING_DIR"); v != "" {
		cfg.DB.StagingDir = v
	}

	if v := getenv("HASHVER_METRICS_FILE"); v != "" {
		cfg.Telemetry.MetricsFile = v
	}
	if v := getenv("HASHVER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	return errors.Join(errs...)
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// applyBoolEnv applies a boolean environment variable to a pointer.
// Legacy presence switches are on for any value but an explicit false.
func applyBoolEnv(envVar string, target **bool) error {
	v, name := lookupEnv(envVar)
	if v == "" {
		return nil
	}
	b, ok := parseBool(v)
	if !ok {
		if !presenceEnv[name] {
			return fmt.Errorf("invalid boolean %q in %s", v, name)
		}
		b = true
	}
	*target = &b
	return nil
}

func parseBool(v string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	}
	return false, false
}

func applyIntEnv(envVar string, target *int) error {
	v, name := lookupEnv(envVar)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid integer %q in %s", v, name)
	}
	*target = n
	return nil
}

// GetGlobalConfigPath returns the path to the global config file.
func GetGlobalConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, GlobalConfigDir, "config.toml")
}

// GetProjectConfigPaths returns potential project config paths for a given directory.
func GetProjectConfigPaths(dir string) []string {
	return []string{
		filepath.Join(dir, ConfigDirName, "config.toml"),
		filepath.Join(dir, ConfigFileName),
	}
}
