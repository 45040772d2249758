// Package config provides configuration management for hashver.
// It supports multi-layer configuration with precedence:
//  1. Built-in defaults (lowest priority)
//  2. Global user config (~/.config/hashver/config.toml)
//  3. Project config (.hashver/config.toml or hashver.toml)
//  4. Environment variables (HASHVER_* and the historical property names)
//  5. CLI flags (highest priority)
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Snapshot dependency modes.
const (
	SnapshotModeFail   = "fail"
	SnapshotModeIgnore = "ignore"
)

// Config is the main configuration struct for hashver.
type Config struct {
	// HashVer configures hashversion computation.
	HashVer HashVerConfig `toml:"hashver"`

	// Digest configures content hashing.
	Digest DigestConfig `toml:"digest"`

	// Ancestors configures how missing ancestor descriptors are handled.
	Ancestors AncestorsConfig `toml:"ancestors"`

	// Snapshots configures snapshot dependencies outside the project.
	Snapshots SnapshotsConfig `toml:"snapshots"`

	// Existence configures artifact existence probing.
	Existence ExistenceConfig `toml:"existence"`

	// DB configures the existence database.
	DB DBConfig `toml:"db"`

	// Output configures generated files.
	Output OutputConfig `toml:"output"`

	// Watch configures watch mode.
	Watch WatchConfig `toml:"watch"`

	// Telemetry configures metrics and tracing export.
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// HashVerConfig holds the hashversion engine settings.
type HashVerConfig struct {
	// IncludeGroupID emits groupId.artifactId.version keys.
	IncludeGroupID *bool `toml:"include_group_id"`

	// ExtraHashData seeds every digest.
	ExtraHashData string `toml:"extra_hash_data"`

	// DigestAlgorithm is one of sha1, sha256, xxhash64.
	DigestAlgorithm string `toml:"digest_algorithm"`

	// Jobs bounds the own-hash worker pool. Zero means one per CPU.
	Jobs int `toml:"jobs"`
}

// DigestConfig holds content hashing settings.
type DigestConfig struct {
	// InsecureSkipContent reads files without hashing them. Diagnostics only.
	InsecureSkipContent *bool `toml:"insecure_skip_content"`
}

// AncestorsConfig holds ancestor hashing settings.
type AncestorsConfig struct {
	// RelaxedHashing is a comma separated groupId:artifactId list of
	// ancestors that may be hashed by coordinates.
	RelaxedHashing string `toml:"relaxed_hashing"`

	// IgnoreErrors hashes every unavailable ancestor by coordinates.
	IgnoreErrors *bool `toml:"ignore_errors"`
}

// SnapshotsConfig holds snapshot dependency settings.
type SnapshotsConfig struct {
	// Mode is "fail" or "ignore".
	Mode string `toml:"mode"`
}

// ExistenceConfig holds artifact probing settings.
type ExistenceConfig struct {
	// Methods is a comma separated list of resolve, local, httpHead.
	Methods string `toml:"methods"`

	// LocalRepository defaults to ~/.m2/repository.
	LocalRepository string `toml:"local_repository"`

	Timeout           time.Duration `toml:"timeout"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
	Jobs              int           `toml:"jobs"`

	// Repositories are used for modules that declare none.
	Repositories []RepositoryConfig `toml:"repositories"`
}

// RepositoryConfig is a remote repository.
type RepositoryConfig struct {
	ID  string `toml:"id"`
	URL string `toml:"url"`
}

// DBConfig holds existence database settings.
type DBConfig struct {
	// Dir is the live database. Empty disables database lookups.
	Dir string `toml:"dir"`

	// StagingDir receives markers for modules about to be built.
	StagingDir string `toml:"staging_dir"`

	OwnChars       int `toml:"own_chars"`
	CompositeChars int `toml:"composite_chars"`
}

// OutputConfig holds generated file locations, relative to the project
// root unless absolute.
type OutputConfig struct {
	Dir            string `toml:"dir"`
	PropertiesFile string `toml:"properties_file"`
	JSONFile       string `toml:"json_file"`

	// MavenConfig also writes .mvn/maven.config when set.
	MavenConfig *bool `toml:"maven_config"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Debounce time.Duration `toml:"debounce"`

	// Ignore holds glob patterns, matched against slash separated paths
	// relative to the project root.
	Ignore []string `toml:"ignore"`
}

// TelemetryConfig holds export settings.
type TelemetryConfig struct {
	// MetricsFile receives Prometheus text metrics after each run.
	MetricsFile string `toml:"metrics_file"`

	// OTLPEndpoint is a host:port OTLP/gRPC collector. Empty disables tracing.
	OTLPEndpoint string `toml:"otlp_endpoint"`

	OTLPInsecure *bool `toml:"otlp_insecure"`
}

// NewConfig creates a new Config with built-in defaults.
func NewConfig() *Config {
	trueVal := true
	falseVal := false
	return &Config{
		HashVer: HashVerConfig{
			IncludeGroupID:  &falseVal,
			DigestAlgorithm: "sha1",
		},
		Digest: DigestConfig{
			InsecureSkipContent: &falseVal,
		},
		Ancestors: AncestorsConfig{
			IgnoreErrors: &falseVal,
		},
		Snapshots: SnapshotsConfig{
			Mode: SnapshotModeFail,
		},
		Existence: ExistenceConfig{
			Methods: "resolve",
			Timeout: 10 * time.Second,
			Jobs:    4,
		},
		DB: DBConfig{
			StagingDir:     "target/hashver-db-additions",
			OwnChars:       1,
			CompositeChars: 1,
		},
		Output: OutputConfig{
			Dir:            "target",
			PropertiesFile: "hashversions.properties",
			JSONFile:       "hashversions.json",
			MavenConfig:    &falseVal,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
			Ignore:   []string{"**/target/**", "target/**", "**/.git/**", ".git/**", ".hashver/**", "**/*.swp", "**/*~"},
		},
		Telemetry: TelemetryConfig{
			OTLPInsecure: &trueVal,
		},
	}
}

// AllowSnapshots reports whether snapshot dependencies are tolerated.
func (c *Config) AllowSnapshots() bool {
	return strings.EqualFold(c.Snapshots.Mode, SnapshotModeIgnore)
}

// Validate checks enumerated values and numeric ranges.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.HashVer.DigestAlgorithm) {
	case "", "sha1", "sha256", "xxhash64":
	default:
		errs = append(errs, fmt.Errorf("hashver.digest_algorithm: unknown algorithm %q", c.HashVer.DigestAlgorithm))
	}

	if !slices.Contains([]string{SnapshotModeFail, SnapshotModeIgnore}, strings.ToLower(c.Snapshots.Mode)) {
		errs = append(errs, fmt.Errorf("snapshots.mode: must be %q or %q, got %q", SnapshotModeFail, SnapshotModeIgnore, c.Snapshots.Mode))
	}

	for _, m := range splitAndTrim(c.Existence.Methods) {
		switch strings.ToLower(m) {
		case "resolve", "local", "httphead", "http-head":
		default:
			errs = append(errs, fmt.Errorf("existence.methods: unknown method %q", m))
		}
	}
	if c.Existence.Timeout < 0 {
		errs = append(errs, errors.New("existence.timeout: must not be negative"))
	}
	for i, r := range c.Existence.Repositories {
		if r.URL == "" {
			errs = append(errs, fmt.Errorf("existence.repositories[%d]: url is required", i))
		}
	}

	if c.DB.OwnChars < 1 || c.DB.CompositeChars < 1 {
		errs = append(errs, errors.New("db.own_chars and db.composite_chars must be at least 1"))
	}
	if c.HashVer.Jobs < 0 || c.Existence.Jobs < 0 {
		errs = append(errs, errors.New("jobs must not be negative"))
	}

	return errors.Join(errs...)
}

// Merge merges another config into this one (other takes precedence).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Merge hashver config
	if other.HashVer.IncludeGroupID != nil {
		c.HashVer.IncludeGroupID = other.HashVer.IncludeGroupID
	}
	if other.HashVer.ExtraHashData != "" {
		c.HashVer.ExtraHashData = other.HashVer.ExtraHashData
	}
	if other.HashVer.DigestAlgorithm != "" {
		c.HashVer.DigestAlgorithm = other.HashVer.DigestAlgorithm
	}
	if other.HashVer.Jobs != 0 {
		c.HashVer.Jobs = other.HashVer.Jobs
	}

	if other.Digest.InsecureSkipContent != nil {
		c.Digest.InsecureSkipContent = other.Digest.InsecureSkipContent
	}

	// Merge ancestors config
	if other.Ancestors.RelaxedHashing != "" {
		c.Ancestors.RelaxedHashing = other.Ancestors.RelaxedHashing
	}
	if other.Ancestors.IgnoreErrors != nil {
		c.Ancestors.IgnoreErrors = other.Ancestors.IgnoreErrors
	}

	if other.Snapshots.Mode != "" {
		c.Snapshots.Mode = other.Snapshots.Mode
	}

	// Merge existence config
	if other.Existence.Methods != "" {
		c.Existence.Methods = other.Existence.Methods
	}
	if other.Existence.LocalRepository != "" {
		c.Existence.LocalRepository = other.Existence.LocalRepository
	}
	if other.Existence.Timeout != 0 {
		c.Existence.Timeout = other.Existence.Timeout
	}
	if other.Existence.RequestsPerSecond != 0 {
		c.Existence.RequestsPerSecond = other.Existence.RequestsPerSecond
	}
	if other.Existence.Jobs != 0 {
		c.Existence.Jobs = other.Existence.Jobs
	}
	if len(other.Existence.Repositories) > 0 {
		c.Existence.Repositories = other.Existence.Repositories
	}

	// Merge db config
	if other.DB.Dir != "" {
		c.DB.Dir = other.DB.Dir
	}
	if other.DB.StagingDir != "" {
		c.DB.StagingDir = other.DB.StagingDir
	}
	if other.DB.OwnChars != 0 {
		c.DB.OwnChars = other.DB.OwnChars
	}
	if other.DB.CompositeChars != 0 {
		c.DB.CompositeChars = other.DB.CompositeChars
	}

	// Merge output config
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if other.Output.PropertiesFile != "" {
		c.Output.PropertiesFile = other.Output.PropertiesFile
	}
	if other.Output.JSONFile != "" {
		c.Output.JSONFile = other.Output.JSONFile
	}
	if other.Output.MavenConfig != nil {
		c.Output.MavenConfig = other.Output.MavenConfig
	}

	// Merge watch config
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if len(other.Watch.Ignore) > 0 {
		c.Watch.Ignore = append(c.Watch.Ignore, other.Watch.Ignore...)
	}

	// Merge telemetry config
	if other.Telemetry.MetricsFile != "" {
		c.Telemetry.MetricsFile = other.Telemetry.MetricsFile
	}
	if other.Telemetry.OTLPEndpoint != "" {
		c.Telemetry.OTLPEndpoint = other.Telemetry.OTLPEndpoint
	}
	if other.Telemetry.OTLPInsecure != nil {
		c.Telemetry.OTLPInsecure = other.Telemetry.OTLPInsecure
	}
}

// IsTrue dereferences an optional boolean.
func IsTrue(b *bool) bool {
	return b != nil && *b
}
