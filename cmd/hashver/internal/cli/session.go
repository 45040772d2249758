package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/hashver/internal/log"
	"github.com/albertocavalcante/hashver/internal/telemetry"
	"github.com/albertocavalcante/hashver/pkg/config"
	"github.com/albertocavalcante/hashver/pkg/existdb"
	"github.com/albertocavalcante/hashver/pkg/hashver"
	"github.com/albertocavalcante/hashver/pkg/maven"
	"github.com/albertocavalcante/hashver/pkg/probe"
	"github.com/albertocavalcante/hashver/pkg/reactor"
)

// hashFlags override hashing settings from configuration.
var hashFlags struct {
	includeGroupID bool
	extraHashData  string
	algorithm      string
	jobs           int
	allowSnapshots bool
}

// addHashFlags registers the hashing overrides on cmd.
func addHashFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&hashFlags.includeGroupID, "include-group-id", false,
		"Use groupId.artifactId.version property keys")
	cmd.Flags().StringVar(&hashFlags.extraHashData, "extra-hash-data", "",
		"Extra data mixed into every digest")
	cmd.Flags().StringVar(&hashFlags.algorithm, "algorithm", "",
		"Digest algorithm (sha1, sha256, xxhash64)")
	cmd.Flags().IntVar(&hashFlags.jobs, "jobs", 0,
		"Parallel own-hash workers (0 = one per CPU)")
	cmd.Flags().BoolVar(&hashFlags.allowSnapshots, "allow-snapshots", false,
		"Tolerate snapshot dependencies outside the project")
}

// applyHashFlags copies explicitly set hashing flags into cfg.
func applyHashFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("include-group-id") {
		v := hashFlags.includeGroupID
		cfg.HashVer.IncludeGroupID = &v
	}
	if flags.Changed("extra-hash-data") {
		cfg.HashVer.ExtraHashData = hashFlags.extraHashData
	}
	if flags.Changed("algorithm") {
		cfg.HashVer.DigestAlgorithm = hashFlags.algorithm
	}
	if flags.Changed("jobs") {
		cfg.HashVer.Jobs = hashFlags.jobs
	}
	if flags.Changed("allow-snapshots") && hashFlags.allowSnapshots {
		cfg.Snapshots.Mode = config.SnapshotModeIgnore
	}
}

// session is the state shared by the steps of one command.
type session struct {
	root      string
	cfg       *config.Config
	graphPath string
	graph     *reactor.Graph
	logger    *slog.Logger
}

// current is the session of the running command, if any.
var current *session

// openSession resolves the project directory, loads configuration and the
// project graph, and enables tracing when configured.
func openSession(cmd *cobra.Command) (*session, error) {
	s, err := openConfigSession(cmd)
	if err != nil {
		return nil, err
	}

	s.graphPath = globalFlags.graph
	if s.graphPath == "" {
		s.graphPath, err = reactor.Find(s.root)
		if err != nil {
			return nil, err
		}
	}
	if err := s.reloadGraph(); err != nil {
		return nil, err
	}
	return s, nil
}

// openConfigSession is openSession without the project graph, for
// commands that only touch the database.
func openConfigSession(cmd *cobra.Command) (*session, error) {
	root, err := projectRoot()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadFrom(root)
	if err != nil {
		return nil, err
	}
	applyHashFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &session{
		root:   root,
		cfg:    cfg,
		logger: log.Component("cli"),
	}
	current = s

	if err := s.setupTracing(cmd.Context()); err != nil {
		return nil, err
	}
	return s, nil
}

// reloadGraph reads the project graph file again.
func (s *session) reloadGraph() error {
	graph, err := reactor.Load(s.graphPath)
	if err != nil {
		return err
	}
	s.graph = graph
	s.logger.Debug("project graph loaded", "graph", s.graphPath, "modules", len(graph.Modules))
	return nil
}

func projectRoot() (string, error) {
	dir := globalFlags.project
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = config.FindProjectRoot(wd)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid project directory %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("invalid project directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project path must be a directory: %s", dir)
	}
	return abs, nil
}

func (s *session) setupTracing(ctx context.Context) error {
	if shutdownTracing != nil {
		return nil
	}
	endpoint := s.cfg.Telemetry.OTLPEndpoint
	if globalFlags.otlpEndpoint != "" {
		endpoint = globalFlags.otlpEndpoint
	}
	shutdown, err := telemetry.SetupTracing(ctx, endpoint, config.IsTrue(s.cfg.Telemetry.OTLPInsecure))
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	shutdownTracing = shutdown
	return nil
}

// path resolves p against the project root unless it is absolute.
func (s *session) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.root, p)
}

// outputPath returns the location of a generated file.
func (s *session) outputPath(name string) string {
	return s.path(filepath.Join(s.cfg.Output.Dir, name))
}

func (s *session) engineOptions() hashver.Options {
	return hashver.Options{
		IncludeGroupID:      config.IsTrue(s.cfg.HashVer.IncludeGroupID),
		ExtraHashData:       s.cfg.HashVer.ExtraHashData,
		Algorithm:           hashver.Algorithm(s.cfg.HashVer.DigestAlgorithm),
		InsecureSkipContent: config.IsTrue(s.cfg.Digest.InsecureSkipContent),
		Ancestors: hashver.AncestorOptions{
			RelaxedHashing: s.cfg.Ancestors.RelaxedHashing,
			IgnoreErrors:   config.IsTrue(s.cfg.Ancestors.IgnoreErrors),
		},
		AllowSnapshots: s.cfg.AllowSnapshots(),
		Jobs:           s.cfg.HashVer.Jobs,
		Logger:         log.Component("hashver"),
	}
}

// compute hashes every module of the project graph.
func (s *session) compute(ctx context.Context) (*hashver.Result, error) {
	engine, err := hashver.NewEngine(s.engineOptions())
	if err != nil {
		return nil, err
	}
	return engine.Compute(ctx, s.graph.Modules, s.graph)
}

// selectModules filters the graph modules by groupId:artifactId globs.
func (s *session) selectModules(patterns []string) ([]*maven.Module, error) {
	return s.graph.Select(patterns)
}

func (s *session) layout() existdb.Layout {
	return existdb.Layout{OwnChars: s.cfg.DB.OwnChars, CompositeChars: s.cfg.DB.CompositeChars}
}

// existDB opens the configured live database.
func (s *session) existDB() (*existdb.DB, error) {
	if s.cfg.DB.Dir == "" {
		return nil, errors.New("no existence database configured (set db.dir or HASHVER_DB_DIR)")
	}
	return existdb.Open(s.path(s.cfg.DB.Dir), s.layout())
}

func (s *session) stagingDir() string {
	return s.path(s.cfg.DB.StagingDir)
}

// prober builds a prober from the existence settings.
func (s *session) prober() (*probe.Prober, error) {
	methods, err := probe.ParseMethods(s.cfg.Existence.Methods)
	if err != nil {
		return nil, err
	}

	repos := make([]maven.Repository, 0, len(s.cfg.Existence.Repositories))
	for _, r := range s.cfg.Existence.Repositories {
		repos = append(repos, maven.Repository{ID: r.ID, URL: r.URL})
	}

	localRepo := s.cfg.Existence.LocalRepository
	if localRepo != "" {
		localRepo = s.path(localRepo)
	}

	strategies, err := probe.NewStrategies(methods, probe.Config{
		LocalRepository:   localRepo,
		Timeout:           s.cfg.Existence.Timeout,
		RequestsPerSecond: s.cfg.Existence.RequestsPerSecond,
		Repositories:      repos,
	})
	if err != nil {
		return nil, err
	}

	return probe.New(strategies,
		probe.WithLogger(log.Component("probe")),
		probe.WithJobs(s.cfg.Existence.Jobs),
	), nil
}
