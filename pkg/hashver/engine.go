// Package hashver computes hashversions: deterministic, content derived
// version identifiers for the modules of a multi-module Maven project.
//
// A hashversion has two parts joined by a dot:
//
//	<ownHash>.<compositeHash>
//
// The own hash covers the module descriptor and its src tree. The composite
// hash covers the ancestor descriptors and the module's resolved dependency
// tree, in which every reactor module appears with its own hash instead of
// its version. Two builds with identical inputs produce identical
// hashversions, and a change to any input changes the hashversion of the
// module and of every module depending on it.
package hashver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/hashver/internal/telemetry"
	"github.com/albertocavalcante/hashver/pkg/maven"
)

// Options configure an Engine. The zero value is usable.
type Options struct {
	// IncludeGroupID selects groupId.artifactId.version output keys instead
	// of artifactId.version.
	IncludeGroupID bool

	// ExtraHashData seeds every digest, so changing it changes every
	// hashversion.
	ExtraHashData string

	// Algorithm is the digest algorithm. Empty means DefaultAlgorithm.
	Algorithm Algorithm

	// InsecureSkipContent reads files without hashing their bytes. Only
	// useful to measure I/O cost; the resulting hashversions are worthless.
	InsecureSkipContent bool

	Ancestors AncestorOptions

	// AllowSnapshots tolerates snapshot dependencies outside the reactor.
	AllowSnapshots bool

	// Jobs bounds the own-hash worker pool. Zero or less means GOMAXPROCS.
	Jobs int

	// Formatter overrides the dependency node formatter.
	Formatter NodeFormatter

	Logger *slog.Logger
}

// DependencyGraphSource supplies resolved dependency trees. The root of the
// returned tree is the module itself.
type DependencyGraphSource interface {
	DependencyGraph(ctx context.Context, m *maven.Module) (*maven.DependencyNode, error)
}

// ModuleVersion is the computed state of one module.
type ModuleVersion struct {
	Module      *maven.Module
	Key         string
	OwnHash     string
	HashVersion string
}

// Result is the outcome of Engine.Compute.
type Result struct {
	// Versions maps output keys to hashversions.
	Versions map[string]string

	// Modules holds one entry per input module, in input order.
	Modules []ModuleVersion
}

// Engine computes own hashes and hashversions.
type Engine struct {
	opts      Options
	logger    *slog.Logger
	ancestors *AncestorHasher
	format    NodeFormatter
}

// NewEngine validates opts and returns an Engine.
func NewEngine(opts Options) (*Engine, error) {
	alg, err := ParseAlgorithm(string(opts.Algorithm))
	if err != nil {
		return nil, err
	}
	opts.Algorithm = alg

	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	format := opts.Formatter
	if format == nil {
		format = CanonicalFormatter(opts.AllowSnapshots)
	}

	if opts.InsecureSkipContent {
		logger.Warn("file content is not hashed; hashversions do not reflect sources")
	}

	return &Engine{
		opts:      opts,
		logger:    logger,
		ancestors: NewAncestorHasher(opts.Ancestors, opts.InsecureSkipContent, logger),
		format:    format,
	}, nil
}

// VersionKey returns the output key of m: artifactId.version, or
// groupId.artifactId.version with includeGroupID.
func VersionKey(m *maven.Module, includeGroupID bool) string {
	if includeGroupID {
		return m.GroupID + "." + m.ArtifactID + ".version"
	}
	return m.ArtifactID + ".version"
}

// OwnHash hashes the module descriptor (as "/pom.xml") and, when present,
// the module's src tree (as "/src/...").
func (e *Engine) OwnHash(m *maven.Module) (string, error) {
	start := time.Now()
	digest := newDigest(e.opts.Algorithm, e.opts.ExtraHashData)
	content := NewContentHasher(digest, e.opts.InsecureSkipContent, e.logger)

	if err := content.HashFile(m.Descriptor(), ""); err != nil {
		return "", withModule(err, m)
	}

	src := m.SourceDir()
	ok, err := isDir(src)
	if err != nil {
		return "", &IOError{Module: m.Key(), Path: src, Err: err}
	}
	if ok {
		if err := content.HashDirectory(src, ""); err != nil {
			return "", withModule(err, m)
		}
	}

	telemetry.ModulesHashed.Inc()
	telemetry.OwnHashDuration.Observe(time.Since(start).Seconds())
	return Encode(digest.Sum(nil)), nil
}

// OwnHashes computes the own hash of every module on up to Options.Jobs
// workers. The returned map is complete when OwnHashes returns.
func (e *Engine) OwnHashes(ctx context.Context, modules []*maven.Module) (OwnHashes, error) {
	hashes := make([]string, len(modules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Jobs)
	for i, m := range modules {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			h, err := e.OwnHash(m)
			if err != nil {
				return fmt.Errorf("error calculating own hash of module %s: %w", m.Key(), err)
			}
			hashes[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	own := make(OwnHashes, len(modules))
	for i, m := range modules {
		own[m.Key()] = hashes[i]
	}
	return own, nil
}

// HashVersion computes the hashversion of m from its dependency tree and
// the own hashes of all reactor modules.
func (e *Engine) HashVersion(m *maven.Module, tree *maven.DependencyNode, own OwnHashes) (string, error) {
	ownHash, ok := own[m.Key()]
	if !ok {
		return "", fmt.Errorf("%w: no own hash for module %s", ErrInternal, m.Key())
	}
	if tree == nil {
		return "", fmt.Errorf("%w: no dependency tree for module %s", ErrInternal, m.Key())
	}
	if tree.Key() != m.Key() {
		return "", fmt.Errorf("%w: dependency tree of module %s is rooted at %s", ErrInternal, m.Key(), tree.Key())
	}

	digest := newDigest(e.opts.Algorithm, e.opts.ExtraHashData)
	if err := e.ancestors.Hash(m, digest); err != nil {
		return "", err
	}

	rendered, err := RenderTree(tree, own, e.format)
	if err != nil {
		return "", fmt.Errorf("failed to render dependency tree of module %s: %w", m.Key(), err)
	}
	e.logger.Debug("dependency tree", "module", m.Key(), "tree", rendered)
	_, _ = digest.Write([]byte(rendered))

	return ownHash + "." + Encode(digest.Sum(nil)), nil
}

// Compute runs both passes over modules: own hashes of all modules first,
// then the hashversion of each module in input order.
func (e *Engine) Compute(ctx context.Context, modules []*maven.Module, graphs DependencyGraphSource) (res *Result, err error) {
	ctx, span := telemetry.Tracer.Start(ctx, "hashver.Compute",
		trace.WithAttributes(attribute.Int("modules", len(modules))))
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	own, err := e.OwnHashes(ctx, modules)
	if err != nil {
		return nil, err
	}
	telemetry.ComputeDuration.WithLabelValues("own").Observe(time.Since(start).Seconds())

	start = time.Now()
	res = &Result{
		Versions: make(map[string]string, len(modules)),
		Modules:  make([]ModuleVersion, 0, len(modules)),
	}
	owners := make(map[string]string, len(modules))
	for _, m := range modules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key := VersionKey(m, e.opts.IncludeGroupID)
		if prev, dup := owners[key]; dup {
			return nil, fmt.Errorf("modules %s and %s both map to key %q; enable hashver.include_group_id", prev, m.Key(), key)
		}
		owners[key] = m.Key()

		tree, err := graphs.DependencyGraph(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("failed to get dependency graph of module %s: %w", m.Key(), err)
		}

		hv, err := e.HashVersion(m, tree, own)
		if err != nil {
			return nil, err
		}

		e.logger.Debug("hashversion", "module", m.Key(), "key", key, "hashversion", hv)
		res.Versions[key] = hv
		res.Modules = append(res.Modules, ModuleVersion{
			Module:      m,
			Key:         key,
			OwnHash:     own[m.Key()],
			HashVersion: hv,
		})
	}
	telemetry.ComputeDuration.WithLabelValues("hashversion").Observe(time.Since(start).Seconds())

	e.logger.Info("computed hashversions", "modules", len(res.Modules))
	return res, nil
}

// withModule attaches the module key to an *IOError.
func withModule(err error, m *maven.Module) error {
	var ioErr *IOError
	if errors.As(err, &ioErr) && ioErr.Module == "" {
		ioErr.Module = m.Key()
	}
	return err
}
