package hashver

import (
	"errors"
	"hash"
	"io"
	"log/slog"

	"github.com/albertocavalcante/hashver/internal/telemetry"
	"github.com/albertocavalcante/hashver/pkg/maven"
)

// AncestorOptions control how ancestors without a descriptor are handled.
type AncestorOptions struct {
	// RelaxedHashing is a comma separated list of groupId:artifactId
	// ancestors that may be hashed by their coordinates when their
	// descriptor is unavailable.
	RelaxedHashing string

	// IgnoreErrors hashes every unavailable ancestor by its coordinates.
	IgnoreErrors bool
}

// allowsFallback reports whether an unavailable ancestor may be hashed by
// its coordinates.
func (o AncestorOptions) allowsFallback(a maven.Coordinates) bool {
	return o.IgnoreErrors || CSVListMember(o.RelaxedHashing, a.GroupArtifact())
}

// AncestorHasher feeds a module's ancestor descriptors into a digest.
type AncestorHasher struct {
	opts        AncestorOptions
	skipContent bool
	logger      *slog.Logger
}

// NewAncestorHasher returns an AncestorHasher.
func NewAncestorHasher(opts AncestorOptions, skipContent bool, logger *slog.Logger) *AncestorHasher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AncestorHasher{opts: opts, skipContent: skipContent, logger: logger}
}

// Hash walks the ancestor chain of m from its direct parent to the root.
// Each ancestor contributes the raw bytes of its descriptor. An ancestor
// without a descriptor contributes "groupId:artifactId:version" when
// allowed by the options, and fails with *AncestorError otherwise.
func (a *AncestorHasher) Hash(m *maven.Module, digest hash.Hash) error {
	content := NewContentHasher(digest, a.skipContent, a.logger)

	for anc := m.Parent; anc != nil; anc = anc.Parent {
		if file := anc.Descriptor(); file != "" {
			if err := content.hashContent(file); err != nil {
				var ioErr *IOError
				if errors.As(err, &ioErr) {
					ioErr.Module = m.Key()
				}
				return err
			}
			continue
		}

		if !a.opts.allowsFallback(anc.Coordinates) {
			return &AncestorError{Module: m.Coordinates, Ancestor: anc.Coordinates}
		}

		a.logger.Warn("ancestor descriptor not available, hashing coordinates instead",
			"module", m.Key(),
			"ancestor", anc.Key())
		telemetry.AncestorFallbacks.Inc()
		_, _ = io.WriteString(digest, anc.Key())
	}
	return nil
}
