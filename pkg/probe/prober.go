// Package probe decides whether a module's artifact already exists in a
// Maven repository, so that its build can be skipped.
//
// A Prober runs an ordered list of strategies and stops at the first one
// that finds the artifact. Strategy errors are logged and count as "not
// found": a failed probe can only cause a redundant build.
package probe

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/hashver/internal/telemetry"
	"github.com/albertocavalcante/hashver/pkg/maven"
)

// Strategy checks for the existence of a module's artifact.
type Strategy interface {
	Method() Method
	Probe(ctx context.Context, m *maven.Module) (bool, error)
}

// Prober runs strategies in order.
type Prober struct {
	strategies []Strategy
	logger     *slog.Logger
	jobs       int
}

// Option configures a Prober.
type Option func(*Prober)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = l
	}
}

// WithJobs bounds the number of modules probed concurrently by Filter.
func WithJobs(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.jobs = n
		}
	}
}

// New returns a Prober running strategies in the given order.
func New(strategies []Strategy, opts ...Option) *Prober {
	p := &Prober{
		strategies: strategies,
		logger:     slog.New(slog.DiscardHandler),
		jobs:       1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Exists reports whether any strategy finds the artifact of m.
func (p *Prober) Exists(ctx context.Context, m *maven.Module) bool {
	ctx, span := telemetry.Tracer.Start(ctx, "probe.Exists",
		trace.WithAttributes(attribute.String("module", m.Key())))
	defer span.End()

	for _, s := range p.strategies {
		if ctx.Err() != nil {
			return false
		}
		start := time.Now()
		found, err := s.Probe(ctx, m)
		telemetry.ProbeDuration.WithLabelValues(string(s.Method())).Observe(time.Since(start).Seconds())

		switch {
		case err != nil:
			telemetry.ProbeRequests.WithLabelValues(string(s.Method()), telemetry.ResultError).Inc()
			p.logger.Warn("existence check failed",
				"module", m.Key(),
				"method", s.Method(),
				"error", err)
		case found:
			telemetry.ProbeRequests.WithLabelValues(string(s.Method()), telemetry.ResultHit).Inc()
			p.logger.Debug("artifact exists", "module", m.Key(), "method", s.Method())
			span.SetAttributes(attribute.String("method", string(s.Method())))
			return true
		default:
			telemetry.ProbeRequests.WithLabelValues(string(s.Method()), telemetry.ResultMiss).Inc()
		}
	}
	return false
}

// NeedsBuild reports whether m must be built: pom modules always, other
// modules when no strategy finds their artifact.
func (p *Prober) NeedsBuild(ctx context.Context, m *maven.Module) bool {
	if m.IsPOM() {
		return true
	}
	return !p.Exists(ctx, m)
}

// Filter returns the modules that still need building, in input order.
func (p *Prober) Filter(ctx context.Context, modules []*maven.Module) ([]*maven.Module, error) {
	keep := make([]bool, len(modules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.jobs)
	for i, m := range modules {
		g.Go(func() error {
			keep[i] = p.NeedsBuild(gctx, m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []*maven.Module
	for i, m := range modules {
		if keep[i] {
			result = append(result, m)
		} else {
			p.logger.Info("skipping module, artifact already exists", "module", m.Key())
		}
	}
	return result, nil
}
