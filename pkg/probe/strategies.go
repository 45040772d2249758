package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/albertocavalcante/hashver/pkg/maven"
)

// DefaultTimeout bounds a single network request.
const DefaultTimeout = 10 * time.Second

// Config holds the settings shared by all strategies.
type Config struct {
	// LocalRepository is the local repository root. Empty means
	// ~/.m2/repository.
	LocalRepository string

	// Timeout bounds each network request. Zero means DefaultTimeout.
	Timeout time.Duration

	// RequestsPerSecond limits requests per remote repository. Zero or
	// less means unlimited.
	RequestsPerSecond float64

	// Repositories are used for modules without their own repositories.
	Repositories []maven.Repository

	// Client is the HTTP client. Nil means a new client.
	Client *http.Client
}

// DefaultLocalRepository returns ~/.m2/repository.
func DefaultLocalRepository() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate local repository: %w", err)
	}
	return filepath.Join(home, ".m2", "repository"), nil
}

// NewStrategies builds one strategy per method, in order.
func NewStrategies(methods []Method, cfg Config) ([]Strategy, error) {
	if cfg.LocalRepository == "" {
		dir, err := DefaultLocalRepository()
		if err != nil {
			return nil, err
		}
		cfg.LocalRepository = dir
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}

	r := &remote{
		client:       cfg.Client,
		timeout:      cfg.Timeout,
		rps:          cfg.RequestsPerSecond,
		repositories: cfg.Repositories,
		limiters:     make(map[string]*rate.Limiter),
	}

	strategies := make([]Strategy, 0, len(methods))
	for _, m := range methods {
		switch m {
		case MethodLocal:
			strategies = append(strategies, &localStrategy{repo: cfg.LocalRepository})
		case MethodHTTPHead:
			strategies = append(strategies, &headStrategy{remote: r})
		case MethodResolve:
			strategies = append(strategies, &resolveStrategy{remote: r, local: localStrategy{repo: cfg.LocalRepository}})
		default:
			return nil, fmt.Errorf("unknown existence check method %q", m)
		}
	}
	return strategies, nil
}

// localStrategy looks for the artifact file in the local repository.
type localStrategy struct {
	repo string
}

func (s *localStrategy) Method() Method { return MethodLocal }

func (s *localStrategy) Probe(_ context.Context, m *maven.Module) (bool, error) {
	path := filepath.Join(s.repo, filepath.FromSlash(maven.RepositoryPath(m.Coordinates)))
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// headStrategy sends HEAD requests to each remote repository.
type headStrategy struct {
	remote *remote
}

func (s *headStrategy) Method() Method { return MethodHTTPHead }

func (s *headStrategy) Probe(ctx context.Context, m *maven.Module) (bool, error) {
	path := maven.RepositoryPath(m.Coordinates)
	var errs []error
	for _, repo := range s.remote.repositoriesFor(m) {
		found, err := s.remote.head(ctx, repo, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if found {
			return true, nil
		}
	}
	return false, errors.Join(errs...)
}

// resolveStrategy finds the artifact in the local repository, or downloads
// it from a remote repository and installs it there.
type resolveStrategy struct {
	remote *remote
	local  localStrategy
}

func (s *resolveStrategy) Method() Method { return MethodResolve }

func (s *resolveStrategy) Probe(ctx context.Context, m *maven.Module) (bool, error) {
	if found, err := s.local.Probe(ctx, m); err != nil || found {
		return found, err
	}

	path := maven.RepositoryPath(m.Coordinates)
	dest := filepath.Join(s.local.repo, filepath.FromSlash(path))
	var errs []error
	for _, repo := range s.remote.repositoriesFor(m) {
		found, err := s.remote.download(ctx, repo, path, dest)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if found {
			return true, nil
		}
	}
	return false, errors.Join(errs...)
}

// remote performs rate limited requests against remote repositories.
type remote struct {
	client       *http.Client
	timeout      time.Duration
	rps          float64
	repositories []maven.Repository

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func (r *remote) repositoriesFor(m *maven.Module) []maven.Repository {
	if len(m.Repositories) > 0 {
		return m.Repositories
	}
	return r.repositories
}

func (r *remote) limiter(repo maven.Repository) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[repo.URL]
	if !ok {
		limit := rate.Inf
		if r.rps > 0 {
			limit = rate.Limit(r.rps)
		}
		l = rate.NewLimiter(limit, 1)
		r.limiters[repo.URL] = l
	}
	return l
}

func (r *remote) do(ctx context.Context, method string, repo maven.Repository, path string) (*http.Response, context.CancelFunc, error) {
	if err := r.limiter(repo).Wait(ctx); err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	url := JoinURL(repo.URL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	return resp, cancel, nil
}

func (r *remote) head(ctx context.Context, repo maven.Repository, path string) (bool, error) {
	resp, cancel, err := r.do(ctx, http.MethodHead, repo, path)
	if err != nil {
		return false, err
	}
	defer cancel()
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (r *remote) download(ctx context.Context, repo maven.Repository, path, dest string) (bool, error) {
	resp, cancel, err := r.do(ctx, http.MethodGet, repo, path)
	if err != nil {
		return false, err
	}
	defer cancel()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}
	if err := install(resp.Body, dest); err != nil {
		return false, err
	}
	return true, nil
}

// install writes body to dest through a temp file and a rename.
func install(body io.Reader, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create local repository directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to download artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to install artifact: %w", err)
	}
	return nil
}
