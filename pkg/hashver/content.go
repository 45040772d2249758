package hashver

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/albertocavalcante/hashver/internal/log"
	"github.com/albertocavalcante/hashver/internal/telemetry"
)

const pathSeparator = "/"

// ContentHasher feeds files and directory trees into one running digest.
//
// Each file contributes its slash separated path relative to the hashed
// root (parentPath + "/" + name) followed by its raw bytes. A directory
// contributes its own path, then its entries in byte-wise name order.
// The resulting digest is therefore independent of the host's directory
// enumeration order and of the absolute location of the tree.
type ContentHasher struct {
	digest      hash.Hash
	skipContent bool
	logger      *slog.Logger
	buf         []byte
}

// NewContentHasher returns a hasher writing into digest. With skipContent
// files are still read but their bytes are not fed to the digest.
func NewContentHasher(digest hash.Hash, skipContent bool, logger *slog.Logger) *ContentHasher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ContentHasher{
		digest:      digest,
		skipContent: skipContent,
		logger:      logger,
		buf:         make([]byte, 32*1024),
	}
}

// HashFile feeds parentPath + "/" + base(path), then the file content.
func (h *ContentHasher) HashFile(path, parentPath string) error {
	myPath := parentPath + pathSeparator + filepath.Base(path)
	h.logger.Log(context.Background(), log.LevelTrace, "hashing file", "path", myPath)
	h.writePath(myPath)
	return h.hashContent(path)
}

// HashDirectory feeds parentPath + "/" + base(path), then every entry of the
// directory in byte-wise name order. Subdirectories recurse; symbolic links
// are followed.
func (h *ContentHasher) HashDirectory(path, parentPath string) error {
	myPath := parentPath + pathSeparator + filepath.Base(path)
	h.writePath(myPath)

	names, err := readDirNames(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}

	for _, name := range names {
		child := filepath.Join(path, name)
		info, err := os.Stat(child)
		if err != nil {
			return &IOError{Path: child, Err: err}
		}
		switch {
		case info.IsDir():
			if err := h.HashDirectory(child, myPath); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := h.HashFile(child, myPath); err != nil {
				return err
			}
		default:
			return &IOError{Path: child, Err: fmt.Errorf("not a regular file (mode %s)", info.Mode())}
		}
	}
	return nil
}

// hashContent feeds the raw bytes of path, without any path prefix.
func (h *ContentHasher) hashContent(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	defer f.Close()

	var sink io.Writer = h.digest
	if h.skipContent {
		sink = io.Discard
	}
	n, err := io.CopyBuffer(sink, f, h.buf)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}

	telemetry.FilesHashed.Inc()
	telemetry.BytesHashed.Add(float64(n))
	return nil
}

func (h *ContentHasher) writePath(p string) {
	_, _ = io.WriteString(h.digest, p)
}

// readDirNames lists a directory sorted by byte-wise name comparison.
// File.ReadDir is used instead of os.ReadDir so the ordering is ours.
func readDirNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	slices.SortFunc(names, strings.Compare)
	return names, nil
}

// isDir reports whether path is an existing directory. A missing path is
// not an error.
func isDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
