package hashver

import (
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security boundary
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"hash"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Algorithm names a digest algorithm.
type Algorithm string

const (
	SHA1     Algorithm = "sha1"
	SHA256   Algorithm = "sha256"
	XXHash64 Algorithm = "xxhash64"

	// DefaultAlgorithm is used when Options.Algorithm is empty.
	DefaultAlgorithm = SHA1
)

// Algorithms lists the supported digest algorithms.
var Algorithms = []Algorithm{SHA1, SHA256, XXHash64}

// ParseAlgorithm parses a digest algorithm name, case-insensitively.
// An empty name selects DefaultAlgorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	if name == "" {
		return DefaultAlgorithm, nil
	}
	a := Algorithm(strings.ToLower(name))
	switch a {
	case SHA1, SHA256, XXHash64:
		return a, nil
	}
	return "", fmt.Errorf("unknown digest algorithm %q (supported: %s, %s, %s)", name, SHA1, SHA256, XXHash64)
}

// New returns a fresh digest.
func (a Algorithm) New() hash.Hash {
	switch a {
	case SHA256:
		return sha256.New()
	case XXHash64:
		return xxhash.New()
	default:
		return sha1.New() //nolint:gosec
	}
}

// newDigest returns a fresh digest seeded with extra.
func newDigest(a Algorithm, extra string) hash.Hash {
	d := a.New()
	if extra != "" {
		_, _ = d.Write([]byte(extra))
	}
	return d
}

// Encode renders a digest sum as unpadded URL-safe base64, so the result is
// usable as a file name and inside a version string.
func Encode(sum []byte) string {
	return base64.RawURLEncoding.EncodeToString(sum)
}
