// Package digest supplies the pluggable hash-algorithm abstraction used by
// the shredder to fingerprint a window of normalized lines. It mirrors the
// HashAlgorithm interface of the file-level hasher this project grew out
// of, reduced to the two algorithms shred comparison actually needs.
package digest

import (
	"crypto/md5"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Algorithm is a hash algorithm a shred can be fingerprinted with.
type Algorithm interface {
	// Name returns the algorithm's canonical lowercase name, as it appears
	// in a SHIF-A or SCF-B header's Hash-Method field.
	Name() string
	// Size returns the digest's output size in bytes.
	Size() int
	// New returns a freshly initialized hash.Hash for this algorithm.
	New() hash.Hash
}

type md5Algorithm struct{}

func (md5Algorithm) Name() string  { return "md5" }
func (md5Algorithm) Size() int     { return md5.Size }
func (md5Algorithm) New() hash.Hash { return md5.New() }

type sha3Algorithm struct{}

func (sha3Algorithm) Name() string  { return "sha3-512" }
func (sha3Algorithm) Size() int     { return 64 }
func (sha3Algorithm) New() hash.Hash { return sha3.New512() }

var registry = []Algorithm{
	md5Algorithm{},
	sha3Algorithm{},
}

// Default returns the shredder's default algorithm.
func Default() Algorithm {
	return md5Algorithm{}
}

// FromName looks up an Algorithm by its canonical name (case-insensitive).
func FromName(name string) (Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, a := range registry {
		if a.Name() == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("unknown hash method %q", name)
}

// Names returns the canonical names of every registered algorithm.
func Names() []string {
	names := make([]string, len(registry))
	for i, a := range registry {
		names[i] = a.Name()
	}
	return names
}
