package engine

import (
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// DigestAlgorithm selects the streaming digest used for integrity
// verification. The digest is a cheap content check, not a cryptographic
// guarantee.
type DigestAlgorithm string

const (
	// DigestBlake3 is the default verification digest.
	DigestBlake3 DigestAlgorithm = "blake3"
	// DigestXXH64 trades collision resistance for speed.
	DigestXXH64 DigestAlgorithm = "xxh64"
)

// NewDigest returns a fresh streaming hasher for the algorithm.
func NewDigest(alg DigestAlgorithm) (hash.Hash, error) {
	switch alg {
	case DigestBlake3, "":
		return blake3.New(), nil
	case DigestXXH64:
		return xxhash.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown digest algorithm %q", ErrInvalidArgument, alg)
	}
}

func hexDigest(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
