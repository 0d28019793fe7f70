// Package sha256 fingerprints crawl archives so consumers of the completion
// event can verify the object they download.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Prefix tags digests with their algorithm.
const Prefix = "sha256:"

// Hasher implements crawler.Hasher using SHA-256.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash returns "sha256:<hex digest>" of data.
func (Hasher) Hash(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	return Prefix + hex.EncodeToString(sum[:]), nil
}

// Matches reports whether digest is the fingerprint of data. The algorithm
// prefix is optional and hex case is ignored.
func (h Hasher) Matches(data []byte, digest string) bool {
	want, _ := h.Hash(data)
	if !strings.HasPrefix(digest, Prefix) {
		digest = Prefix + digest
	}
	return strings.EqualFold(want, digest)
}
