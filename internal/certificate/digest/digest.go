// Package digest computes the tamper-evidence fingerprint bound to every
// certificate artifact.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the lowercase SHA-256 hex digest of raw artifact bytes.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
