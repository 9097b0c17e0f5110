// Package digest provides deterministic keys for cache entries.
package digest

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Key returns a stable sha256 hex key over parts. Each part is length-prefixed,
// so ("ab", "c") and ("a", "bc") produce different keys.
func Key(parts ...string) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
