package credcache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest derives the cache key for a raw credential token: a hex-encoded
// SHA-256 digest. Callers key the cache with this digest so the raw
// credential is never stored in any tier.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}
