package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the cache key for a query: the lowercase hex SHA-256
// of the exact query bytes. It is deterministic across processes and total
// over any string; no whitespace or case normalization is applied, so only
// byte-identical queries share an entry.
func Fingerprint(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

// shortFingerprint trims a fingerprint for log output.
func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
