package blob

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest computes the hex-encoded SHA-256 digest of the given bytes.
// Identical file contents always produce the same digest, regardless of
// filename or upload time, which is what the dedup check relies on.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
