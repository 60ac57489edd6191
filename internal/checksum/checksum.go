// Package checksum computes content digests for rendered pages.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

const shortLen = 12

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short returns a prefix of the digest for log lines.
func Short(sum string) string {
	if len(sum) <= shortLen {
		return sum
	}
	return sum[:shortLen]
}
