package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Short returns the first width hex characters of the SHA-256 digest of
// data. Widths outside (0, 64] fall back to the full digest.
func Short(data []byte, width int) string {
	full := Sum(data)
	if width <= 0 || width > len(full) {
		return full
	}
	return full[:width]
}
