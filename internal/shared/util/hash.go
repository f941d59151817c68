package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short, stable, non-reversible tag for an identifier
// so logs can correlate users without carrying their IDs.
func Fingerprint(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
