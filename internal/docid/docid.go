// Package docid derives deterministic document IDs from uploaded content.
package docid

import (
	"crypto/sha256"
	"encoding/hex"
)

const prefix = "sha256:"

// ContentID returns a stable ID for the given raw document bytes.
// The same bytes always yield the same ID regardless of filename.
func ContentID(content []byte) string {
	hash := sha256.Sum256(content)
	return prefix + hex.EncodeToString(hash[:])
}
