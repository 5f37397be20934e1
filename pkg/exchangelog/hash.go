package exchangelog

import (
	"crypto/sha256"
	"encoding/hex"
)

// MaxHashSize caps how many leading bytes of a body are hashed.
const MaxHashSize = 1024 * 1024

// HashContent returns the hex SHA-256 of content, or of its first
// MaxHashSize bytes. Empty content hashes to "".
func HashContent(content []byte) string {
	if len(content) == 0 {
		return ""
	}

	if len(content) > MaxHashSize {
		content = content[:MaxHashSize]
	}

	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
