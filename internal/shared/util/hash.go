package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey derives a stable, filesystem-safe namespace for a user ID.
// Raw IDs like "google:12345" contain separator characters, so artifact
// paths use the hex digest instead.
func HashUserKey(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}
