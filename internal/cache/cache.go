package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for the classification result cache
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from an image storage path
func Key(imagePath string) string {
	hash := sha256.Sum256([]byte(imagePath))
	return "claimsift:v1:" + hex.EncodeToString(hash[:])
}

// ContentHash returns a short hex digest of raw image bytes. Stored image
// filenames embed it so a claim PDF replaced under the same name can never
// silently serve stale cached bytes.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:4])
}
