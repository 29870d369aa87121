// Package cache stores retrieved evidence between questions. The memory
// layer serves repeats within one run, the disk layer serves repeats
// across runs, and the layered form combines both. Values are opaque
// bytes; EvidenceCache adds the typed view the adapters use.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is the byte-level store behind EvidenceCache. A zero ttl on Set
// means the backend's default.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a versioned cache key from its parts. Parts are joined
// with a NUL separator before hashing so ("a", "bc") and ("ab", "c")
// never collide.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "nomos:v1:" + hex.EncodeToString(hash[:])
}
