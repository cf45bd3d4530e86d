package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key builds a cache key of the form prefix:hash(parts...). Parts are joined
// with a NUL byte before hashing so ("ab","c") and ("a","bc") differ.
func Key(prefix string, parts ...string) string {
	return prefix + ":" + Hash([]byte(strings.Join(parts, "\x00")))
}

// ETagKey returns the key under which the ETag for a resolved request URL is
// stored.
func ETagKey(url string) string {
	return Key("etag", url)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
