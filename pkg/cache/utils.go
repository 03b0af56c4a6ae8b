package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
)

// GenerateKeyWithParams creates a cache key with multiple parameters.
func GenerateKeyWithParams(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key = fmt.Sprintf("%s:%v", key, param)
	}
	return key
}

// RequestKey builds a stable key for a GET request; url.Values.Encode sorts by key.
func RequestKey(prefix, path string, params url.Values) string {
	return GenerateKeyWithParams(prefix, path, HashKey(params.Encode()))
}

// HashKey generates MD5 hash of a key.
func HashKey(key string) string {
	hasher := md5.New()
	hasher.Write([]byte(key))
	return hex.EncodeToString(hasher.Sum(nil))
}

// BuildPattern creates a Redis pattern for key matching.
func BuildPattern(prefix string) string {
	return fmt.Sprintf("%s*", prefix)
}
