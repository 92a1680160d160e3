package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// HashKey derives a stable cache key from the given parts.
func HashKey(parts ...string) string {
	hash := md5.Sum([]byte(strings.Join(parts, "\x00")))
	return fmt.Sprintf("%x", hash)
}
