package util

import (
	"crypto/sha256"
	"fmt"
	"path"
	"strings"
)

// maxFileKeyLen bounds the filename length derived from a cache key.
const maxFileKeyLen = 200

// FileKey returns a filesystem-safe name for a cache key. Path separators are
// replaced, and overlong keys collapse to a short sha256 digest so the name
// stays within filesystem limits while staying deterministic.
func FileKey(key string) string {
	s := strings.NewReplacer("/", "_", "\\", "_", "\x00", "_").Replace(key)
	if len(s) <= maxFileKeyLen {
		return s
	}
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", sum)[:32]
}

// JoinKey joins the non-empty segments with sep, in order.
func JoinKey(sep string, segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

// MatchKey reports whether key matches the glob-style pattern ("*" wildcard).
// An empty pattern matches every key.
func MatchKey(pattern, key string) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	return path.Match(pattern, key)
}
