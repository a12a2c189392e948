package util

import (
	"errors"
	"path"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty or escape their root.
var ErrInvalidKey = errors.New("invalid storage key")

// CleanKey normalizes a slash-separated object key and rejects traversal.
func CleanKey(key string) (string, error) {
	s := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if s == "" || strings.HasPrefix(s, "/") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(s)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}
