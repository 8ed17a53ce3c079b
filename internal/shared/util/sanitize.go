package util

import (
	"errors"
	"path"
	"strings"
)

// ErrInvalidFileName is returned for empty names and names that resolve to a directory.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName strips any directory part from an uploaded name, treating
// both slash styles as separators.
func SanitizeFileName(name string) (string, error) {
	s := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	s = path.Base(s)
	switch s {
	case "", ".", "..", "/":
		return "", ErrInvalidFileName
	}
	return s, nil
}

// HasExtension reports whether name ends with ext. The match is case-sensitive,
// as the inference API checks the suffix the same way.
func HasExtension(name, ext string) bool {
	return strings.HasSuffix(strings.TrimSpace(name), ext)
}
