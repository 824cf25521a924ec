// Package eligibility implements the predicates that decide which lines
// are shredded and which files are walked at all, generalizing the
// basename/regex exclusion predicates the original file-level walker used.
package eligibility

import (
	"path/filepath"
	"strings"
)

// cExtensions lists the file extensions considered in content-only mode.
var cExtensions = map[string]bool{
	".c":   true,
	".h":   true,
	".txt": true,
}

// LineRelevant reports whether a line survives to be windowed into a
// shred: a line is relevant iff its normalized text is non-empty.
func LineRelevant(normalized string) bool {
	return normalized != ""
}

// FileEligible reports whether the file at path, with the given size in
// bytes, should be walked and shredded. Zero-byte and negative-size files
// are never eligible. When cOnly is set, only .c/.h/.txt files qualify.
func FileEligible(path string, size int64, cOnly bool) bool {
	if size <= 0 {
		return false
	}
	if !cOnly {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return cExtensions[ext]
}
