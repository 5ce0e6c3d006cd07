package tree

import (
	"path/filepath"
	"strings"
)

// shouldExclude reports whether relPath (relative to the tree root) matches
// one of the exclusion patterns. Patterns ending in "/" match directory
// names anywhere in the path; other patterns match the base name, or the
// whole relative path when they contain a separator.
func shouldExclude(relPath string, isDir bool, exclusions []string) bool {
	for _, pattern := range exclusions {
		if strings.HasSuffix(pattern, "/") {
			dirPattern := strings.TrimSuffix(pattern, "/")
			parts := strings.Split(relPath, string(filepath.Separator))
			if !isDir {
				parts = parts[:len(parts)-1]
			}
			for _, part := range parts {
				if part == dirPattern {
					return true
				}
				if matched, _ := filepath.Match(dirPattern, part); matched {
					return true
				}
			}
			continue
		}

		if matched, err := filepath.Match(pattern, filepath.Base(relPath)); err == nil && matched {
			return true
		}
		if strings.Contains(pattern, "/") {
			if matched, err := filepath.Match(pattern, relPath); err == nil && matched {
				return true
			}
		}
	}
	return false
}
