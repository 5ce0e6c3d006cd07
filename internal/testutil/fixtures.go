// Package testutil builds directory fixtures for tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path (and its parents) with content.
func WriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
}

// FileContent is the content of file_<i>.txt in generated trees. All
// contents have the same length, so only the hash tells them apart.
func FileContent(i int) []byte {
	return []byte(fmt.Sprintf("%064b\n", i))
}

// SetupDirectory generates a regular tree below base: every directory holds
// filesPerDir files named file_<i>.txt and, down to recursionDepth levels,
// dirsPerDepth subdirectories named dir_<i>. file_<i>.txt has the same
// content everywhere.
func SetupDirectory(t *testing.T, base string, recursionDepth, dirsPerDepth, filesPerDir int) {
	t.Helper()
	setupLevel(t, base, recursionDepth, dirsPerDepth, filesPerDir, 0)
}

func setupLevel(t *testing.T, dir string, recursionDepth, dirsPerDepth, filesPerDir, level int) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	for f := 0; f < filesPerDir; f++ {
		WriteFile(t, filepath.Join(dir, fmt.Sprintf("file_%d.txt", f)), FileContent(f))
	}
	if level >= recursionDepth {
		return
	}
	for d := 0; d < dirsPerDepth; d++ {
		setupLevel(t, filepath.Join(dir, fmt.Sprintf("dir_%d", d)), recursionDepth, dirsPerDepth, filesPerDir, level+1)
	}
}

// TotalDirectoryCount is the number of directories SetupDirectory creates
// below base.
func TotalDirectoryCount(recursionDepth, dirsPerDepth int) int {
	total, level := 0, 1
	for d := 1; d <= recursionDepth; d++ {
		level *= dirsPerDepth
		total += level
	}
	return total
}
