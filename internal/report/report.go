// Package report renders scan results as text or as a JSON document.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"dupes-go/internal/compare"
	"dupes-go/internal/dedup"
	"dupes-go/internal/tree"
)

// Scan bundles the trees and clusters of one run. Reference is nil for a
// single-tree scan.
type Scan struct {
	Primary   *tree.Tree
	Reference *tree.Tree
	Clusters  []dedup.Cluster
	Errors    []error
}

// Comparing reports whether the scan compared against a reference tree.
func (s *Scan) Comparing() bool {
	return s.Reference != nil
}

// RemovalTargets lists the files that can be deleted without losing
// content: every member but the original for a single tree, and every
// member outside the reference root for a comparison.
func (s *Scan) RemovalTargets() []*tree.Node {
	if s.Comparing() {
		return compare.RemovalTargets(s.Clusters, s.Reference.RootPath())
	}
	return dedup.RemovalTargets(s.Clusters)
}

// RedundantSize is the total size of RemovalTargets.
func (s *Scan) RedundantSize() int64 {
	if s.Comparing() {
		return compare.RedundantSize(s.Clusters, s.Reference.RootPath())
	}
	return dedup.RedundantSize(s.Clusters)
}

type totals struct {
	files, dirs, symlinks int
	size                  int64
}

func (s *Scan) totals() totals {
	t := totals{
		files:    s.Primary.FileCount(),
		dirs:     s.Primary.DirectoryCount(),
		symlinks: s.Primary.SymlinkCount(),
		size:     s.Primary.TotalSize(),
	}
	if s.Comparing() {
		t.files += s.Reference.FileCount()
		t.dirs += s.Reference.DirectoryCount()
		t.symlinks += s.Reference.SymlinkCount()
		t.size += s.Reference.TotalSize()
	}
	return t
}

// WriteSummary prints what was scanned. Comparisons sum both trees.
func WriteSummary(w io.Writer, s *Scan) error {
	var b strings.Builder

	if s.Comparing() {
		fmt.Fprintf(&b, "Searching for duplicates of:\n%s\nin path:\n%s\n\n",
			s.Reference.RootPath(), s.Primary.RootPath())
	} else {
		fmt.Fprintf(&b, "Results for: %s\n", s.Primary.RootPath())
	}

	t := s.totals()
	fmt.Fprintf(&b, "Analyzed files: %s\n", humanize.Comma(int64(t.files)))
	fmt.Fprintf(&b, "Analyzed subdirectories: %s\n", humanize.Comma(int64(t.dirs)))
	if s.Primary.FollowsSymlinks() {
		fmt.Fprintf(&b, "Analyzed symlinks: %s\n", humanize.Comma(int64(t.symlinks)))
	}
	fmt.Fprintf(&b, "Analyzed data: %s\n", humanize.IBytes(uint64(t.size)))
	if len(s.Errors) > 0 {
		fmt.Fprintf(&b, "Unreadable files: %d\n", len(s.Errors))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteList prints one removable path per line.
func WriteList(w io.Writer, s *Scan) error {
	var b strings.Builder
	for _, n := range s.RemovalTargets() {
		b.WriteString(n.Path())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteDetailed prints every cluster with its members, preceded by the
// cluster count and the redundant size.
func WriteDetailed(w io.Writer, s *Scan) error {
	var b strings.Builder

	if len(s.Clusters) == 0 {
		b.WriteString("No duplicates found!\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "Duplicate groups found: %d\n", len(s.Clusters))
	fmt.Fprintf(&b, "Redundant data: %s\n\n", humanize.IBytes(uint64(s.RedundantSize())))

	for _, c := range s.Clusters {
		n := len(c.Members)
		fmt.Fprintf(&b, "Duplicate group with %d duplicates: %s [%d x %s]\n",
			n, humanize.IBytes(uint64(c.Size)*uint64(n)), n, humanize.IBytes(uint64(c.Size)))
		for _, m := range c.Members {
			b.WriteString(m.Path())
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}
