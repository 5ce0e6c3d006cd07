// Package filter holds the sorters and filters shared by the duplicate
// pipeline and the comparison logic. They reorder or shrink a slice of node
// references and never modify the nodes themselves.
package filter

import (
	"cmp"
	"path/filepath"
	"slices"

	"dupes-go/internal/tree"
)

// SortBySizeDescending orders items largest first.
func SortBySizeDescending(items []*tree.Node) {
	slices.SortStableFunc(items, func(a, b *tree.Node) int {
		return cmp.Compare(b.Size(), a.Size())
	})
}

// SortByHashDescending orders items by content hash, largest first, with
// size (descending) as the tie-break. Unhashed nodes sort as hash 0.
func SortByHashDescending(items []*tree.Node) {
	slices.SortStableFunc(items, func(a, b *tree.Node) int {
		ha, _ := a.Hash()
		hb, _ := b.Hash()
		if c := cmp.Compare(hb, ha); c != 0 {
			return c
		}
		return cmp.Compare(b.Size(), a.Size())
	})
}

// SortByPathLexicographic orders items by path, ascending.
func SortByPathLexicographic(items []*tree.Node) {
	slices.SortStableFunc(items, func(a, b *tree.Node) int {
		return cmp.Compare(a.Path(), b.Path())
	})
}

// KeepOnlyRegularFiles drops directories, symlinks and other entries.
func KeepOnlyRegularFiles(items []*tree.Node) []*tree.Node {
	return slices.DeleteFunc(items, func(n *tree.Node) bool {
		return !n.IsRegular()
	})
}

// RemoveEmptyFiles drops zero-byte entries.
func RemoveEmptyFiles(items []*tree.Node) []*tree.Node {
	return slices.DeleteFunc(items, func(n *tree.Node) bool {
		return n.Size() == 0
	})
}

// RemoveIdenticalPaths sorts items by path and keeps one node per path.
// Two scans of nested roots see the inner files twice; this collapses them.
func RemoveIdenticalPaths(items []*tree.Node) []*tree.Node {
	SortByPathLexicographic(items)
	return slices.CompactFunc(items, func(a, b *tree.Node) bool {
		return a.Path() == b.Path()
	})
}

// RemoveSameFiles keeps the first of every group of nodes that are the same
// file on disk. A followed symlink can expose one file under two paths.
func RemoveSameFiles(items []*tree.Node) []*tree.Node {
	kept := items[:0]
	for _, n := range items {
		if !slices.ContainsFunc(kept, n.SameFile) {
			kept = append(kept, n)
		}
	}
	return kept
}

// GroupIntoClusters partitions items, already sorted with
// SortByHashDescending, into runs of equal hash and size.
func GroupIntoClusters(items []*tree.Node) [][]*tree.Node {
	var clusters [][]*tree.Node

	for start := 0; start < len(items); {
		first := items[start]
		fh, _ := first.Hash()

		end := start + 1
		for end < len(items) {
			h, _ := items[end].Hash()
			if h != fh || items[end].Size() != first.Size() {
				break
			}
			end++
		}

		clusters = append(clusters, slices.Clone(items[start:end]))
		start = end
	}

	return clusters
}

// PathIsContainedIn reports whether root is candidate itself or one of its
// ancestors. Both paths are compared in cleaned form.
func PathIsContainedIn(candidate, root string) bool {
	candidate = filepath.Clean(candidate)
	root = filepath.Clean(root)

	for {
		if candidate == root {
			return true
		}
		parent := filepath.Dir(candidate)
		if parent == candidate {
			return false
		}
		candidate = parent
	}
}
