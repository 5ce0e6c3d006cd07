package dedup

import (
	"cmp"
	"slices"

	"dupes-go/internal/filter"
	"dupes-go/internal/tree"
)

// Cluster is a group of two or more files with identical size and content
// hash, in canonical order: the first member is treated as the original.
type Cluster struct {
	Hash    uint64
	Size    int64
	Members []*tree.Node
}

// newCluster orders members canonically and drops later paths to a file
// already in the cluster. ok is false when fewer than two files remain.
func newCluster(members []*tree.Node) (c Cluster, ok bool) {
	sum, _ := members[0].Hash()
	c = Cluster{Hash: sum, Size: members[0].Size(), Members: members}
	c.sortCanonical()
	c.Members = filter.RemoveSameFiles(c.Members)
	return c, len(c.Members) > 1
}

// sortCanonical orders members by ascending depth, then by descending name
// length. Path order breaks the remaining ties.
func (c *Cluster) sortCanonical() {
	slices.SortFunc(c.Members, func(a, b *tree.Node) int {
		if d := cmp.Compare(a.Depth(), b.Depth()); d != 0 {
			return d
		}
		if d := cmp.Compare(len(b.Name()), len(a.Name())); d != 0 {
			return d
		}
		return cmp.Compare(a.Path(), b.Path())
	})
}

// Original is the member kept when duplicates are removed.
func (c Cluster) Original() *tree.Node {
	return c.Members[0]
}

// Duplicates are the members after the original.
func (c Cluster) Duplicates() []*tree.Node {
	return c.Members[1:]
}

// RedundantSize is the space taken by all copies except the original.
func (c Cluster) RedundantSize() int64 {
	return int64(len(c.Members)-1) * c.Size
}

// RemovalTargets lists, for single-tree results, every member except each
// cluster's original.
func RemovalTargets(clusters []Cluster) []*tree.Node {
	var targets []*tree.Node
	for _, c := range clusters {
		targets = append(targets, c.Duplicates()...)
	}
	return targets
}

// RedundantSize sums RedundantSize over clusters.
func RedundantSize(clusters []Cluster) int64 {
	var total int64
	for _, c := range clusters {
		total += c.RedundantSize()
	}
	return total
}
