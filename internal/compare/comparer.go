// Package compare finds files in a primary tree that duplicate files in a
// reference tree.
package compare

import (
	"context"
	"path/filepath"
	"slices"

	"dupes-go/internal/dedup"
	"dupes-go/internal/filter"
	"dupes-go/internal/tree"
)

// Relationship describes how two scanned roots overlap.
type Relationship int

const (
	// Identical roots scan the same location.
	Identical Relationship = iota
	// Disjoint roots share no files.
	Disjoint
	// ReferenceInsidePrimary means the reference root is below the primary root.
	ReferenceInsidePrimary
	// PrimaryInsideReference means the primary root is below the reference root.
	PrimaryInsideReference
)

func (r Relationship) String() string {
	switch r {
	case Identical:
		return "identical"
	case Disjoint:
		return "disjoint"
	case ReferenceInsidePrimary:
		return "reference inside primary"
	case PrimaryInsideReference:
		return "primary inside reference"
	default:
		return "unknown"
	}
}

// Relate classifies two absolute roots.
func Relate(primaryRoot, referenceRoot string) Relationship {
	primaryRoot = filepath.Clean(primaryRoot)
	referenceRoot = filepath.Clean(referenceRoot)

	switch {
	case primaryRoot == referenceRoot:
		return Identical
	case filter.PathIsContainedIn(referenceRoot, primaryRoot):
		return ReferenceInsidePrimary
	case filter.PathIsContainedIn(primaryRoot, referenceRoot):
		return PrimaryInsideReference
	default:
		return Disjoint
	}
}

// DuplicatesAgainst finds duplicate clusters across primary and reference.
// Files seen by both scans count once. Clusters that lie entirely on one
// side are dropped; when both trees scan the same root the result is the
// same as dedup.Duplicates on primary.
func DuplicatesAgainst(ctx context.Context, primary, reference *tree.Tree, opts dedup.Options) (*dedup.Result, error) {
	items := primary.Flatten(false, false, false)
	items = append(items, reference.Flatten(false, false, false)...)
	items = filter.RemoveIdenticalPaths(items)

	res, err := dedup.Find(ctx, items, opts)
	if err != nil {
		return nil, err
	}

	rel := Relate(primary.RootPath(), reference.RootPath())
	if rel == Identical {
		return res, nil
	}

	// Every remaining member is under one of the two roots, so a cluster
	// spans both sides exactly when it has a member inside the inner root
	// and one outside it. For disjoint roots either root serves as inner.
	inner := primary.RootPath()
	if rel == ReferenceInsidePrimary {
		inner = reference.RootPath()
	}

	before := len(res.Clusters)
	res.Clusters = slices.DeleteFunc(res.Clusters, func(c dedup.Cluster) bool {
		return !spans(c, inner)
	})

	opts.Logger.Debug().
		Str("relationship", rel.String()).
		Int("dropped", before-len(res.Clusters)).
		Msg("dropped one-sided clusters")

	return res, nil
}

func spans(c dedup.Cluster, inner string) bool {
	var in, out bool
	for _, m := range c.Members {
		if filter.PathIsContainedIn(m.Path(), inner) {
			in = true
		} else {
			out = true
		}
		if in && out {
			return true
		}
	}
	return false
}

// RemovalTargets lists the cluster members that are safe to delete after a
// comparison: those outside referenceRoot. Files under the reference are
// never returned, so comparing a root with itself yields nothing.
func RemovalTargets(clusters []dedup.Cluster, referenceRoot string) []*tree.Node {
	var targets []*tree.Node
	for _, c := range clusters {
		for _, m := range c.Members {
			if !filter.PathIsContainedIn(m.Path(), referenceRoot) {
				targets = append(targets, m)
			}
		}
	}
	return targets
}

// RedundantSize is the total size of RemovalTargets.
func RedundantSize(clusters []dedup.Cluster, referenceRoot string) int64 {
	var total int64
	for _, n := range RemovalTargets(clusters, referenceRoot) {
		total += n.Size()
	}
	return total
}
