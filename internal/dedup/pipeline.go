// Package dedup finds groups of files with identical content.
//
// The pipeline narrows a flat list of nodes in passes that get more
// expensive as the list gets shorter:
//
//  1. keep regular, non-empty files
//  2. drop files whose size no other file shares
//  3. hash the rest (XXH64 over a memory mapping, in parallel)
//  4. drop files whose hash no other file shares
//  5. group equal hashes into clusters
//
// Two files are reported as duplicates when size and 64-bit hash match;
// content is not compared byte by byte.
package dedup

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"

	"dupes-go/internal/filter"
	"dupes-go/internal/tree"
)

// Progress receives hashing progress. *progress.Bar implements it.
type Progress interface {
	Start(total int64)
	Increment()
	Finish()
}

// Options configures a pipeline run.
type Options struct {
	// Workers bounds concurrent hashing. Zero means runtime.NumCPU().
	Workers int

	// MinSize drops files smaller than this many bytes before hashing.
	MinSize int64

	Progress Progress
	Logger   zerolog.Logger
}

// DefaultOptions returns one hashing worker per CPU and no size limit.
func DefaultOptions() Options {
	return Options{
		Workers: runtime.NumCPU(),
		Logger:  zerolog.Nop(),
	}
}

// WithWorkers sets the number of hashing workers.
func (o Options) WithWorkers(n int) Options {
	o.Workers = n
	return o
}

// WithMinSize sets the minimum file size considered.
func (o Options) WithMinSize(n int64) Options {
	o.MinSize = n
	return o
}

// WithProgress sets the hashing progress reporter.
func (o Options) WithProgress(p Progress) Options {
	o.Progress = p
	return o
}

// WithLogger sets the logger.
func (o Options) WithLogger(logger zerolog.Logger) Options {
	o.Logger = logger
	return o
}

// Result is the outcome of one pipeline run.
type Result struct {
	Clusters []Cluster

	// Hashed counts the same-size candidates that went through hashing.
	Hashed int

	// Errors holds one entry per file that could not be hashed; those
	// files are left out of Clusters.
	Errors []error
}

// Duplicates runs the pipeline over every node of t.
func Duplicates(ctx context.Context, t *tree.Tree, opts Options) (*Result, error) {
	return Find(ctx, t.Flatten(false, false, false), opts)
}

// Find runs the pipeline over items. The slice is reordered and shrunk in
// place; callers that need it afterwards should pass a copy.
func Find(ctx context.Context, items []*tree.Node, opts Options) (*Result, error) {
	items = filter.KeepOnlyRegularFiles(items)
	items = filter.RemoveEmptyFiles(items)
	if opts.MinSize > 0 {
		items = removeSmallerThan(items, opts.MinSize)
	}

	filter.SortBySizeDescending(items)
	items = removeWithoutPeer(items, func(n *tree.Node) int64 { return n.Size() })

	opts.Logger.Debug().Int("candidates", len(items)).Msg("hashing same-size files")

	hashed, errs, err := hashNodes(ctx, items, opts)
	if err != nil {
		return nil, err
	}
	items = hashed

	filter.SortByHashDescending(items)
	items = removeWithoutPeer(items, hashKeyOf)

	result := &Result{Hashed: len(hashed) + len(errs), Errors: errs}
	for _, members := range filter.GroupIntoClusters(items) {
		c, ok := newCluster(members)
		if !ok {
			opts.Logger.Debug().Str("path", c.Original().Path()).Msg("only one file behind several paths")
			continue
		}
		result.Clusters = append(result.Clusters, c)
	}

	opts.Logger.Debug().Int("clusters", len(result.Clusters)).Int("errors", len(errs)).Msg("duplicate detection finished")

	return result, nil
}

type hashKey struct {
	sum  uint64
	size int64
}

func hashKeyOf(n *tree.Node) hashKey {
	sum, _ := n.Hash()
	return hashKey{sum: sum, size: n.Size()}
}

// removeWithoutPeer drops every item whose key equals neither neighbour's.
// items must be sorted so that equal keys are adjacent.
func removeWithoutPeer[K comparable](items []*tree.Node, key func(*tree.Node) K) []*tree.Node {
	kept := items[:0]
	for i, n := range items {
		k := key(n)
		samePrev := i > 0 && key(items[i-1]) == k
		sameNext := i < len(items)-1 && key(items[i+1]) == k
		if samePrev || sameNext {
			kept = append(kept, n)
		}
	}
	return kept
}

func removeSmallerThan(items []*tree.Node, minSize int64) []*tree.Node {
	kept := items[:0]
	for _, n := range items {
		if n.Size() >= minSize {
			kept = append(kept, n)
		}
	}
	return kept
}
