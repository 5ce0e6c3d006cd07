package dedup

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"dupes-go/internal/hash"
	"dupes-go/internal/tree"
)

// hashNodes hashes every node that has no cached hash, at most opts.Workers
// at a time. Each node is written by exactly one worker. Nodes that could not
// be hashed are left out of the returned slice and reported in errs; the
// returned error is set only when ctx is cancelled.
func hashNodes(ctx context.Context, items []*tree.Node, opts Options) (hashed []*tree.Node, errs []error, err error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if opts.Progress != nil {
		opts.Progress.Start(int64(len(items)))
		defer opts.Progress.Finish()
	}

	failures := make([]error, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, n := range items {
		if gctx.Err() != nil {
			break
		}
		i, n := i, n
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if opts.Progress != nil {
				defer opts.Progress.Increment()
			}
			if _, ok := n.Hash(); ok {
				return nil
			}

			sum, err := hash.HashFile(n.Path())
			if err != nil {
				failures[i] = fmt.Errorf("%s: %w", n.Path(), err)
				opts.Logger.Warn().Err(err).Str("path", n.Path()).Msg("skipping file that could not be hashed")
				return nil
			}
			n.SetHash(sum)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	hashed = items[:0]
	for i, n := range items {
		if failures[i] != nil {
			errs = append(errs, failures[i])
			continue
		}
		hashed = append(hashed, n)
	}

	return hashed, errs, nil
}
