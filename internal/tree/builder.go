package tree

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Options controls tree construction.
type Options struct {
	// FollowSymlinks descends into symlinked directories and sizes symlinked
	// files. When false, symlinks below the root are skipped entirely.
	FollowSymlinks bool

	// Exclude holds glob patterns relative to the root; see shouldExclude.
	Exclude []string

	Logger zerolog.Logger
}

// DefaultOptions returns options that skip symlinks and exclude nothing.
func DefaultOptions() Options {
	return Options{Logger: zerolog.Nop()}
}

// WithFollowSymlinks sets symlink handling.
func (o Options) WithFollowSymlinks(follow bool) Options {
	o.FollowSymlinks = follow
	return o
}

// WithExclude sets the exclusion patterns.
func (o Options) WithExclude(patterns []string) Options {
	o.Exclude = patterns
	return o
}

// WithLogger sets the logger used for skipped entries.
func (o Options) WithLogger(logger zerolog.Logger) Options {
	o.Logger = logger
	return o
}

type builder struct {
	root string
	opts Options
}

// Build constructs the node for path and, recursively, everything below it.
// It never fails: filesystem errors end up in the node's ErrorState or cause
// the offending entry to be skipped.
func Build(path string, parent *Node, opts Options) *Node {
	root := path
	for p := parent; p != nil; p = p.parent {
		root = p.path
	}
	b := &builder{root: root, opts: opts}
	return b.build(path, parent)
}

func (b *builder) build(path string, parent *Node) *Node {
	n := &Node{path: path, parent: parent}
	if parent != nil {
		n.depth = parent.depth + 1
	}

	// The root is always resolved, so a symlinked root scans its target.
	stat := os.Lstat
	if parent == nil {
		stat = os.Stat
	}

	info, err := stat(path)
	if err != nil {
		n.kind = KindOther
		n.err = errorStateFor(err)
		return n
	}
	n.kind = KindFromMode(info.Mode())

	switch n.kind {
	case KindDir:
		b.buildChildren(n)
	case KindSymlink:
		if !b.opts.FollowSymlinks {
			return n
		}
		target, err := os.Stat(path)
		if err != nil {
			b.opts.Logger.Debug().Str("path", path).Err(err).Msg("broken symlink")
			n.err = errorStateFor(err)
			return n
		}
		if target.IsDir() {
			b.buildChildren(n)
		} else {
			n.size = target.Size()
		}
	default:
		n.size = info.Size()
		if n.kind == KindFile {
			n.info = info
		}
	}

	return n
}

func (b *builder) buildChildren(n *Node) {
	entries, err := os.ReadDir(n.path)
	if err != nil {
		// ReadDir returns whatever it read before failing; keep it.
		b.opts.Logger.Warn().Str("path", n.path).Err(err).Int("partial", len(entries)).Msg("failed to list directory")
		if len(entries) == 0 {
			n.err = errorStateFor(err)
			return
		}
	}

	for _, de := range entries {
		childPath := filepath.Join(n.path, de.Name())

		if de.Type()&fs.ModeSymlink != 0 && !b.opts.FollowSymlinks {
			continue
		}

		if len(b.opts.Exclude) > 0 {
			relPath, err := filepath.Rel(b.root, childPath)
			if err == nil && shouldExclude(relPath, de.IsDir(), b.opts.Exclude) {
				continue
			}
		}

		child := b.build(childPath, n)
		if child.err == AccessDenied && child.kind == KindOther {
			// Could not even stat it; leave it out of the totals.
			b.opts.Logger.Debug().Str("path", childPath).Msg("skipping inaccessible entry")
			continue
		}
		n.add(child)
	}
}

func errorStateFor(err error) ErrorState {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return PathNotFound
	default:
		return AccessDenied
	}
}
