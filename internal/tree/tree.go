package tree

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
)

// ErrPathNotFound is returned by New when the root does not exist.
var ErrPathNotFound = errors.New("path does not exist")

// Tree holds the root node of one scanned filesystem location.
type Tree struct {
	root           *Node
	followSymlinks bool

	flattenOnce sync.Once
	all         []*Node
}

// New scans rootPath and returns its tree. The path is made absolute first.
// A root that exists but cannot be listed still yields a tree; check
// Root().Err().
func New(rootPath string, opts Options) (*Tree, error) {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	root := Build(absRoot, nil, opts)
	if root.err == PathNotFound {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, absRoot)
	}

	return &Tree{root: root, followSymlinks: opts.FollowSymlinks}, nil
}

func (t *Tree) Root() *Node { return t.root }

func (t *Tree) RootPath() string { return t.root.path }

// FollowsSymlinks reports whether symlinks were followed during the scan.
func (t *Tree) FollowsSymlinks() bool { return t.followSymlinks }

func (t *Tree) TotalSize() int64 { return t.root.size }

func (t *Tree) FileCount() int { return t.root.files }

func (t *Tree) DirectoryCount() int { return t.root.dirs }

func (t *Tree) SymlinkCount() int { return t.root.symlinks }

// Flatten lists nodes below the root: only the direct children when
// currentLevelOnly is set, otherwise every descendant in depth-first order.
// The returned slice is the caller's to reorder or shrink.
func (t *Tree) Flatten(currentLevelOnly, onlyFiles, sortedBySize bool) []*Node {
	var items []*Node
	if currentLevelOnly {
		items = t.root.Children()
	} else {
		t.flattenOnce.Do(func() {
			t.root.walk(func(n *Node) {
				t.all = append(t.all, n)
			})
		})
		items = slices.Clone(t.all)
	}

	if onlyFiles {
		items = slices.DeleteFunc(items, func(n *Node) bool { return !n.IsRegular() })
	}

	if sortedBySize {
		slices.SortStableFunc(items, func(a, b *Node) int {
			switch {
			case a.size > b.size:
				return -1
			case a.size < b.size:
				return 1
			default:
				return 0
			}
		})
	}

	return items
}
