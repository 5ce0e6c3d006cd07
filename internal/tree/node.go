package tree

import (
	"os"
	"path/filepath"
	"slices"
)

// Kind represents the type of filesystem entry.
type Kind uint8

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// KindFromMode derives the Kind from an os.FileMode returned by Lstat.
func KindFromMode(mode os.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDir
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	default:
		return KindOther
	}
}

// ErrorState records why a node could not be fully analysed.
type ErrorState uint8

const (
	NoError ErrorState = iota
	PathNotFound
	AccessDenied
)

func (e ErrorState) String() string {
	switch e {
	case PathNotFound:
		return "path does not exist"
	case AccessDenied:
		return "access denied"
	default:
		return "ok"
	}
}

// Node is one filesystem entry. A node owns its children; the parent
// reference is only used for depth and ancestry queries.
type Node struct {
	path     string
	parent   *Node
	kind     Kind
	depth    int
	size     int64
	err      ErrorState
	children []*Node

	// Descendant counts, fixed at construction.
	files    int
	dirs     int
	symlinks int

	// Lstat result of a regular file; identifies it on disk.
	info os.FileInfo

	// Set by the dedup pipeline, one writer per node.
	hash   uint64
	hashed bool
}

func (n *Node) Path() string { return n.path }

// Name returns the last element of the path.
func (n *Node) Name() string { return filepath.Base(n.path) }

func (n *Node) Parent() *Node { return n.parent }

func (n *Node) Kind() Kind { return n.kind }

// Depth is the distance from the tree root (root = 0).
func (n *Node) Depth() int { return n.depth }

// Size is the on-disk size of a file, or the sum of all descendant sizes
// for a directory or followed symlink.
func (n *Node) Size() int64 { return n.size }

func (n *Node) Err() ErrorState { return n.err }

// FileCount is the number of regular files below this node.
func (n *Node) FileCount() int { return n.files }

// DirCount is the number of subdirectories below this node.
func (n *Node) DirCount() int { return n.dirs }

// SymlinkCount is the number of symlinks below this node.
func (n *Node) SymlinkCount() int { return n.symlinks }

// Children returns a copy of the direct children.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

func (n *Node) IsRegular() bool { return n.kind == KindFile }

// SameFile reports whether n and other are the same regular file on disk,
// as when one file is reached through a followed symlink or a hard link.
func (n *Node) SameFile(other *Node) bool {
	if n.info == nil || other.info == nil {
		return false
	}
	return os.SameFile(n.info, other.info)
}

// Hash returns the cached content hash and whether it has been computed.
func (n *Node) Hash() (uint64, bool) { return n.hash, n.hashed }

// SetHash caches the content hash. Only the hashing pass calls it.
func (n *Node) SetHash(sum uint64) {
	n.hash = sum
	n.hashed = true
}

// add attaches a fully built child and rolls its totals into n.
func (n *Node) add(child *Node) {
	n.children = append(n.children, child)
	n.size += child.size

	switch child.kind {
	case KindDir:
		n.dirs += 1 + child.dirs
		n.files += child.files
		n.symlinks += child.symlinks
	case KindSymlink:
		n.symlinks += 1 + child.symlinks
		n.dirs += child.dirs
		n.files += child.files
	case KindFile:
		n.files++
	}
}

// walk visits every descendant of n depth-first, pre-order.
func (n *Node) walk(fn func(*Node)) {
	for _, child := range n.children {
		fn(child)
		child.walk(fn)
	}
}
