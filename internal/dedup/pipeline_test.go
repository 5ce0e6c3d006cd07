package dedup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dupes-go/internal/testutil"
	"dupes-go/internal/tree"
)

func scan(t *testing.T, path string) *tree.Tree {
	t.Helper()
	tr, err := tree.New(path, tree.DefaultOptions())
	require.NoError(t, err)
	return tr
}

func clusterPaths(clusters []Cluster) [][]string {
	out := make([][]string, 0, len(clusters))
	for _, c := range clusters {
		paths := make([]string, 0, len(c.Members))
		for _, m := range c.Members {
			paths = append(paths, m.Path())
		}
		out = append(out, paths)
	}
	return out
}

type countingProgress struct {
	total    int64
	done     int64
	started  bool
	finished bool
}

func (p *countingProgress) Start(total int64) { p.total, p.started = total, true }
func (p *countingProgress) Increment()        { p.done++ }
func (p *countingProgress) Finish()           { p.finished = true }

func TestDuplicates_RootFileCopiedIntoSubdirectories(t *testing.T) {
	base := t.TempDir()
	testutil.SetupDirectory(t, base, 1, 3, 1)

	res, err := Duplicates(context.Background(), scan(t, base), DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.Clusters, 1)
	c := res.Clusters[0]
	require.Len(t, c.Members, 4)
	assert.Equal(t, filepath.Join(base, "file_0.txt"), c.Original().Path())
	assert.Len(t, c.Duplicates(), 3)
	assert.Equal(t, int64(3*len(testutil.FileContent(0))), c.RedundantSize())
	assert.Empty(t, res.Errors)
}

func TestDuplicates_DistinctSizes(t *testing.T) {
	base := t.TempDir()
	for i := 1; i <= 3; i++ {
		testutil.WriteFile(t, filepath.Join(base, fmt.Sprintf("f%d", i)), make([]byte, i))
	}

	res, err := Duplicates(context.Background(), scan(t, base), DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, res.Clusters)
	assert.Zero(t, res.Hashed, "size pre-filter should leave nothing to hash")
}

func TestDuplicates_GeneratedTrees(t *testing.T) {
	for depth := 1; depth <= 3; depth++ {
		for _, dirs := range []int{0, 1, 3} {
			for _, files := range []int{0, 1, 5} {
				t.Run(fmt.Sprintf("depth=%d/dirs=%d/files=%d", depth, dirs, files), func(t *testing.T) {
					base := t.TempDir()
					testutil.SetupDirectory(t, base, depth, dirs, files)

					res, err := Duplicates(context.Background(), scan(t, base), DefaultOptions())
					require.NoError(t, err)

					if dirs == 0 {
						assert.Empty(t, res.Clusters)
						return
					}
					require.Len(t, res.Clusters, files)
					for _, c := range res.Clusters {
						assert.Len(t, c.Members, testutil.TotalDirectoryCount(depth, dirs)+1)
					}
				})
			}
		}
	}
}

func TestDuplicates_ClusterInvariants(t *testing.T) {
	base := t.TempDir()
	testutil.SetupDirectory(t, base, 2, 2, 3)
	testutil.WriteFile(t, filepath.Join(base, "empty_a"), nil)
	testutil.WriteFile(t, filepath.Join(base, "empty_b"), nil)
	testutil.WriteFile(t, filepath.Join(base, "dir_0", "a_much_longer_name.txt"), testutil.FileContent(1))

	outside := filepath.Join(t.TempDir(), "outside")
	testutil.WriteFile(t, filepath.Join(outside, "file_0.txt"), testutil.FileContent(0))
	for target, link := range map[string]string{
		filepath.Join(base, "file_1.txt"): filepath.Join(base, "file_link"),
		filepath.Join(base, "dir_1"):      filepath.Join(base, "dir_0", "dir_link"),
		outside:                           filepath.Join(base, "outside_link"),
	} {
		if err := os.Symlink(target, link); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}
	}

	tr, err := tree.New(base, tree.DefaultOptions().WithFollowSymlinks(true))
	require.NoError(t, err)
	require.Equal(t, 3, tr.SymlinkCount())

	res, err := Duplicates(context.Background(), tr, DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, res.Clusters)

	seen := make(map[string]bool)
	for _, c := range res.Clusters {
		require.GreaterOrEqual(t, len(c.Members), 2)
		for i, m := range c.Members {
			assert.True(t, m.IsRegular())
			assert.Equal(t, tree.KindFile, m.Kind(), "%s is not a regular file", m.Path())
			for _, other := range c.Members[:i] {
				assert.False(t, m.SameFile(other), "%s and %s are one file", m.Path(), other.Path())
			}
			assert.NotZero(t, m.Size())
			assert.Equal(t, c.Size, m.Size())
			sum, ok := m.Hash()
			require.True(t, ok)
			assert.Equal(t, c.Hash, sum)

			assert.False(t, seen[m.Path()], "%s appears in two clusters", m.Path())
			seen[m.Path()] = true

			if i > 0 {
				prev := c.Members[i-1]
				require.LessOrEqual(t, prev.Depth(), m.Depth())
				if prev.Depth() == m.Depth() {
					assert.GreaterOrEqual(t, len(prev.Name()), len(m.Name()))
				}
			}
		}
	}
}

func TestDuplicates_CanonicalOrderPrefersShallowThenLongName(t *testing.T) {
	base := t.TempDir()
	content := []byte("same content")
	testutil.WriteFile(t, filepath.Join(base, "deep", "deeper", "x.txt"), content)
	testutil.WriteFile(t, filepath.Join(base, "sub", "short.txt"), content)
	testutil.WriteFile(t, filepath.Join(base, "sub", "much_longer.txt"), content)

	res, err := Duplicates(context.Background(), scan(t, base), DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.Clusters, 1)
	assert.Equal(t, [][]string{{
		filepath.Join(base, "sub", "much_longer.txt"),
		filepath.Join(base, "sub", "short.txt"),
		filepath.Join(base, "deep", "deeper", "x.txt"),
	}}, clusterPaths(res.Clusters))
	assert.Equal(t, []*tree.Node{res.Clusters[0].Members[1], res.Clusters[0].Members[2]}, RemovalTargets(res.Clusters))
}

func TestDuplicates_FollowedSymlinkIsNotACopy(t *testing.T) {
	base := t.TempDir()
	testutil.WriteFile(t, filepath.Join(base, "real", "only.txt"), []byte("the only copy"))
	if err := os.Symlink(filepath.Join(base, "real"), filepath.Join(base, "alias")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	tr, err := tree.New(base, tree.DefaultOptions().WithFollowSymlinks(true))
	require.NoError(t, err)
	require.Equal(t, 2, tr.FileCount())

	res, err := Duplicates(context.Background(), tr, DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, res.Clusters)
	assert.Empty(t, RemovalTargets(res.Clusters))
}

func TestDuplicates_FollowedSymlinkKeepsRealCopies(t *testing.T) {
	base := t.TempDir()
	testutil.WriteFile(t, filepath.Join(base, "real", "a.txt"), []byte("twice"))
	testutil.WriteFile(t, filepath.Join(base, "real", "b.txt"), []byte("twice"))
	if err := os.Symlink(filepath.Join(base, "real"), filepath.Join(base, "alias")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	tr, err := tree.New(base, tree.DefaultOptions().WithFollowSymlinks(true))
	require.NoError(t, err)

	res, err := Duplicates(context.Background(), tr, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.Clusters, 1)
	c := res.Clusters[0]
	require.Len(t, c.Members, 2)
	assert.False(t, c.Members[0].SameFile(c.Members[1]))

	targets := RemovalTargets(res.Clusters)
	require.Len(t, targets, 1)
	require.NoError(t, os.Remove(targets[0].Path()))
	_, errA := os.Stat(filepath.Join(base, "real", "a.txt"))
	_, errB := os.Stat(filepath.Join(base, "real", "b.txt"))
	assert.True(t, errA == nil || errB == nil, "one real copy must survive")
}

func TestDuplicates_SameSizeDifferentContent(t *testing.T) {
	base := t.TempDir()
	testutil.WriteFile(t, filepath.Join(base, "a"), []byte("aaaa"))
	testutil.WriteFile(t, filepath.Join(base, "b"), []byte("bbbb"))
	testutil.WriteFile(t, filepath.Join(base, "c"), []byte("aaaa"))

	res, err := Duplicates(context.Background(), scan(t, base), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Hashed)
	require.Len(t, res.Clusters, 1)
	assert.ElementsMatch(t,
		[]string{filepath.Join(base, "a"), filepath.Join(base, "c")},
		clusterPaths(res.Clusters)[0])
}

func TestDuplicates_Idempotent(t *testing.T) {
	base := t.TempDir()
	testutil.SetupDirectory(t, base, 2, 3, 4)
	tr := scan(t, base)

	first, err := Duplicates(context.Background(), tr, DefaultOptions())
	require.NoError(t, err)
	second, err := Duplicates(context.Background(), tr, DefaultOptions().WithWorkers(1))
	require.NoError(t, err)

	assert.Equal(t, clusterPaths(first.Clusters), clusterPaths(second.Clusters))

	rescanned, err := Duplicates(context.Background(), scan(t, base), DefaultOptions().WithWorkers(3))
	require.NoError(t, err)
	assert.Equal(t, clusterPaths(first.Clusters), clusterPaths(rescanned.Clusters))
}

func TestDuplicates_MinSize(t *testing.T) {
	base := t.TempDir()
	testutil.WriteFile(t, filepath.Join(base, "small_a"), []byte("ab"))
	testutil.WriteFile(t, filepath.Join(base, "small_b"), []byte("ab"))
	testutil.WriteFile(t, filepath.Join(base, "big_a"), []byte("abcdefgh"))
	testutil.WriteFile(t, filepath.Join(base, "big_b"), []byte("abcdefgh"))

	res, err := Duplicates(context.Background(), scan(t, base), DefaultOptions().WithMinSize(4))
	require.NoError(t, err)

	require.Len(t, res.Clusters, 1)
	assert.Equal(t, int64(8), res.Clusters[0].Size)
}

func TestDuplicates_UnhashableFileIsExcluded(t *testing.T) {
	base := t.TempDir()
	testutil.WriteFile(t, filepath.Join(base, "a"), []byte("dup"))
	testutil.WriteFile(t, filepath.Join(base, "b"), []byte("dup"))
	testutil.WriteFile(t, filepath.Join(base, "c"), []byte("dup"))
	tr := scan(t, base)

	// Removed after the scan, so the node exists but cannot be opened.
	require.NoError(t, os.Remove(filepath.Join(base, "c")))

	res, err := Duplicates(context.Background(), tr, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Error(), filepath.Join(base, "c"))
	require.Len(t, res.Clusters, 1)
	assert.ElementsMatch(t,
		[]string{filepath.Join(base, "a"), filepath.Join(base, "b")},
		clusterPaths(res.Clusters)[0])
}

func TestDuplicates_CancelledContext(t *testing.T) {
	base := t.TempDir()
	testutil.SetupDirectory(t, base, 1, 2, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Duplicates(ctx, scan(t, base), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDuplicates_ReportsProgress(t *testing.T) {
	base := t.TempDir()
	testutil.SetupDirectory(t, base, 1, 2, 2)
	p := &countingProgress{}

	_, err := Duplicates(context.Background(), scan(t, base), DefaultOptions().WithWorkers(1).WithProgress(p))
	require.NoError(t, err)

	assert.True(t, p.started)
	assert.True(t, p.finished)
	assert.Equal(t, int64(6), p.total)
	assert.Equal(t, p.total, p.done)
}

func TestRedundantSize(t *testing.T) {
	clusters := []Cluster{
		{Size: 10, Members: make([]*tree.Node, 3)},
		{Size: 4, Members: make([]*tree.Node, 2)},
	}
	assert.Equal(t, int64(24), RedundantSize(clusters))
}
