package discovery

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// touch creates an empty file, making parent directories as needed
func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, nil, 0644))
}

func TestWalkFiltersByExtension(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "A01f00d0.TIF"))
	touch(t, filepath.Join(root, "A01f00d1.TIF"))
	touch(t, filepath.Join(root, "readme.txt"))
	touch(t, filepath.Join(root, "lower.tif"))

	paths, err := Collect(root, ".TIF")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "A01f00d0.TIF"),
		filepath.Join(root, "A01f00d1.TIF"),
	}, paths)
}

func TestWalkDescendsAndNeverYieldsDirectories(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "plate", "x_A01f00d0.TIF"))
	touch(t, filepath.Join(root, "plate", "deeper", "still", "x_B02f01d2.TIF"))
	// a directory whose name carries the target extension
	require.NoError(t, os.MkdirAll(filepath.Join(root, "odd.TIF", "inner"), 0755))
	touch(t, filepath.Join(root, "odd.TIF", "inner", "x_C03f02d1.TIF"))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0755))

	paths, err := Collect(root, ".TIF")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "plate", "x_A01f00d0.TIF"),
		filepath.Join(root, "plate", "deeper", "still", "x_B02f01d2.TIF"),
		filepath.Join(root, "odd.TIF", "inner", "x_C03f02d1.TIF"),
	}, paths)

	seen := map[string]int{}
	for _, p := range paths {
		seen[p]++
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.False(t, info.IsDir(), "yielded a directory: %s", p)
	}
	for p, n := range seen {
		assert.Equal(t, 1, n, "yielded more than once: %s", p)
	}
}

// symlink creates a symbolic link or skips the test where that is not allowed
func symlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

func TestWalkFollowsSymlinkedDirectories(t *testing.T) {
	outside := t.TempDir()
	touch(t, filepath.Join(outside, "plate", "x_A01f00d0.TIF"))
	touch(t, filepath.Join(outside, "other", "x_B02f00d0.TIF"))

	root := t.TempDir()
	symlink(t, filepath.Join(outside, "plate"), filepath.Join(root, "linked"))
	// a link to a directory whose name carries the target extension
	symlink(t, filepath.Join(outside, "other"), filepath.Join(root, "odd.TIF"))

	paths, err := Collect(root, ".TIF")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "linked", "x_A01f00d0.TIF"),
		filepath.Join(root, "odd.TIF", "x_B02f00d0.TIF"),
	}, paths)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.False(t, info.IsDir(), "yielded a directory: %s", p)
	}
}

func TestWalkSymlinkLoopTerminates(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "sub", "x_A01f00d0.TIF"))
	symlink(t, root, filepath.Join(root, "sub", "loop"))
	symlink(t, filepath.Join(root, "sub"), filepath.Join(root, "again"))

	paths, err := Collect(root, ".TIF")
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestWalkDanglingSymlinkIsSkipped(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "x_A01f00d0.TIF"))
	symlink(t, filepath.Join(root, "gone"), filepath.Join(root, "broken.txt"))

	paths, err := Collect(root, ".TIF")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "x_A01f00d0.TIF")}, paths)
}

func TestWalkIsRestartable(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a", "x_A01f00d0.TIF"))

	seq := Walk(root, ".TIF")
	count := func() int {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		return n
	}
	assert.Equal(t, 1, count())

	touch(t, filepath.Join(root, "b", "x_A01f00d1.TIF"))
	assert.Equal(t, 2, count())
}

func TestWalkStopsEarly(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.TIF", "b.TIF", "c.TIF"} {
		touch(t, filepath.Join(root, name))
	}

	n := 0
	for range Walk(root, ".TIF") {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := Collect(filepath.Join(t.TempDir(), "nope"), ".TIF")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestWalkRootIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "x_A01f00d0.TIF")
	touch(t, file)

	_, err := Collect(file, ".TIF")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotDirectory)

	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, file, pathErr.Path)
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, ".TIF", Suffix("MFGTMP_220411120001_A01f00d0.TIF"))
	assert.Equal(t, ".TIF", Suffix("archive.tar.TIF"))
	assert.Equal(t, "", Suffix(".TIF"))
	assert.Equal(t, "", Suffix("README"))
}
