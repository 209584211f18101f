package storage

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1F47E/go-iconreel/pkg/errs"
	"github.com/1F47E/go-iconreel/pkg/imaging"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "Icon.png")

	require.NoError(t, WriteAtomic(path, []byte("first")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)

	require.NoError(t, WriteAtomic(path, []byte("second")))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	// no temp leftovers
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomicFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	// target is an existing directory, rename over it fails
	path := filepath.Join(dir, "Icon.png")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "inner"), os.ModePerm))

	err := WriteAtomic(path, []byte("data"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrIOFailure)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsDir())
}

func TestTempSiblingCommit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Output", "Icon_8x8.gif")

	tmp, err := TempSibling(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(path), filepath.Dir(tmp))
	assert.Equal(t, ".gif", filepath.Ext(tmp))
	assert.NoFileExists(t, path)

	require.NoError(t, os.WriteFile(tmp, []byte("gif"), 0o600))
	require.NoError(t, Commit(tmp, path))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("gif"), got)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCommitFailureDiscardsTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Icon.gif")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "inner"), os.ModePerm))

	tmp, err := TempSibling(path)
	require.NoError(t, err)
	assert.ErrorIs(t, Commit(tmp, path), errs.ErrIOFailure)
	assert.NoFileExists(t, tmp)

	// missing file is fine
	Discard(tmp)
}

func TestEnsureDirOverFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	err := EnsureDir(filepath.Join(file, "sub"))
	assert.ErrorIs(t, err, errs.ErrIOFailure)
	assert.NoError(t, EnsureDir(""))
}

func TestFramesLifecycle(t *testing.T) {
	root := t.TempDir()
	dir, err := CreateFramesDir(root)
	require.NoError(t, err)

	data, err := imaging.Encode(imaging.Solid(8, color.NRGBA{10, 20, 30, 255}), imaging.PNG)
	require.NoError(t, err)

	for _, n := range []int{10, 2, 1, 9} {
		_, err := SaveFrame(dir, n, data)
		require.NoError(t, err)
	}
	// not a frame
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	files, err := ScanFrames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "pic1.png"),
		filepath.Join(dir, "pic2.png"),
		filepath.Join(dir, "pic9.png"),
		filepath.Join(dir, "pic10.png"),
	}, files)

	buf, err := FrameRead(files[0])
	require.NoError(t, err)
	assert.Equal(t, 8, buf.Width())

	imgs, err := FramesRead(files)
	require.NoError(t, err)
	assert.Len(t, imgs, 4)

	assert.Equal(t, filepath.Join(dir, "pic%0d.png"), FramePattern(dir))

	require.NoError(t, CleanFrames(dir))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestScanFramesEmpty(t *testing.T) {
	_, err := ScanFrames(t.TempDir())
	assert.ErrorIs(t, err, errs.ErrIOFailure)
}
