package p4c

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirNonExistentPath(t *testing.T) {
	_, err := Dir("/this/path/does/not/exist/at/all")
	assert.Error(t, err)
}

func TestDirNotADirectory(t *testing.T) {
	_, err := Dir("testdata/programs/basic.yaml")
	assert.Error(t, err)
}

func TestDirPrograms(t *testing.T) {
	src, err := Dir("testdata/programs")
	require.NoError(t, err)

	names, err := src.Programs()
	require.NoError(t, err)
	assert.Equal(t, []string{"basic", "l2"}, names)

	r, path, err := src.Find("l2")
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, filepath.Join("testdata", "programs", "l2.json"), path)

	_, _, err = src.Find("broken")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDirWithExtensions(t *testing.T) {
	src, err := Dir("testdata/programs", WithExtensions(".json"))
	require.NoError(t, err)
	names, err := src.Programs()
	require.NoError(t, err)
	assert.Equal(t, []string{"l2"}, names)
}

func TestDirTreeIndexesNested(t *testing.T) {
	src, err := DirTree("testdata/programs")
	require.NoError(t, err)

	names, err := src.Programs()
	require.NoError(t, err)
	assert.Equal(t, []string{"basic", "broken", "l2"}, names)

	r, path, err := src.Find("broken")
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, filepath.Join("testdata", "programs", "nested", "broken.yaml"), path)
}

func TestDirTreeNotADirectory(t *testing.T) {
	_, err := DirTree("testdata/programs/basic.yaml")
	assert.Error(t, err)
}

func TestFSSource(t *testing.T) {
	fsys := fstest.MapFS{
		"a/one.yaml":  {Data: []byte("name: one\n")},
		"b/one.yml":   {Data: []byte("name: shadowed\n")},
		"two.json":    {Data: []byte("{}")},
		"readme.md":   {Data: []byte("# programs")},
		"c/three.YML": {Data: []byte("name: three\n")},
	}
	src := FS("mem", fsys)

	names, err := src.Programs()
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "three", "two"}, names)

	r, path, err := src.Find("one")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "mem:a/one.yaml", path)
	assert.Equal(t, "name: one\n", string(data))

	_, _, err = src.Find("readme")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMultiSource(t *testing.T) {
	first := FS("first", fstest.MapFS{"x.yaml": {Data: []byte("name: first\n")}})
	second := FS("second", fstest.MapFS{
		"x.yaml": {Data: []byte("name: second\n")},
		"y.yaml": {Data: []byte("name: y\n")},
	})
	src := Multi(first, second)

	names, err := src.Programs()
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, names)

	r, path, err := src.Find("x")
	require.NoError(t, err)
	r.Close()
	assert.Equal(t, "first:x.yaml", path)

	_, path, err = src.Find("y")
	require.NoError(t, err)
	assert.Equal(t, "second:y.yaml", path)

	_, _, err = src.Find("z")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestConvertAll(t *testing.T) {
	src, err := DirTree("testdata/programs")
	require.NoError(t, err)

	results, err := ConvertAll(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "basic", results[0].Name)
	assert.NoError(t, results[0].Err)
	assert.Contains(t, results[0].Result.Program.String(), "table dmac {")

	assert.Equal(t, "broken", results[1].Name)
	assert.ErrorIs(t, results[1].Err, ErrInvariant)
	assert.Nil(t, results[1].Result)

	assert.Equal(t, "l2", results[2].Name)
	assert.NoError(t, results[2].Err)
	assert.Contains(t, results[2].Result.Program.String(), "table t {")
}

func TestConvertAllEmbedded(t *testing.T) {
	data, err := os.ReadFile("testdata/programs/l2.json")
	require.NoError(t, err)
	src := FS("mem", fstest.MapFS{"sw/l2.json": {Data: data}})

	results, err := ConvertAll(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mem:sw/l2.json", results[0].Path)
	require.NoError(t, results[0].Err)
}

func TestConvertAllNoSource(t *testing.T) {
	_, err := ConvertAll(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestConvertAllCancelled(t *testing.T) {
	src, err := Dir("testdata/programs")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = ConvertAll(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
}
