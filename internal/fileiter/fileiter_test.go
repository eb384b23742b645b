package fileiter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lakequery/splitloader/fs"
)

func TestFileIteratorFiltersHiddenEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visible.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden-dot"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_hidden-underscore"), []byte("c"), 0o644))

	local := fs.NewLocal()
	it := New(dir, local, "p1", nil, nil, nil, nil, nil)

	ctx := context.Background()
	var seen []string
	for {
		hasNext, err := it.HasNext(ctx)
		require.NoError(t, err)
		if !hasNext {
			break
		}
		entry, err := it.Next(ctx)
		require.NoError(t, err)
		seen = append(seen, BaseName(entry.Path))
	}

	require.Equal(t, []string{"visible.txt"}, seen)
}

func TestFileIteratorReportsDirectoriesWithoutRecursing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("x"), 0o644))

	local := fs.NewLocal()
	it := New(dir, local, "p1", nil, nil, nil, nil, nil)

	ctx := context.Background()
	found := map[string]bool{}
	for {
		hasNext, err := it.HasNext(ctx)
		require.NoError(t, err)
		if !hasNext {
			break
		}
		entry, err := it.Next(ctx)
		require.NoError(t, err)
		found[BaseName(entry.Path)] = entry.IsDir
	}

	require.Equal(t, map[string]bool{"subdir": true, "file.txt": false}, found)
}

func TestIsHidden(t *testing.T) {
	require.True(t, IsHidden(".hidden"))
	require.True(t, IsHidden("_hidden"))
	require.False(t, IsHidden("visible"))
}
