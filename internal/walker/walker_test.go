package walker

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joik2ww/FileOrganizer/internal/errors"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func relPaths(t *testing.T, root string, buckets Buckets) []string {
	t.Helper()
	var out []string
	for _, recs := range buckets {
		for _, r := range recs {
			rel, err := filepath.Rel(root, r.Path)
			require.NoError(t, err)
			out = append(out, filepath.ToSlash(rel))
		}
	}
	sort.Strings(out)
	return out
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":                "xx",
		"b.txt":                "yy",
		"c.txt":                "zzz",
		"sub/d.txt":            "ww",
		"sub/deeper/e.txt":     "vvvv",
		"node_modules/pkg.js":  "js",
		"cache/tmp.log":        "log",
		"sub/deeper/notes.log": "lg",
	})

	tests := []struct {
		name      string
		opts      Options
		wantFiles []string
	}{
		{
			name:      "top level only",
			opts:      Options{},
			wantFiles: []string{"a.txt", "b.txt", "c.txt"},
		},
		{
			name: "recursive",
			opts: Options{Recursive: true},
			wantFiles: []string{
				"a.txt", "b.txt", "c.txt", "cache/tmp.log", "node_modules/pkg.js",
				"sub/d.txt", "sub/deeper/e.txt", "sub/deeper/notes.log",
			},
		},
		{
			name: "exclude directory and glob",
			opts: Options{Recursive: true, Excludes: []string{"node_modules/", "**/*.log"}},
			wantFiles: []string{
				"a.txt", "b.txt", "c.txt", "sub/d.txt", "sub/deeper/e.txt",
			},
		},
		{
			name:      "min size",
			opts:      Options{Recursive: true, MinSize: 3},
			wantFiles: []string{"c.txt", "cache/tmp.log", "sub/deeper/e.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWalker(root, tt.opts)
			require.NoError(t, err)

			buckets, stats, err := w.Scan(context.Background())
			require.NoError(t, err)

			assert.Equal(t, tt.wantFiles, relPaths(t, root, buckets))
			assert.Equal(t, stats.Total, stats.Processed)
			assert.Equal(t, stats.Recorded+stats.Filtered+stats.Skipped, stats.Processed)
		})
	}
}

func TestScan_BucketsBySize(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a": "12345",
		"b": "abcde",
		"c": "1",
	})

	w, err := NewWalker(root, Options{})
	require.NoError(t, err)
	buckets, _, err := w.Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, buckets, 2)
	require.Len(t, buckets[5], 2)
	assert.Equal(t, filepath.Join(root, "a"), buckets[5][0].Path, "walk order is lexical")
	assert.Equal(t, filepath.Join(root, "b"), buckets[5][1].Path)
	assert.Len(t, buckets[1], 1)
	assert.True(t, filepath.IsAbs(buckets[1][0].Path))
	assert.False(t, buckets[1][0].ModTime.IsZero())
}

func TestScan_EmptyDirectory(t *testing.T) {
	w, err := NewWalker(t.TempDir(), Options{Recursive: true})
	require.NoError(t, err)

	var calls [][2]int
	w.opts.Progress = func(p, total int) { calls = append(calls, [2]int{p, total}) }

	buckets, stats, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, buckets)
	assert.Equal(t, Stats{}, stats)
	assert.LessOrEqual(t, len(calls), 1)
}

func TestScan_ProgressCadence(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{}
	for i := 0; i < 25; i++ {
		files[filepath.Join("d", string(rune('a'+i))+".txt")] = "x"
	}
	writeTree(t, root, files)

	var calls [][2]int
	w, err := NewWalker(root, Options{
		Recursive:     true,
		ProgressEvery: 10,
		Progress:      func(p, total int) { calls = append(calls, [2]int{p, total}) },
	})
	require.NoError(t, err)

	_, _, err = w.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{10, 25}, {20, 25}, {25, 25}}, calls)
}

func TestScan_IgnoresSymlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real.txt": "data"})
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	w, err := NewWalker(root, Options{})
	require.NoError(t, err)
	buckets, stats, err := w.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"real.txt"}, relPaths(t, root, buckets))
	assert.Equal(t, 1, stats.Total)
}

func TestScan_SymlinkedRootIsFollowed(t *testing.T) {
	target := t.TempDir()
	writeTree(t, target, map[string]string{"a.txt": "same", "b.txt": "same"})
	link := filepath.Join(t.TempDir(), "photos")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	w, err := NewWalker(link, Options{})
	require.NoError(t, err)
	assert.Equal(t, target, w.Root())

	buckets, stats, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, []string{"a.txt", "b.txt"}, relPaths(t, target, buckets))
}

func TestResolveRoot(t *testing.T) {
	target := t.TempDir()
	link := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := ResolveRoot(link)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	_, err = ResolveRoot(filepath.Join(target, "missing"))
	assert.Equal(t, errors.ErrNotFound, errors.GetCode(err))
}

func TestScan_UnreadableSubdirectoryIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"ok.txt":        "a",
		"locked/no.txt": "b",
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	var skipped []string
	w, err := NewWalker(root, Options{
		Recursive: true,
		OnSkip:    func(path string, err error) { skipped = append(skipped, path) },
	})
	require.NoError(t, err)
	buckets, _, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ok.txt"}, relPaths(t, root, buckets))
	assert.Contains(t, skipped, locked)
}

func TestScan_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a": "1"})

	w, err := NewWalker(root, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = w.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewWalker_Errors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name string
		root string
		opts Options
		code errors.ErrorCode
	}{
		{"missing", filepath.Join(root, "nope"), Options{}, errors.ErrNotFound},
		{"not a directory", file, Options{}, errors.ErrNotDirectory},
		{"bad pattern", root, Options{Excludes: []string{"[unterminated"}}, errors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWalker(tt.root, tt.opts)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}
