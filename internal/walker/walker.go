package walker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Joik2ww/FileOrganizer/internal/errors"
)

// DefaultProgressEvery is how many files pass between progress callbacks.
const DefaultProgressEvery = 100

// FileRecord is a snapshot of a regular file taken at scan time.
type FileRecord struct {
	Path    string // Absolute path
	Size    int64
	ModTime time.Time
}

// Buckets groups scanned files by exact byte size, in walk order.
type Buckets map[int64][]FileRecord

// ProgressFunc receives (processed, total) at a bounded cadence.
type ProgressFunc func(processed, total int)

// Options controls a scan.
type Options struct {
	Recursive     bool
	Excludes      []string // doublestar patterns relative to root; "dir/" prunes a subtree
	MinSize       int64    // smaller files are counted but not bucketed
	Progress      ProgressFunc
	ProgressEvery int
	// OnSkip is told about every file or directory skipped because of an I/O
	// error. It may be nil.
	OnSkip func(path string, err error)
}

// Stats describes what a scan saw.
type Stats struct {
	Total     int // from the counting pass
	Processed int // files visited in the bucket pass, including skipped ones
	Recorded  int // files placed in a bucket
	Skipped   int // files that could not be stat'ed
	Filtered  int // files below MinSize
}

// Walker walks one directory and buckets its regular files by size.
type Walker struct {
	root string
	opts Options
}

// ResolveRoot returns root as an absolute path with symlinks evaluated.
// Callers that guard the root must check the resolved path, since that is
// what gets walked.
func ResolveRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "resolve %s", root)
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(err, errors.ErrNotFound, "directory not found: %s", absRoot)
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "resolve root %s", absRoot)
	}
	return resolved, nil
}

// NewWalker creates a new file walker. A symlinked root is followed.
func NewWalker(root string, opts Options) (*Walker, error) {
	absRoot, err := ResolveRoot(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrNotFound, "directory not found: %s", absRoot)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "stat root %s", absRoot)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrNotDirectory, "root is not a directory: %s", absRoot)
	}

	for _, p := range opts.Excludes {
		if !doublestar.ValidatePattern(strings.TrimSuffix(p, "/")) {
			return nil, errors.Newf(errors.ErrInvalidInput, "invalid exclude pattern %q", p)
		}
	}

	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}

	return &Walker{root: absRoot, opts: opts}, nil
}

// Root returns the absolute root directory with symlinks resolved.
func (w *Walker) Root() string {
	return w.root
}

// Count returns how many candidate files the bucket pass will visit.
func (w *Walker) Count(ctx context.Context) (int, error) {
	total := 0
	err := w.walk(ctx, func(string, fs.DirEntry) {
		total++
	})
	return total, err
}

// Scan counts candidate files, then visits each one and buckets it by size.
// A file that cannot be stat'ed is skipped; it still advances the processed
// counter. Only failure to read the root itself aborts the scan.
func (w *Walker) Scan(ctx context.Context) (Buckets, Stats, error) {
	var stats Stats

	total, err := w.Count(ctx)
	if err != nil {
		return nil, stats, err
	}
	stats.Total = total

	buckets := make(Buckets)
	lastReported := -1

	report := func() {
		if w.opts.Progress == nil {
			return
		}
		t := stats.Total
		if stats.Processed > t {
			t = stats.Processed
		}
		w.opts.Progress(stats.Processed, t)
		lastReported = stats.Processed
	}

	err = w.walk(ctx, func(path string, d fs.DirEntry) {
		stats.Processed++
		defer func() {
			if stats.Processed%w.opts.ProgressEvery == 0 {
				report()
			}
		}()

		info, err := d.Info()
		if err != nil {
			stats.Skipped++
			w.skipped(path, err)
			return
		}
		if !info.Mode().IsRegular() {
			stats.Skipped++
			return
		}
		if info.Size() < w.opts.MinSize {
			stats.Filtered++
			return
		}

		buckets[info.Size()] = append(buckets[info.Size()], FileRecord{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		stats.Recorded++
	})
	if err != nil {
		return nil, stats, err
	}

	// The tree may have changed between the two passes.
	if stats.Processed != stats.Total {
		stats.Total = stats.Processed
	}
	if lastReported != stats.Processed {
		report()
	}

	return buckets, stats, nil
}

// walk calls visit for every regular, non-excluded file under the root in
// lexical order. Unreadable subdirectories are skipped.
func (w *Walker) walk(ctx context.Context, visit func(path string, d fs.DirEntry)) error {
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == w.root {
				return errors.Wrapf(err, errors.ErrFileAccess, "read root %s", w.root)
			}
			w.skipped(path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == w.root {
			return nil
		}

		relPath, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if !w.opts.Recursive || w.isExcludedDir(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks, devices and sockets are never candidates.
		if !d.Type().IsRegular() {
			return nil
		}

		if w.isExcluded(relPath) {
			return nil
		}

		visit(path, d)
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

func (w *Walker) skipped(path string, err error) {
	if w.opts.OnSkip != nil {
		w.opts.OnSkip(path, err)
	}
}

// isExcluded checks if a file path matches any exclude pattern
func (w *Walker) isExcluded(path string) bool {
	for _, pattern := range w.opts.Excludes {
		if strings.HasSuffix(pattern, "/") {
			continue
		}
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}

// isExcludedDir checks if a directory should be pruned. Both "dir/" and "dir"
// patterns prune.
func (w *Walker) isExcludedDir(path string) bool {
	for _, pattern := range w.opts.Excludes {
		dirPattern := strings.TrimSuffix(pattern, "/")
		if matched, _ := doublestar.Match(dirPattern, path); matched {
			return true
		}
	}
	return false
}
