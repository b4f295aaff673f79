package planner

import (
	"context"

	"github.com/Joik2ww/FileOrganizer/internal/errors"
	"github.com/Joik2ww/FileOrganizer/internal/walker"
	"github.com/Joik2ww/FileOrganizer/internal/worker"
	"github.com/Joik2ww/FileOrganizer/pkg/logger"
)

// DefaultHashProgressEvery is how many hashed files pass between progress
// callbacks.
const DefaultHashProgressEvery = 10

// HashGrouper turns size buckets into duplicate groups by hashing every file
// whose size is shared.
type HashGrouper struct {
	pool   *worker.Pool
	logger logger.Logger
}

// NewHashGrouper builds a grouper from opts. Only the hashing fields of opts
// are used.
func NewHashGrouper(opts Options) *HashGrouper {
	log := opts.Logger
	if log == nil {
		log = logger.NullLogger{}
	}

	every := opts.HashProgressEvery
	if every <= 0 {
		every = DefaultHashProgressEvery
	}

	pool := worker.NewPool(opts.Hasher, opts.Concurrency)
	if opts.Progress != nil {
		progress := opts.Progress
		pool.WithProgress(func(done, total int) {
			progress(PhaseHash, done, total)
		}, every)
	}

	return &HashGrouper{pool: pool, logger: log}
}

// Group hashes candidates concurrently and returns the duplicate groups.
// A file that cannot be read is reported in the stats and excluded; its
// siblings are still grouped.
func (g *HashGrouper) Group(ctx context.Context, buckets SizeBuckets) ([]DuplicateGroup, GroupStats) {
	candidates := Phase1Candidates(buckets)
	stats := GroupStats{Candidates: len(candidates)}

	g.logger.PhaseStart(string(PhaseHash), len(candidates))
	hashes := g.Phase2Hash(ctx, candidates)

	for _, h := range hashes {
		if h.Err != nil {
			err := errors.Wrapf(h.Err, errors.ErrHash, "hash %s", h.Record.Path)
			stats.Failures = append(stats.Failures, Failure{Path: h.Record.Path, Err: err})
			g.logger.Error("hash", h.Record.Path, err)
			continue
		}
		stats.Hashed++
	}
	g.logger.PhaseComplete(string(PhaseHash), stats.Hashed)

	return Phase3BuildGroups(hashes), stats
}

// Phase2Hash computes a digest for every candidate, in candidate order.
func (g *HashGrouper) Phase2Hash(ctx context.Context, candidates []FileRecord) []HashData {
	jobs := make([]worker.Job, len(candidates))
	for i, c := range candidates {
		jobs[i] = worker.Job{Index: i, Path: c.Path}
	}

	results := g.pool.Execute(ctx, jobs)

	hashes := make([]HashData, len(results))
	for i, r := range results {
		hashes[i] = HashData{
			Record: candidates[r.Job.Index],
			Digest: r.Digest,
			Err:    r.Error,
		}
	}
	return hashes
}

// FindDuplicates scans root, then hashes and groups every file whose size is
// shared with another. Only errors that prevent scanning root are returned;
// per-file failures are logged and counted.
func FindDuplicates(ctx context.Context, root string, opts Options) (*ScanResult, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NullLogger{}
		opts.Logger = log
	}

	walkOpts := walker.Options{
		Recursive:     opts.Recursive,
		Excludes:      opts.Excludes,
		MinSize:       opts.MinSize,
		ProgressEvery: opts.ScanProgressEvery,
		OnSkip: func(path string, err error) {
			log.Error("scan", path, err)
		},
	}
	if opts.Progress != nil {
		progress := opts.Progress
		walkOpts.Progress = func(processed, total int) {
			progress(PhaseScan, processed, total)
		}
	}

	w, err := walker.NewWalker(root, walkOpts)
	if err != nil {
		return nil, err
	}

	log.PhaseStart(string(PhaseScan), 0)
	buckets, scanStats, err := w.Scan(ctx)
	if err != nil {
		return nil, err
	}
	log.PhaseComplete(string(PhaseScan), scanStats.Processed)

	groups, groupStats := NewHashGrouper(opts).Group(ctx, buckets)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &ScanResult{
		Root:       w.Root(),
		Groups:     groups,
		ScanStats:  scanStats,
		GroupStats: groupStats,
	}, nil
}
