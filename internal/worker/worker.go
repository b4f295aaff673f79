package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/Joik2ww/FileOrganizer/internal/checksum"
)

// Job is one file to hash.
type Job struct {
	Index int // position in the caller's slice, results are written back here
	Path  string
}

// Result represents the result of hashing one file
type Result struct {
	Job    Job
	Digest string
	Error  error
}

// ProgressFunc receives (done, total) as jobs complete.
type ProgressFunc func(done, total int)

// Pool manages concurrent hashing workers
type Pool struct {
	hasher        checksum.Hasher
	concurrency   int
	progress      ProgressFunc
	progressEvery int

	stats Stats
}

// NewPool creates a new worker pool. concurrency <= 0 means one worker per CPU.
func NewPool(hasher checksum.Hasher, concurrency int) *Pool {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if hasher == nil {
		hasher = checksum.SHA256Hasher{}
	}
	return &Pool{
		hasher:      hasher,
		concurrency: concurrency,
	}
}

// WithProgress reports every `every` completed jobs and once when all are done.
func (p *Pool) WithProgress(fn ProgressFunc, every int) *Pool {
	if every <= 0 {
		every = 1
	}
	p.progress = fn
	p.progressEvery = every
	return p
}

// Execute hashes every job and returns results in job order, regardless of
// completion order. A failed job never cancels its siblings. Jobs not started
// before ctx is cancelled get ctx.Err() as their error.
func (p *Pool) Execute(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	workers := p.concurrency
	if workers > len(jobs) {
		workers = len(jobs)
	}

	var done int64
	total := len(jobs)

	// Progress calls are serialized and see done in increasing order.
	var progressMu sync.Mutex
	tick := func() {
		if p.progress == nil {
			atomic.AddInt64(&done, 1)
			return
		}
		progressMu.Lock()
		defer progressMu.Unlock()
		n := atomic.AddInt64(&done, 1)
		if n%int64(p.progressEvery) == 0 || int(n) == total {
			p.progress(int(n), total)
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go p.worker(ctx, jobs, queue, results, tick, &wg)
	}
	wg.Wait()

	UpdateStats(&p.stats, results)
	return results
}

// worker processes jobs
func (p *Pool) worker(ctx context.Context, jobs []Job, queue <-chan int, results []Result, tick func(), wg *sync.WaitGroup) {
	defer wg.Done()

	for idx := range queue {
		job := jobs[idx]

		select {
		case <-ctx.Done():
			results[idx] = Result{Job: job, Error: ctx.Err()}
			tick()
			continue
		default:
		}

		digest, err := p.hasher.Digest(job.Path)
		results[idx] = Result{Job: job, Digest: digest, Error: err}
		tick()
	}
}

// Stats returns cumulative counters over every Execute call on this pool.
func (p *Pool) Stats() Stats {
	return Stats{
		Hashed: atomic.LoadInt64(&p.stats.Hashed),
		Errors: atomic.LoadInt64(&p.stats.Errors),
	}
}

// Stats tracks hashing statistics
type Stats struct {
	Hashed int64
	Errors int64
}

// UpdateStats updates statistics from results
func UpdateStats(stats *Stats, results []Result) {
	for _, result := range results {
		if result.Error != nil {
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}
		atomic.AddInt64(&stats.Hashed, 1)
	}
}
