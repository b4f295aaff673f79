package planner

import (
	"context"
	"time"

	"github.com/Joik2ww/FileOrganizer/internal/checksum"
	"github.com/Joik2ww/FileOrganizer/internal/walker"
	"github.com/Joik2ww/FileOrganizer/pkg/logger"
)

// FileRecord is a file snapshot taken at scan time.
type FileRecord = walker.FileRecord

// SizeBuckets maps a byte size to the files of that size, in walk order.
type SizeBuckets = walker.Buckets

type Grouper interface {
	Group(ctx context.Context, buckets SizeBuckets) ([]DuplicateGroup, GroupStats)
}

// Phase names passed to ProgressFunc.
type Phase string

const (
	PhaseScan Phase = "scan"
	PhaseHash Phase = "hash"
)

// ProgressFunc receives (done, total) for a phase at a bounded cadence.
type ProgressFunc func(phase Phase, done, total int)

// DuplicateGroup is a set of two or more files with identical size and digest.
// Files are ordered by modification time, oldest first, ties by path.
type DuplicateGroup struct {
	Digest string
	Size   int64
	Files  []FileRecord
}

// Failure records a file that could not be hashed or removed.
type Failure struct {
	Path string
	Err  error
}

// GroupStats describes the hashing phase.
type GroupStats struct {
	Candidates int // files in buckets with 2+ members
	Hashed     int
	Failures   []Failure
}

// Options controls scanning and grouping.
type Options struct {
	Recursive   bool
	Excludes    []string
	MinSize     int64
	Concurrency int
	Hasher      checksum.Hasher

	Progress          ProgressFunc
	ScanProgressEvery int
	HashProgressEvery int

	Logger logger.Logger
}

// Summary is what a set of groups would reclaim if resolved.
type Summary struct {
	Groups           int   `json:"groups" yaml:"groups"`
	DuplicateFiles   int   `json:"duplicate_files" yaml:"duplicate_files"`
	ReclaimableBytes int64 `json:"reclaimable_bytes" yaml:"reclaimable_bytes"`
}

// Decision is the outcome of the resolution policy for one group.
type Decision struct {
	Keep   FileRecord
	Remove []FileRecord
}

type Action string

const (
	ActionKeep   Action = "keep"
	ActionDelete Action = "delete"
)

// Item is one line of a resolution plan.
type Item struct {
	Action  Action
	Path    string
	Size    int64
	ModTime time.Time
	Digest  string
	Reason  string
}

// ScanResult is everything FindDuplicates learned about a directory.
type ScanResult struct {
	Root       string
	Groups     []DuplicateGroup
	ScanStats  walker.Stats
	GroupStats GroupStats
}
