package planner

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Phase1Candidates returns every file that shares its size with at least one
// other file, ordered by size and then walk order. Files with a unique size
// cannot have a duplicate and are never hashed.
func Phase1Candidates(buckets SizeBuckets) []FileRecord {
	sizes := make([]int64, 0, len(buckets))
	for size, files := range buckets {
		if len(files) > 1 {
			sizes = append(sizes, size)
		}
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })

	var candidates []FileRecord
	for _, size := range sizes {
		candidates = append(candidates, buckets[size]...)
	}
	return candidates
}

// Phase3BuildGroups regroups hashed files by (size, digest). Files whose hash
// failed are left out; only digests shared by 2+ files become groups.
func Phase3BuildGroups(hashes []HashData) []DuplicateGroup {
	type key struct {
		size   int64
		digest string
	}

	byKey := make(map[key][]FileRecord)
	for _, h := range hashes {
		if h.Err != nil || h.Digest == "" {
			continue
		}
		k := key{size: h.Record.Size, digest: h.Digest}
		byKey[k] = append(byKey[k], h.Record)
	}

	groups := make([]DuplicateGroup, 0)
	for k, files := range byKey {
		if len(files) < 2 {
			continue
		}
		groups = append(groups, DuplicateGroup{
			Digest: k.digest,
			Size:   k.size,
			Files:  SortByModTime(files),
		})
	}

	sortGroups(groups)
	return groups
}

// SortByModTime returns a copy of files ordered by modification time, oldest
// first. Equal times are ordered by path, so the result does not depend on
// input order.
func SortByModTime(files []FileRecord) []FileRecord {
	sorted := make([]FileRecord, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ModTime.Equal(sorted[j].ModTime) {
			return sorted[i].ModTime.Before(sorted[j].ModTime)
		}
		return sorted[i].Path < sorted[j].Path
	})
	return sorted
}

// sortGroups orders groups by size, largest first, then by digest.
func sortGroups(groups []DuplicateGroup) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Size != groups[j].Size {
			return groups[i].Size > groups[j].Size
		}
		return groups[i].Digest < groups[j].Digest
	})
}

// Summarize computes what resolving groups would remove and reclaim.
func Summarize(groups []DuplicateGroup) Summary {
	s := Summary{Groups: len(groups)}
	for _, g := range groups {
		extra := len(g.Files) - 1
		s.DuplicateFiles += extra
		s.ReclaimableBytes += int64(extra) * g.Size
	}
	return s
}

// BuildPlan applies the resolution policy to every group and lists the
// resulting keep and delete actions, group by group.
func BuildPlan(groups []DuplicateGroup, keepOldest bool) []Item {
	items := []Item{}

	for _, g := range groups {
		d := Choose(g, keepOldest)

		keepReason := "newest copy"
		if keepOldest {
			keepReason = "oldest copy"
		}
		items = append(items, Item{
			Action:  ActionKeep,
			Path:    d.Keep.Path,
			Size:    d.Keep.Size,
			ModTime: d.Keep.ModTime,
			Digest:  g.Digest,
			Reason:  keepReason,
		})

		for _, r := range d.Remove {
			items = append(items, Item{
				Action:  ActionDelete,
				Path:    r.Path,
				Size:    r.Size,
				ModTime: r.ModTime,
				Digest:  g.Digest,
				Reason:  fmt.Sprintf("duplicate of %s", filepath.Base(d.Keep.Path)),
			})
		}
	}

	return items
}
