package planner

import (
	"strings"

	"github.com/Joik2ww/FileOrganizer/internal/errors"
)

const (
	KeepOldest = "oldest"
	KeepNewest = "newest"
)

// Choose decides which member of g to retain. Members are ordered by
// modification time; keepOldest retains the first, otherwise the last.
// Every other member is returned for removal.
func Choose(g DuplicateGroup, keepOldest bool) Decision {
	files := SortByModTime(g.Files)
	if len(files) == 0 {
		return Decision{}
	}

	if keepOldest {
		return Decision{Keep: files[0], Remove: files[1:]}
	}
	last := len(files) - 1
	return Decision{Keep: files[last], Remove: files[:last]}
}

// ParseKeep maps "oldest" or "newest" to the keepOldest flag.
func ParseKeep(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case KeepOldest, "":
		return true, nil
	case KeepNewest:
		return false, nil
	default:
		return false, errors.Newf(errors.ErrInvalidInput, "keep must be %q or %q, got %q", KeepOldest, KeepNewest, s)
	}
}

// KeepName is the inverse of ParseKeep.
func KeepName(keepOldest bool) string {
	if keepOldest {
		return KeepOldest
	}
	return KeepNewest
}
