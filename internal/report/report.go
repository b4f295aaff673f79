package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Joik2ww/FileOrganizer/internal/errors"
	"github.com/Joik2ww/FileOrganizer/pkg/executor"
	"github.com/Joik2ww/FileOrganizer/pkg/planner"
)

// Report is written to --report-file, either before resolution (a plan) or
// after it (a result).
type Report struct {
	RunID   string      `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Root    string      `json:"root" yaml:"root"`
	Keep    string      `json:"keep" yaml:"keep"`
	DryRun  bool        `json:"dry_run" yaml:"dry_run"`
	Summary Summary     `json:"summary" yaml:"summary"`
	Files   []File      `json:"files" yaml:"files"`
	Errors  []ErrorFile `json:"errors" yaml:"errors"`
}

type Summary struct {
	Groups           int   `json:"groups" yaml:"groups"`
	DuplicateFiles   int   `json:"duplicate_files" yaml:"duplicate_files"`
	ReclaimableBytes int64 `json:"reclaimable_bytes" yaml:"reclaimable_bytes"`
	Deleted          int   `json:"deleted" yaml:"deleted"`
	BytesReclaimed   int64 `json:"bytes_reclaimed" yaml:"bytes_reclaimed"`
	Skipped          int   `json:"skipped" yaml:"skipped"`
	Failed           int   `json:"failed" yaml:"failed"`
}

type File struct {
	Action string `json:"action" yaml:"action"` // "keep", "delete", "deleted"
	Path   string `json:"path" yaml:"path"`
	Size   int64  `json:"size" yaml:"size"`
	Digest string `json:"digest" yaml:"digest"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

type ErrorFile struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// FromPlan describes what resolving groups with the given policy would do.
func FromPlan(root string, groups []planner.DuplicateGroup, keepOldest, dryRun bool) Report {
	s := planner.Summarize(groups)
	r := Report{
		Root:   root,
		Keep:   planner.KeepName(keepOldest),
		DryRun: dryRun,
		Summary: Summary{
			Groups:           s.Groups,
			DuplicateFiles:   s.DuplicateFiles,
			ReclaimableBytes: s.ReclaimableBytes,
		},
		Files:  []File{},
		Errors: []ErrorFile{},
	}

	for _, item := range planner.BuildPlan(groups, keepOldest) {
		r.Files = append(r.Files, File{
			Action: string(item.Action),
			Path:   item.Path,
			Size:   item.Size,
			Digest: item.Digest,
			Reason: item.Reason,
		})
	}
	return r
}

// FromOutcome describes what a resolution run actually did.
func FromOutcome(root string, groups []planner.DuplicateGroup, keepOldest bool, out executor.Outcome) Report {
	s := planner.Summarize(groups)
	r := Report{
		Root:   root,
		Keep:   planner.KeepName(keepOldest),
		DryRun: out.DryRun,
		Summary: Summary{
			Groups:           s.Groups,
			DuplicateFiles:   s.DuplicateFiles,
			ReclaimableBytes: s.ReclaimableBytes,
			Deleted:          out.Deleted,
			BytesReclaimed:   out.BytesReclaimed,
			Skipped:          out.Skipped,
			Failed:           len(out.Failures),
		},
		Files:  []File{},
		Errors: []ErrorFile{},
	}

	deleted := "deleted"
	if out.DryRun {
		deleted = "delete"
	}
	for _, res := range out.Results {
		if res.Error != nil {
			r.Errors = append(r.Errors, ErrorFile{Path: res.Item.Path, Error: res.Error.Error()})
			continue
		}
		r.Files = append(r.Files, File{
			Action: deleted,
			Path:   res.Item.Path,
			Size:   res.Item.Size,
			Digest: res.Item.Digest,
			Reason: res.Item.Reason,
		})
	}
	return r
}

// Write encodes r as YAML when path ends in .yaml or .yml, JSON otherwise.
func Write(path string, r Report) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(r)
	default:
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrReportWrite, "encode report")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrReportWrite, fmt.Sprintf("write report %s", path))
	}
	return nil
}
