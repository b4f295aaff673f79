package executor

import (
	"context"
	"os"
	"time"

	"github.com/Joik2ww/FileOrganizer/internal/errors"
	"github.com/Joik2ww/FileOrganizer/internal/guard"
	"github.com/Joik2ww/FileOrganizer/pkg/logger"
	"github.com/Joik2ww/FileOrganizer/pkg/planner"
)

// Deleter removes a single file.
type Deleter interface {
	Remove(path string) error
}

// OSDeleter removes files from the local filesystem.
type OSDeleter struct{}

func (OSDeleter) Remove(path string) error {
	return os.Remove(path)
}

// DeleterFunc adapts a function to the Deleter interface.
type DeleterFunc func(path string) error

func (f DeleterFunc) Remove(path string) error {
	return f(path)
}

// GroupView is what a Confirmer is shown for one group.
type GroupView struct {
	Index    int // 1-based
	Total    int
	Group    planner.DuplicateGroup
	Decision planner.Decision
}

// Confirmer approves or declines the removal proposed for one group.
type Confirmer interface {
	ConfirmGroup(ctx context.Context, view GroupView) (bool, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, view GroupView) (bool, error)

func (f ConfirmerFunc) ConfirmGroup(ctx context.Context, view GroupView) (bool, error) {
	return f(ctx, view)
}

// Result is the fate of one file the policy selected for removal.
type Result struct {
	Item  planner.Item
	Error error
}

// Outcome aggregates a resolution run over every group.
type Outcome struct {
	Retained       []planner.FileRecord
	Removed        []planner.FileRecord
	Deleted        int
	BytesReclaimed int64
	Skipped        int // groups declined by the confirmer
	Failures       []planner.Failure
	Results        []Result
	DryRun         bool
	Duration       time.Duration
}

// Resolver applies the resolution policy to duplicate groups and removes the
// surplus copies.
type Resolver struct {
	deleter Deleter
	logger  logger.Logger
	guard   *guard.Guard
	dryRun  bool
}

// NewResolver returns a Resolver. A nil deleter means OSDeleter, a nil logger
// discards events.
func NewResolver(deleter Deleter, log logger.Logger) *Resolver {
	if deleter == nil {
		deleter = OSDeleter{}
	}
	if log == nil {
		log = logger.NullLogger{}
	}
	return &Resolver{
		deleter: deleter,
		logger:  log,
	}
}

// WithGuard sets the guard consulted before every removal. Without one, only
// the built-in protected paths are refused.
func (r *Resolver) WithGuard(g *guard.Guard) *Resolver {
	r.guard = g
	return r
}

// WithDryRun makes the resolver report removals without performing them.
func (r *Resolver) WithDryRun(dryRun bool) *Resolver {
	r.dryRun = dryRun
	return r
}

// Bulk resolves every group without asking. A failed removal is recorded and
// the remaining files are still processed.
func (r *Resolver) Bulk(ctx context.Context, groups []planner.DuplicateGroup, keepOldest bool) Outcome {
	return r.resolve(ctx, groups, keepOldest, nil)
}

// Interactive shows each group to c before resolving it. A declined group is
// left untouched; an error from c counts as a decline.
func (r *Resolver) Interactive(ctx context.Context, groups []planner.DuplicateGroup, keepOldest bool, c Confirmer) Outcome {
	return r.resolve(ctx, groups, keepOldest, c)
}

func (r *Resolver) resolve(ctx context.Context, groups []planner.DuplicateGroup, keepOldest bool, c Confirmer) Outcome {
	start := time.Now()
	out := Outcome{DryRun: r.dryRun}

	for i, g := range groups {
		if ctx.Err() != nil {
			break
		}

		d := planner.Choose(g, keepOldest)
		if len(d.Remove) == 0 {
			continue
		}

		if c != nil {
			ok, err := c.ConfirmGroup(ctx, GroupView{Index: i + 1, Total: len(groups), Group: g, Decision: d})
			if err != nil {
				r.logger.Error("confirm", d.Keep.Path, err)
				ok = false
			}
			if !ok {
				out.Skipped++
				r.logger.Skip(d.Keep.Path, "group declined")
				continue
			}
		}

		out.Retained = append(out.Retained, d.Keep)
		for _, f := range d.Remove {
			item := planner.Item{
				Action:  planner.ActionDelete,
				Path:    f.Path,
				Size:    f.Size,
				ModTime: f.ModTime,
				Digest:  g.Digest,
				Reason:  "duplicate of " + d.Keep.Path,
			}

			err := r.remove(f)
			out.Results = append(out.Results, Result{Item: item, Error: err})
			if err != nil {
				out.Failures = append(out.Failures, planner.Failure{Path: f.Path, Err: err})
				r.logger.Error("delete", f.Path, err)
				continue
			}

			out.Removed = append(out.Removed, f)
			out.Deleted++
			out.BytesReclaimed += f.Size
			r.logger.Delete(f.Path, f.Size)
		}
	}

	out.Duration = time.Since(start)
	return out
}

func (r *Resolver) remove(f planner.FileRecord) error {
	if r.guard.IsProtected(f.Path) {
		return errors.Newf(errors.ErrProtectedPath, "refusing to delete protected path %s", f.Path)
	}
	if r.dryRun {
		return nil
	}
	if err := r.deleter.Remove(f.Path); err != nil {
		return errors.Wrapf(err, errors.ErrDelete, "delete %s", f.Path)
	}
	return nil
}
