package main

import (
	"context"
	"fmt"

	"github.com/Joik2ww/FileOrganizer/internal/errors"
	"github.com/Joik2ww/FileOrganizer/internal/guard"
	"github.com/Joik2ww/FileOrganizer/internal/logging"
	"github.com/Joik2ww/FileOrganizer/internal/report"
	"github.com/Joik2ww/FileOrganizer/internal/ui"
	"github.com/Joik2ww/FileOrganizer/internal/walker"
	"github.com/Joik2ww/FileOrganizer/pkg/executor"
	"github.com/Joik2ww/FileOrganizer/pkg/logger"
	"github.com/Joik2ww/FileOrganizer/pkg/planner"
)

type batchOptions struct {
	RunID      string
	Dir        string
	Scan       planner.Options
	Guard      *guard.Guard
	Logger     logger.Logger
	Deleter    executor.Deleter
	KeepOldest bool
	AskKeep    bool // ask keep-oldest interactively
	Yes        bool
	DryRun     bool
	ReportFile string
}

// runBatch is one scan and bulk-resolve cycle over opts.Dir.
func runBatch(ctx context.Context, opts batchOptions, p *ui.Prompter) error {
	out := p.Out()

	if opts.Guard.IsProtected(opts.Dir) {
		return errors.Newf(errors.ErrProtectedPath, "protected system directory, operation cancelled: %s", opts.Dir)
	}
	if resolved, err := walker.ResolveRoot(opts.Dir); err == nil && opts.Guard.IsProtected(resolved) {
		return errors.Newf(errors.ErrProtectedPath, "%s resolves to protected system directory %s, operation cancelled", opts.Dir, resolved)
	}

	res, err := planner.FindDuplicates(ctx, opts.Dir, opts.Scan)
	if err != nil {
		return err
	}

	if n := len(res.GroupStats.Failures); n > 0 {
		ui.Warning(out, "%d files could not be read and were left out", n)
	}

	if len(res.Groups) == 0 {
		ui.Success(out, "No duplicates found!")
		r := report.FromPlan(res.Root, nil, opts.KeepOldest, opts.DryRun)
		r.RunID = opts.RunID
		return writeReport(opts.ReportFile, r)
	}

	for i, g := range res.Groups {
		fmt.Fprintln(out)
		fmt.Fprint(out, ui.FormatGroup(i+1, g))
	}
	summary := planner.Summarize(res.Groups)
	fmt.Fprintln(out)
	ui.Warning(out, "%s", ui.FormatSummary(summary))

	keepOldest := opts.KeepOldest
	if !opts.Yes && !opts.DryRun {
		ok, err := p.Confirm(fmt.Sprintf("Delete %d duplicates?", summary.DuplicateFiles), false)
		if err != nil || !ok {
			ui.Info(out, "Operation cancelled")
			return nil
		}
	}
	if opts.AskKeep && !opts.DryRun {
		keepOldest, err = p.Confirm("Keep oldest files?", keepOldest)
		if err != nil {
			ui.Info(out, "Operation cancelled")
			return nil
		}
	}

	resolver := executor.NewResolver(opts.Deleter, opts.Logger).
		WithGuard(opts.Guard).
		WithDryRun(opts.DryRun)
	outcome := resolver.Bulk(ctx, res.Groups, keepOldest)

	for _, f := range outcome.Failures {
		ui.Error(out, "Failed to delete %s: %v", f.Path, f.Err)
	}
	logging.PrintSummary(out, logging.Summary{
		Groups:         len(res.Groups),
		Deleted:        outcome.Deleted,
		Failed:         len(outcome.Failures),
		BytesReclaimed: outcome.BytesReclaimed,
		DryRun:         outcome.DryRun,
		Duration:       outcome.Duration,
	})

	r := report.FromOutcome(res.Root, res.Groups, keepOldest, outcome)
	if opts.DryRun {
		r = report.FromPlan(res.Root, res.Groups, keepOldest, true)
	}
	r.RunID = opts.RunID
	if err := writeReport(opts.ReportFile, r); err != nil {
		return err
	}

	if n := len(outcome.Failures); n > 0 {
		return errors.Newf(errors.ErrDelete, "%d deletions failed", n)
	}
	return nil
}

func writeReport(path string, r report.Report) error {
	if path == "" {
		return nil
	}
	return report.Write(path, r)
}
