package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Joik2ww/FileOrganizer/internal/errors"
	"github.com/Joik2ww/FileOrganizer/internal/guard"
	"github.com/Joik2ww/FileOrganizer/internal/logging"
	"github.com/Joik2ww/FileOrganizer/internal/ui"
	"github.com/Joik2ww/FileOrganizer/internal/walker"
	"github.com/Joik2ww/FileOrganizer/pkg/executor"
	"github.com/Joik2ww/FileOrganizer/pkg/logger"
	"github.com/Joik2ww/FileOrganizer/pkg/planner"
)

// State is a step of the interactive session.
type State int

const (
	StateAwaitDirectory State = iota
	StateScanning
	StateNoDuplicates
	StateMenu
	StateExit
)

func (s State) String() string {
	switch s {
	case StateAwaitDirectory:
		return "await_directory"
	case StateScanning:
		return "scanning"
	case StateNoDuplicates:
		return "no_duplicates"
	case StateMenu:
		return "menu"
	case StateExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Options configures a Session.
type Options struct {
	Guard   *guard.Guard
	Logger  logger.Logger
	Deleter executor.Deleter
	DryRun  bool

	// Scan is the template for every scan. Recursive is the default answer
	// to the subfolder question.
	Scan planner.Options

	// DefaultDir is offered when the user just presses Enter. Empty means
	// SafeDefaultDirectory.
	DefaultDir string

	// Observer is told about every state entered. It may be nil.
	Observer func(State)
}

// Session drives the menu-based duplicate cleanup over a Prompter.
type Session struct {
	p    *ui.Prompter
	opts Options

	state    State
	dir      string
	changing bool
	groups   []planner.DuplicateGroup
}

// New returns a session reading answers from p.
func New(p *ui.Prompter, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logger.NullLogger{}
	}
	if opts.Scan.Logger == nil {
		opts.Scan.Logger = opts.Logger
	}
	return &Session{p: p, opts: opts, state: StateAwaitDirectory}
}

// Dir is the directory currently selected.
func (s *Session) Dir() string {
	return s.dir
}

// Run loops until the user exits or input ends. Running out of input is a
// normal way to leave and is not reported as an error.
func (s *Session) Run(ctx context.Context) error {
	s.p.Println("DUPLICATE TERMINATOR - INTERACTIVE MODE")

	for s.state != StateExit {
		if s.opts.Observer != nil {
			s.opts.Observer(s.state)
		}
		s.opts.Logger.Debug("session state: " + s.state.String())

		next, err := s.step(ctx)
		if err == io.EOF {
			s.p.Println("Input closed, goodbye!")
			return nil
		}
		if err != nil {
			return err
		}
		s.state = next
	}

	if s.opts.Observer != nil {
		s.opts.Observer(StateExit)
	}
	s.p.Println("Goodbye!")
	return nil
}

func (s *Session) step(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return StateExit, err
	}

	switch s.state {
	case StateAwaitDirectory:
		return s.awaitDirectory()
	case StateScanning:
		return s.scan(ctx)
	case StateNoDuplicates:
		return s.noDuplicatesMenu()
	case StateMenu:
		return s.menu(ctx)
	default:
		return StateExit, nil
	}
}

func (s *Session) awaitDirectory() (State, error) {
	fallback := s.dir
	prompt := "Enter new directory (or press Enter to keep current): "
	if !s.changing || fallback == "" {
		var err error
		fallback, err = s.defaultDir()
		if err != nil {
			return StateExit, err
		}
		prompt = fmt.Sprintf("Enter directory to scan (press Enter for '%s'): ", fallback)
	}

	answer, err := s.p.Ask(prompt)
	if err != nil {
		return StateExit, err
	}
	if answer == "" {
		answer = fallback
	}

	dir, err := s.resolve(answer)
	if err != nil {
		ui.Error(s.p.Out(), "%s", describe(err))
		s.opts.Logger.Error("select directory", answer, err)
		return StateAwaitDirectory, nil
	}

	changing := s.changing
	s.changing = false
	if changing && dir == s.dir && len(s.groups) > 0 {
		ui.Info(s.p.Out(), "Keeping current directory")
		return StateMenu, nil
	}

	if dir != s.dir && s.dir != "" {
		ui.Info(s.p.Out(), "Changed to: %s", dir)
	}
	s.dir = dir
	return StateScanning, nil
}

// resolve checks that answer names an existing directory outside the
// protected set.
func (s *Session) resolve(answer string) (string, error) {
	abs, err := filepath.Abs(expandHome(answer))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid directory %q", answer)
	}

	if s.opts.Guard.IsProtected(abs) {
		return "", errors.Newf(errors.ErrProtectedPath, "protected system directory: %s", abs)
	}

	resolved, err := walker.ResolveRoot(abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrNotFound, "directory not found: %s", answer)
	}
	if s.opts.Guard.IsProtected(resolved) {
		return "", errors.Newf(errors.ErrProtectedPath, "protected system directory: %s (via %s)", resolved, abs)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrNotFound, "directory not found: %s", answer)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrNotDirectory, "not a directory: %s", answer)
	}
	return abs, nil
}

func (s *Session) scan(ctx context.Context) (State, error) {
	recursive, err := s.p.Confirm("Include subfolders in search?", s.opts.Scan.Recursive)
	if err != nil {
		return StateExit, err
	}

	s.p.Printf("\nScanning: %s\n", s.dir)
	opts := s.opts.Scan
	opts.Recursive = recursive

	res, err := planner.FindDuplicates(ctx, s.dir, opts)
	if err != nil {
		if ctx.Err() != nil {
			return StateExit, ctx.Err()
		}
		ui.Error(s.p.Out(), "%s", describe(err))
		s.opts.Logger.Error("scan", s.dir, err)
		return StateAwaitDirectory, nil
	}

	if n := len(res.GroupStats.Failures); n > 0 {
		ui.Warning(s.p.Out(), "%d files could not be read and were left out", n)
	}

	s.groups = res.Groups
	if len(s.groups) == 0 {
		ui.Success(s.p.Out(), "No duplicates found!")
		return StateNoDuplicates, nil
	}
	return StateMenu, nil
}

func (s *Session) noDuplicatesMenu() (State, error) {
	s.p.Println()
	s.p.Println("1. Change directory")
	s.p.Println("2. Rescan for duplicates")
	s.p.Println("3. Exit")

	choice, err := s.p.Ask("\nSelect option (1-3): ")
	if err != nil {
		return StateExit, err
	}

	switch choice {
	case "1":
		s.changing = true
		return StateAwaitDirectory, nil
	case "2":
		return StateScanning, nil
	case "3":
		return StateExit, nil
	default:
		ui.Error(s.p.Out(), "Invalid option. Please try again.")
		return StateNoDuplicates, nil
	}
}

const menuText = `
==================================================
1. Interactive deletion (confirm each group)
2. Bulk deletion (delete all duplicates)
3. Change directory
4. Show list of duplicate files
5. Rescan for duplicates
6. Exit
==================================================`

func (s *Session) menu(ctx context.Context) (State, error) {
	summary := planner.Summarize(s.groups)
	s.p.Println()
	ui.Warning(s.p.Out(), "%s", ui.FormatSummary(summary))
	s.p.Println(menuText)

	choice, err := s.p.Ask("\nSelect option (1-6): ")
	if err != nil {
		return StateExit, err
	}

	switch choice {
	case "1":
		keepOldest, err := s.p.Confirm("Keep oldest files?", true)
		if err != nil {
			return StateExit, err
		}
		s.p.Println("\nStarting interactive deletion...")
		out := s.resolver().Interactive(ctx, s.groups, keepOldest, ui.NewGroupConfirmer(s.p))
		s.report(out)
		return StateScanning, nil

	case "2":
		ok, err := s.p.Confirm(fmt.Sprintf("\nWARNING: This will delete %d files without confirmation! Continue?", summary.DuplicateFiles), false)
		if err != nil {
			return StateExit, err
		}
		if !ok {
			ui.Info(s.p.Out(), "Operation cancelled")
			return StateMenu, nil
		}
		keepOldest, err := s.p.Confirm("Keep oldest files?", true)
		if err != nil {
			return StateExit, err
		}
		s.p.Println("\nDeleting all duplicates...")
		out := s.resolver().Bulk(ctx, s.groups, keepOldest)
		s.report(out)
		return StateScanning, nil

	case "3":
		s.changing = true
		return StateAwaitDirectory, nil

	case "4":
		s.listGroups()
		if _, err := s.p.Ask("\nPress Enter to return to the menu..."); err != nil {
			return StateExit, err
		}
		return StateMenu, nil

	case "5":
		ui.Info(s.p.Out(), "Rescanning directory...")
		return StateScanning, nil

	case "6":
		return StateExit, nil

	default:
		ui.Error(s.p.Out(), "Invalid option. Please try again.")
		return StateMenu, nil
	}
}

func (s *Session) resolver() *executor.Resolver {
	return executor.NewResolver(s.opts.Deleter, s.opts.Logger).
		WithGuard(s.opts.Guard).
		WithDryRun(s.opts.DryRun)
}

func (s *Session) listGroups() {
	s.p.Println("\nLIST OF DUPLICATE FILES")
	s.p.Println(strings.Repeat("=", 60))
	for i, g := range s.groups {
		s.p.Println()
		s.p.Printf("%s", ui.FormatGroup(i+1, g))
	}
}

func (s *Session) report(out executor.Outcome) {
	for _, f := range out.Failures {
		ui.Error(s.p.Out(), "Failed to delete %s: %v", f.Path, f.Err)
	}
	logging.PrintSummary(s.p.Out(), logging.Summary{
		Groups:         len(s.groups),
		Deleted:        out.Deleted,
		Failed:         len(out.Failures),
		Skipped:        out.Skipped,
		BytesReclaimed: out.BytesReclaimed,
		DryRun:         out.DryRun,
		Duration:       out.Duration,
	})
}

func (s *Session) defaultDir() (string, error) {
	if s.opts.DefaultDir != "" {
		return s.opts.DefaultDir, nil
	}
	dir, err := SafeDefaultDirectory(s.opts.Guard)
	if err != nil {
		return "", err
	}
	s.opts.DefaultDir = dir
	return dir, nil
}

func describe(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
