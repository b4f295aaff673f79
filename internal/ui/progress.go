package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/Joik2ww/FileOrganizer/pkg/planner"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Progress renders scan and hash progress. On a terminal it draws a pterm
// progress bar per phase; otherwise it prints one plain line per update.
type Progress struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	log         zerolog.Logger

	bar   *pterm.ProgressbarPrinter
	phase planner.Phase
	done  int
}

// NewProgress creates a progress sink writing to out.
func NewProgress(out io.Writer, interactive bool, log zerolog.Logger) *Progress {
	return &Progress{out: out, interactive: interactive, log: log}
}

var phaseTitles = map[planner.Phase]string{
	planner.PhaseScan: "Scanning",
	planner.PhaseHash: "Hashing",
}

// Update is a planner.ProgressFunc.
func (p *Progress) Update(phase planner.Phase, done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Debug().Str("phase", string(phase)).Int("done", done).Int("total", total).Msg("Progress")

	if !p.interactive {
		fmt.Fprintf(p.out, "%s: %d/%d files\n", phaseTitles[phase], done, total)
		return
	}

	if total <= 0 {
		return
	}

	if p.bar == nil || p.phase != phase {
		p.stop()
		bar, err := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle(phaseTitles[phase]).
			WithWriter(p.out).
			WithRemoveWhenDone(false).
			Start()
		if err != nil {
			p.log.Debug().Err(err).Msg("Progress bar unavailable")
			p.interactive = false
			fmt.Fprintf(p.out, "%s: %d/%d files\n", phaseTitles[phase], done, total)
			return
		}
		p.bar = bar
		p.phase = phase
		p.done = 0
	}

	if delta := done - p.done; delta > 0 {
		p.bar.Add(delta)
		p.done = done
	}
	if done >= total {
		p.stop()
	}
}

// Finish stops any bar still drawing.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stop()
}

func (p *Progress) stop() {
	if p.bar == nil {
		return
	}
	_, _ = p.bar.Stop()
	p.bar = nil
}

// Status printers, prefixed the pterm way.

func Info(w io.Writer, format string, args ...interface{}) {
	pterm.Info.WithWriter(w).Printfln(format, args...)
}

func Success(w io.Writer, format string, args ...interface{}) {
	pterm.Success.WithWriter(w).Printfln(format, args...)
}

func Warning(w io.Writer, format string, args ...interface{}) {
	pterm.Warning.WithWriter(w).Printfln(format, args...)
}

func Error(w io.Writer, format string, args ...interface{}) {
	pterm.Error.WithWriter(w).Printfln(format, args...)
}
