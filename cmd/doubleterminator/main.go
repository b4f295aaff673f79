package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Joik2ww/FileOrganizer/internal/config"
	"github.com/Joik2ww/FileOrganizer/internal/guard"
	"github.com/Joik2ww/FileOrganizer/internal/logging"
	"github.com/Joik2ww/FileOrganizer/internal/session"
	"github.com/Joik2ww/FileOrganizer/internal/ui"
	"github.com/Joik2ww/FileOrganizer/pkg/executor"
	"github.com/Joik2ww/FileOrganizer/pkg/logger"
	"github.com/Joik2ww/FileOrganizer/pkg/planner"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

var (
	subfolders  bool
	keep        string
	yes         bool
	dryRun      bool
	excludes    []string
	minSize     int64
	concurrency int
	reportFile  string
	configFile  string
	verbose     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "doubleterminator [directory]",
		Short: "Find and delete duplicate files by content",
		Long: `doubleterminator scans a directory for files with identical content
(SHA-256) and deletes the surplus copies, keeping the oldest or newest one.
System directories are never scanned or touched.

With a directory argument it runs once and exits. Without one it starts an
interactive session.`,
		Version:       fmt.Sprintf("%s (commit: %s, built at: %s by %s)", version, commit, date, builtBy),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	rootCmd.Flags().BoolVarP(&subfolders, "subfolders", "r", false, "Include subdirectories")
	rootCmd.Flags().StringVar(&keep, "keep", planner.KeepOldest, "Which copy to keep: oldest or newest")
	rootCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the bulk delete confirmation")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be deleted without deleting")
	rootCmd.Flags().StringSliceVar(&excludes, "exclude", nil, "Exclude patterns (multiple allowed)")
	rootCmd.Flags().Int64Var(&minSize, "min-size", 0, "Ignore files smaller than this many bytes")
	rootCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Number of hashing workers (default: number of CPUs)")
	rootCmd.Flags().StringVar(&reportFile, "report-file", "", "Write the plan or result to this file (.json, .yaml)")
	rootCmd.Flags().StringVar(&configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/doubleterminator/config.toml)")
	rootCmd.Flags().CountVarP(&verbose, "verbose", "v", "Increase log verbosity (-v, -vv, -vvv)")

	if err := rootCmd.Execute(); err != nil {
		ui.Error(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	runID := logging.NewRunID()
	zlog, logFile := logging.SetupLogger(verbose, runID)
	defer logFile.Close()
	defer logging.LogDuration(zlog, time.Now(), "run")
	eventLog := logger.New(zlog, dryRun)
	g := guard.New(cfg.ExtraProtected)

	interactive := ui.IsTerminal(os.Stderr)
	progress := ui.NewProgress(os.Stderr, interactive, zlog)
	defer progress.Finish()

	scan := planner.Options{
		Recursive:         cfg.Subfolders,
		Excludes:          cfg.Excludes,
		MinSize:           cfg.MinSize,
		Concurrency:       cfg.Concurrency,
		Progress:          progress.Update,
		ScanProgressEvery: cfg.Progress.ScanEvery,
		HashProgressEvery: cfg.Progress.HashEvery,
		Logger:            eventLog,
	}

	if len(args) == 0 {
		s := session.New(ui.NewPrompter(os.Stdin, os.Stdout), session.Options{
			Guard:   g,
			Logger:  eventLog,
			Deleter: executor.OSDeleter{},
			DryRun:  dryRun,
			Scan:    scan,
		})
		return s.Run(ctx)
	}

	return runBatch(ctx, batchOptions{
		RunID:      runID,
		Dir:        args[0],
		Scan:       scan,
		Guard:      g,
		Logger:     eventLog,
		Deleter:    executor.OSDeleter{},
		KeepOldest: cfg.KeepOldest(),
		AskKeep:    !cmd.Flags().Changed("keep") && !yes,
		Yes:        yes,
		DryRun:     dryRun,
		ReportFile: reportFile,
	}, ui.NewPrompter(os.Stdin, os.Stdout))
}

// applyFlags overrides cfg with flags given explicitly on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("subfolders") {
		cfg.Subfolders = subfolders
	}
	if flags.Changed("keep") {
		cfg.Keep = keep
	}
	if flags.Changed("exclude") {
		cfg.Excludes = append(cfg.Excludes, excludes...)
	}
	if flags.Changed("min-size") {
		cfg.MinSize = minSize
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = concurrency
	}
	return cfg.Validate()
}
