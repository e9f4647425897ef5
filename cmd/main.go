// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"fixdates/internal/config"
	"fixdates/internal/core"
	"fixdates/internal/help"
	"fixdates/internal/journal"
	"fixdates/internal/metadata"
	"fixdates/internal/observability"
	"fixdates/internal/paths"
	"fixdates/internal/platform"
	"fixdates/internal/version"

	"fixdates/internal/formatters"
	_ "fixdates/internal/formatters/csv"
	_ "fixdates/internal/formatters/json"
	_ "fixdates/internal/formatters/text"
	_ "fixdates/internal/formatters/yaml"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// configFlags holds command line flag values
type configFlags struct {
	fix             bool
	dump            bool
	verbose         bool
	dryRun          bool
	quiet           bool
	debug           bool
	noColor         bool
	noSidecar       bool
	strict          bool
	outputFormat    string
	timezone        string
	journal         string
	excludePatterns []string

	configFile   string
	profileName  string
	listProfiles bool
	outputFile   string
	listRuns     bool
	undoRun      string
	force        bool
	showHelp     bool
	showVersion  bool
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format          string
	fix             bool
	dump            bool
	verbose         bool
	dryRun          bool
	quiet           bool
	debug           bool
	noColor         bool
	strict          bool
	sidecar         bool
	sidecarSuffixes []string
	timezone        string
	journal         string
	excludePatterns []string
}

// newFlagSet registers every command line flag into flags
func newFlagSet(flags *configFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("fixdates", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.BoolVarP(&flags.fix, "fix", "f", false, "Set access and modification time to the metadata time")
	fs.BoolVarP(&flags.dump, "dump", "d", false, "Print every decoded EXIF tag")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "Also print matching files, directories and unsupported files")
	fs.BoolVarP(&flags.dryRun, "dry-run", "n", false, "With --fix, report what would change without writing")
	fs.BoolVarP(&flags.quiet, "quiet", "q", false, "Only print errors and the summary")
	fs.BoolVar(&flags.debug, "debug", false, "Write a structured debug log to stderr")
	fs.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&flags.noSidecar, "no-sidecar", false, "Never fall back to the JSON sidecar")
	fs.BoolVar(&flags.strict, "strict", false, "Treat any EXIF problem on a JPEG as an error")
	fs.StringVar(&flags.outputFormat, "format", "", "Output format: text, json, yaml, csv")
	fs.StringVar(&flags.timezone, "timezone", "", "IANA zone for EXIF wall-clock times")
	fs.StringVar(&flags.journal, "journal", "", "SQLite journal recording every mtime change")
	fs.StringArrayVar(&flags.excludePatterns, "exclude", nil, "Skip entries whose base name matches the glob (repeatable)")

	fs.StringVar(&flags.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&flags.profileName, "profile", "", "Profile name to use from config file")
	fs.BoolVar(&flags.listProfiles, "list-profiles", false, "List available profiles")
	fs.StringVarP(&flags.outputFile, "output", "o", "", "Write the report to a file instead of stdout")
	fs.BoolVar(&flags.listRuns, "list-runs", false, "List the runs recorded in the journal")
	fs.StringVar(&flags.undoRun, "undo", "", "Restore the modification times changed by a run")
	fs.BoolVar(&flags.force, "force", false, "With --undo, also restore files modified since the run")
	fs.BoolVarP(&flags.showHelp, "help", "h", false, "Show help information")
	fs.BoolVar(&flags.showVersion, "version", false, "Show version information")
	return fs
}

// loadConfiguration loads the configuration file or returns default config.
// A file named with --config must load; a discovered one falls back to
// defaults with a warning.
func loadConfiguration(configFile string, stderr io.Writer) (*config.Config, error) {
	if configFile != "" {
		cfg, err := config.LoadConfig(paths.ExpandHome(configFile))
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := config.LoadConfigOrDefault("", func(path string, err error) {
		fmt.Fprintf(stderr, "Warning: Error loading config file %s: %v\n", path, err)
		fmt.Fprintf(stderr, "Using default configuration\n")
	})
	return cfg, nil
}

// handleProfiles prints the profile list, or returns the selected profile
func handleProfiles(cfg *config.Config, listProfiles bool, profileName string, stdout io.Writer) (*config.Profile, error) {
	if listProfiles {
		profiles := cfg.ListProfiles()
		sort.Strings(profiles)
		if len(profiles) == 0 {
			fmt.Fprintln(stdout, "No profiles defined.")
			return nil, nil
		}
		fmt.Fprintln(stdout, "Available profiles:")
		for _, name := range profiles {
			profile := cfg.GetProfile(name)
			if profile != nil && profile.Description != "" {
				fmt.Fprintf(stdout, "  - %s: %s\n", name, profile.Description)
			} else {
				fmt.Fprintf(stdout, "  - %s\n", name)
			}
		}
		return nil, nil
	}

	if profileName == "" {
		return nil, nil
	}
	profile := cfg.GetProfile(profileName)
	if profile == nil {
		return nil, fmt.Errorf("profile '%s' not found (use --list-profiles)", profileName)
	}
	return profile, nil
}

// resolveConfiguration resolves final configuration values from config file,
// profile, and the command line flags for which isSet reports true.
func resolveConfiguration(cfg *config.Config, activeProfile *config.Profile, flags *configFlags, isSet func(string) bool) *finalConfiguration {
	final := &finalConfiguration{
		format:          "text",
		sidecar:         true,
		sidecarSuffixes: append([]string(nil), config.DefaultSidecarSuffixes...),
		timezone:        "Local",
	}

	if cfg != nil {
		d := cfg.Defaults
		if d.Format != "" {
			final.format = d.Format
		}
		final.fix = d.Fix
		final.dump = d.Dump
		final.verbose = d.Verbose
		final.dryRun = d.DryRun
		final.quiet = d.Quiet
		final.debug = d.Debug
		final.noColor = d.NoColor
		final.strict = d.Strict
		final.sidecar = d.Sidecar.Enabled
		if len(d.Sidecar.Suffixes) > 0 {
			final.sidecarSuffixes = d.Sidecar.Suffixes
		}
		if d.Timezone != "" {
			final.timezone = d.Timezone
		}
		final.journal = d.Journal
		final.excludePatterns = d.ExcludePatterns
	}

	if p := activeProfile; p != nil {
		if p.Format != "" {
			final.format = p.Format
		}
		applyBool(&final.fix, p.Fix)
		applyBool(&final.dump, p.Dump)
		applyBool(&final.verbose, p.Verbose)
		applyBool(&final.dryRun, p.DryRun)
		applyBool(&final.quiet, p.Quiet)
		applyBool(&final.debug, p.Debug)
		applyBool(&final.noColor, p.NoColor)
		applyBool(&final.strict, p.Strict)
		applyBool(&final.sidecar, p.Sidecar)
		if len(p.SidecarSuffixes) > 0 {
			final.sidecarSuffixes = p.SidecarSuffixes
		}
		if p.Timezone != "" {
			final.timezone = p.Timezone
		}
		if p.Journal != "" {
			final.journal = p.Journal
		}
		if len(p.ExcludePatterns) > 0 {
			final.excludePatterns = p.ExcludePatterns
		}
	}

	if isSet("format") && flags.outputFormat != "" {
		final.format = flags.outputFormat
	}
	if isSet("fix") {
		final.fix = flags.fix
	}
	if isSet("dump") {
		final.dump = flags.dump
	}
	if isSet("verbose") {
		final.verbose = flags.verbose
	}
	if isSet("dry-run") {
		final.dryRun = flags.dryRun
	}
	if isSet("quiet") {
		final.quiet = flags.quiet
	}
	if isSet("debug") {
		final.debug = flags.debug
	}
	if isSet("no-color") {
		final.noColor = flags.noColor
	}
	if isSet("strict") {
		final.strict = flags.strict
	}
	if isSet("no-sidecar") {
		final.sidecar = !flags.noSidecar
	}
	if isSet("timezone") && flags.timezone != "" {
		final.timezone = flags.timezone
	}
	if isSet("journal") {
		final.journal = flags.journal
	}
	if isSet("exclude") {
		final.excludePatterns = flags.excludePatterns
	}

	if os.Getenv("FIXDATES_DEBUG") != "" {
		final.debug = true
	}
	return final
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command line and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	var flags configFlags
	fs := newFlagSet(&flags)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Use --help for usage information")
		return exitUsage
	}

	// Auto-detect non-interactive environment unless --no-color was given
	if !fs.Changed("no-color") && (!isTerminal(stdout) || os.Getenv("CI") != "" || os.Getenv("NO_COLOR") != "") {
		flags.noColor = true
	}

	if flags.showHelp {
		return showHelp(fs.Args(), stdout, flags.noColor)
	}
	if flags.showVersion {
		fmt.Fprintln(stdout, version.Info())
		return exitOK
	}

	cfg, err := loadConfiguration(flags.configFile, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	activeProfile, err := handleProfiles(cfg, flags.listProfiles, flags.profileName, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	if flags.listProfiles {
		return exitOK
	}

	finalConfig := resolveConfiguration(cfg, activeProfile, &flags, fs.Changed)
	if flags.noColor {
		finalConfig.noColor = true
	}
	if finalConfig.noColor {
		color.NoColor = true
	}

	runID := uuid.NewString()
	observer := observability.NewStandardObserver(observability.ObservabilityOff, nil)
	if finalConfig.debug {
		observer = observability.NewDebugObserver(stderr).StandardObserver
	}
	observer.WithRunID(runID)
	defer observer.Sync()

	if observer.DebugObserver != nil {
		observer.DebugObserver.LogDetail("main", fmt.Sprintf("Command line arguments: %v", args))
		observer.DebugObserver.LogDetail("main", fmt.Sprintf("Resolved configuration: %+v", *finalConfig))
		observer.DebugObserver.LogDetail("platform", fmt.Sprintf("Platform: %+v", *platform.GetConfig()))
		observer.DebugObserver.LogDetail("config", "Configuration directory: "+config.GetEffectiveConfigDir(cfg))
	}

	if flags.listRuns || flags.undoRun != "" {
		return runJournalCommand(cfg, finalConfig, &flags, stdout, stderr)
	}

	return runScan(fs.Args(), cfg, finalConfig, runID, observer, flags.outputFile, stdout, stderr)
}

// showHelp prints general help, the source list, or one source
func showHelp(args []string, stdout io.Writer, noColor bool) int {
	h := help.NewSystem(stdout, noColor)
	switch {
	case len(args) == 0:
		h.ShowGeneralHelp(formatters.GetSupportedFormats())
	case args[0] == "sources":
		h.ShowSourcesHelp()
	default:
		if !h.ShowSourceHelp(args[0]) {
			fmt.Fprintf(stdout, "Unknown help topic '%s'. Use --help sources to list timestamp sources.\n", args[0])
			return exitUsage
		}
	}
	return exitOK
}

// journalPath returns the configured journal, or the platform default
func journalPath(cfg *config.Config, finalConfig *finalConfiguration) string {
	if finalConfig.journal != "" {
		return paths.ExpandHome(finalConfig.journal)
	}
	return config.GetEffectiveJournalPath(cfg)
}

// runJournalCommand handles --list-runs and --undo
func runJournalCommand(cfg *config.Config, finalConfig *finalConfiguration, flags *configFlags, stdout, stderr io.Writer) int {
	path := journalPath(cfg, finalConfig)
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(stderr, "Error: no journal at %s\n", path)
		return exitError
	}

	j, err := journal.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	defer j.Close()

	if flags.listRuns {
		runs, err := j.Runs()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		printRuns(stdout, runs)
		return exitOK
	}

	results, err := j.Undo(flags.undoRun, flags.force)
	if err != nil && results == nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, journal.ErrRunNotFound) {
			return exitUsage
		}
		return exitError
	}
	return printUndo(stdout, stderr, results, err)
}

func printRuns(stdout io.Writer, runs []journal.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "No runs recorded.")
		return
	}
	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSTARTED\tFILES\tSTATUS\tPATHS")
	for _, r := range runs {
		status := "applied"
		if r.UndoneAt != nil {
			status = "undone " + r.UndoneAt.Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.StartedAt.Format(time.DateTime), r.Entries, status, strings.Join(r.Roots, ", "))
	}
	w.Flush()
}

func printUndo(stdout, stderr io.Writer, results []journal.UndoResult, markErr error) int {
	restored, skipped, failed := 0, 0, 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(stderr, "ERROR: %v\n", r.Err)
		case r.Skipped:
			skipped++
			fmt.Fprintf(stdout, "SKIPPED\t%s\tmodified since the run (use --force)\n", r.Path)
		case r.Restored:
			restored++
			fmt.Fprintf(stdout, "RESTORED\t%s\t%d\n", r.Path, r.OldUnix)
		}
	}
	fmt.Fprintf(stdout, "\nRestored %d file(s), skipped %d, failed %d\n", restored, skipped, failed)

	if markErr != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", markErr)
	}
	if failed > 0 {
		return exitError
	}
	return exitOK
}

// runScan reconciles the positional paths and writes the report
func runScan(args []string, cfg *config.Config, finalConfig *finalConfiguration, runID string, observer *observability.StandardObserver, outputFile string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Error: no files or directories given")
		fmt.Fprintln(stderr, "Usage: fixdates [options] <file-or-directory>...")
		return exitUsage
	}

	formatter, ok := formatters.Get(finalConfig.format)
	if !ok {
		fmt.Fprintf(stderr, "Error: unsupported format '%s'. Available formats: %s\n",
			finalConfig.format, strings.Join(formatters.List(), ", "))
		return exitUsage
	}

	loc, err := config.LoadLocation(finalConfig.timezone)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if finalConfig.dryRun && !finalConfig.fix {
		fmt.Fprintln(stderr, "Warning: --dry-run has no effect without --fix")
	}

	scanConfig := core.ScanConfig{
		Paths:   args,
		Fix:     finalConfig.fix,
		Dump:    finalConfig.dump,
		Verbose: finalConfig.verbose,
		DryRun:  finalConfig.dryRun,
		RunID:   runID,
		Resolver: metadata.Options{
			Location:        loc,
			Sidecar:         finalConfig.sidecar,
			SidecarSuffixes: finalConfig.sidecarSuffixes,
			Strict:          finalConfig.strict,
			Dump:            finalConfig.dump,
		},
		ExcludePatterns: finalConfig.excludePatterns,
		Observer:        observer,
	}

	if finalConfig.fix && !finalConfig.dryRun && finalConfig.journal != "" {
		j, err := journal.Open(journalPath(cfg, finalConfig))
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		defer j.Close()
		if err := j.BeginRun(runID, absPaths(args), false); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		scanConfig.Recorder = j.Recorder(runID)
	}

	options := formatters.FormatterOptions{
		Verbose: finalConfig.verbose,
		Dump:    finalConfig.dump,
		Quiet:   finalConfig.quiet,
		NoColor: finalConfig.noColor || outputFile != "",
	}

	streaming, canStream := formatter.(formatters.StreamingFormatter)
	if canStream && outputFile == "" {
		scanConfig.OnEntry = func(e core.Entry) {
			io.WriteString(stdout, streaming.FormatEntry(e, options))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := core.Scan(ctx, scanConfig)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if scanConfig.OnEntry != nil {
		io.WriteString(stdout, streaming.FormatSummary(result, options))
	} else {
		content, err := formatter.Format(result, options)
		if err != nil {
			fmt.Fprintf(stderr, "Error formatting results: %v\n", err)
			return exitError
		}
		if err := writeOutput(outputFile, content, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
	}

	if result.Errors() > 0 || result.Cancelled {
		return exitError
	}
	return exitOK
}

// writeOutput writes content to outputFile, or to stdout when it is empty
func writeOutput(outputFile, content string, stdout io.Writer) error {
	if outputFile == "" {
		_, err := io.WriteString(stdout, content)
		return err
	}

	cleanOutputPath, err := filepath.Abs(filepath.Clean(paths.ExpandHome(outputFile)))
	if err != nil {
		return fmt.Errorf("invalid output file path %s: %w", outputFile, err)
	}
	if err := paths.ValidatePath(cleanOutputPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cleanOutputPath), 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	if err := os.WriteFile(cleanOutputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("error writing to output file: %w", err)
	}
	return nil
}

func absPaths(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if abs, err := filepath.Abs(a); err == nil {
			out = append(out, abs)
		} else {
			out = append(out, a)
		}
	}
	return out
}
