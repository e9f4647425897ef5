// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"fixdates/internal/formatters"

	"github.com/fatih/color"
)

// SourceInfo describes one place a "taken at" timestamp can come from
type SourceInfo struct {
	Name                string   // Provenance name as it appears in reports (e.g., "exif")
	ShortDescription    string   // Short description for the sources list
	DetailedDescription string   // What the source reads and when it is consulted
	FileTypes           []string // Extensions the source applies to
	Failures            []string // Conditions that make the source unusable
	ConfigurationInfo   string   // Flags and config keys that affect the source
	Examples            []string // Usage examples
}

// Provider defines the interface for help content providers
type Provider interface {
	GetSourceInfo() SourceInfo
}

// System manages help content for the application
type System struct {
	out       io.Writer
	providers map[string]Provider
	colors    map[string]*color.Color
	noColor   bool
}

// NewSystem creates a new help system writing to out, with the built-in
// timestamp sources registered.
func NewSystem(out io.Writer, noColor bool) *System {
	h := &System{
		out:       out,
		providers: make(map[string]Provider),
		noColor:   noColor,
		colors: map[string]*color.Color{
			"title":   color.New(color.FgWhite, color.Bold),
			"header":  color.New(color.FgBlue, color.Bold),
			"item":    color.New(color.FgCyan),
			"warning": color.New(color.FgYellow),
			"example": color.New(color.FgMagenta),
		},
	}
	h.RegisterProvider(exifSource{})
	h.RegisterProvider(sidecarSource{})
	return h
}

// RegisterProvider adds a help provider to the system
func (h *System) RegisterProvider(provider Provider) {
	info := provider.GetSourceInfo()
	h.providers[strings.ToLower(info.Name)] = provider
}

func (h *System) println(colorName, s string) {
	if h.noColor {
		fmt.Fprintln(h.out, s)
		return
	}
	h.colors[colorName].Fprintln(h.out, s)
}

// ShowGeneralHelp displays usage, flags, output formats and examples
func (h *System) ShowGeneralHelp(formats []formatters.FormatInfo) {
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, f.Name)
	}

	h.println("title", "fixdates - align file modification times with when photos were taken")
	fmt.Fprintln(h.out, "======================================================================")
	fmt.Fprintln(h.out)
	h.println("header", "USAGE:")
	fmt.Fprintln(h.out, "  fixdates [options] <file-or-directory>...")
	fmt.Fprintln(h.out, "  fixdates --undo <run-id>")
	fmt.Fprintln(h.out)

	h.println("header", "OPTIONS:")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  -f, --fix\t\tSet each file's access and modification time to the metadata time")
	fmt.Fprintln(w, "  -d, --dump\t\tPrint every decoded EXIF tag")
	fmt.Fprintln(w, "  -v, --verbose\t\tAlso print matching files, directories and unsupported files")
	fmt.Fprintln(w, "  -n, --dry-run\t\tWith --fix, report what would change without writing")
	fmt.Fprintln(w, "  -q, --quiet\t\tOnly print errors and the summary")
	fmt.Fprintf(w, "      --format\t<format>\tOutput format: %s (default: text)\n", strings.Join(names, ", "))
	fmt.Fprintln(w, "  -o, --output\t<path>\tWrite the report to a file instead of stdout")
	fmt.Fprintln(w, "      --no-sidecar\t\tNever fall back to the <file>.json sidecar")
	fmt.Fprintln(w, "      --strict\t\tTreat any EXIF problem on a JPEG as an error, without fallback")
	fmt.Fprintln(w, "      --timezone\t<zone>\tIANA zone for EXIF wall-clock times (default: Local)")
	fmt.Fprintln(w, "      --exclude\t<glob>\tSkip entries whose base name matches (repeatable)")
	fmt.Fprintln(w, "      --journal\t<path>\tSQLite journal recording every mtime change")
	fmt.Fprintln(w, "      --list-runs\t\tList the runs recorded in the journal")
	fmt.Fprintln(w, "      --undo\t<run-id>\tRestore the modification times changed by a run")
	fmt.Fprintln(w, "      --force\t\tWith --undo, restore files modified since the run")
	fmt.Fprintln(w, "      --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "      --profile\t<name>\tProfile name to use from config file")
	fmt.Fprintln(w, "      --list-profiles\t\tList available profiles")
	fmt.Fprintln(w, "      --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "      --debug\t\tWrite a structured debug log to stderr")
	fmt.Fprintln(w, "      --version\t\tShow version information")
	fmt.Fprintln(w, "  -h, --help\t\tShow this help message")
	fmt.Fprintln(w, "      --help sources\t\tList the timestamp sources")
	fmt.Fprintln(w, "      --help <source>\t\tShow detailed help for a timestamp source")
	w.Flush()

	fmt.Fprintln(h.out)
	h.println("header", "OUTPUT:")
	fmt.Fprintln(h.out, "  <TAB>path<TAB>metadata-time<TAB>file-mtime<TAB>SAME|DIFFERENT|UPDATED")
	fmt.Fprintln(h.out, "  Times are epoch seconds. SAME lines are only printed with --verbose.")

	if len(formats) > 0 {
		fmt.Fprintln(h.out)
		h.println("header", "FORMATS:")
		fw := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
		for _, f := range formats {
			fmt.Fprintf(fw, "  %s\t%s\t%s\n", f.Name, f.Extension, f.Description)
		}
		fw.Flush()
	}

	fmt.Fprintln(h.out)
	h.println("header", "EXAMPLES:")
	h.println("example", "  fixdates ~/Pictures/Takeout")
	h.println("example", "  fixdates --fix --dry-run ~/Pictures/Takeout")
	h.println("example", "  fixdates --fix --journal ~/fixdates.db --exclude '*.json' ~/Pictures")
	h.println("example", "  fixdates --profile exif-only --format csv -o report.csv ~/Pictures")
	h.println("example", "  fixdates --undo 3f0c6a52-2b1e-4c55-9d7a-0d5e9c2f61aa")

	fmt.Fprintln(h.out)
	h.println("header", "EXIT STATUS:")
	fmt.Fprintln(h.out, "  0  every file was handled")
	fmt.Fprintln(h.out, "  1  at least one file ended in an error, or an undo failed")
	fmt.Fprintln(h.out, "  2  invalid arguments or configuration")

	fmt.Fprintln(h.out)
	h.println("header", "CONFIGURATION:")
	fmt.Fprintln(h.out, "  Project config: fixdates.yaml, .fixdates.yaml or .fixdates.yml (in current directory)")
	fmt.Fprintln(h.out, "  User config: <config dir>/fixdates/config.yaml")
	fmt.Fprintln(h.out, "  Environment: FIXDATES_CONFIG_DIR - Override config directory")
}

// ShowSourcesHelp lists every registered timestamp source
func (h *System) ShowSourcesHelp() {
	h.println("title", "Timestamp sources")
	fmt.Fprintln(h.out, "=================")
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "Sources are tried in this order; the first usable one wins:")
	fmt.Fprintln(h.out)

	names := make([]string, 0, len(h.providers))
	for name := range h.providers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return sourceOrder(names[i]) < sourceOrder(names[j])
	})

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  SOURCE\tDESCRIPTION")
	fmt.Fprintln(w, "  ------\t-----------")
	for _, name := range names {
		info := h.providers[name].GetSourceInfo()
		fmt.Fprintf(w, "  %s\t%s\n", info.Name, info.ShortDescription)
	}
	w.Flush()

	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "Use 'fixdates --help <source>' for details.")
}

func sourceOrder(name string) int {
	switch name {
	case "exif":
		return 0
	case "sidecar-json":
		return 1
	}
	return 2
}

// ShowSourceHelp shows the details for one source. It reports false when
// the name is unknown.
func (h *System) ShowSourceHelp(name string) bool {
	provider, ok := h.providers[strings.ToLower(name)]
	if !ok {
		return false
	}
	info := provider.GetSourceInfo()

	h.println("title", info.Name)
	fmt.Fprintln(h.out, strings.Repeat("=", len(info.Name)))
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, info.DetailedDescription)

	if len(info.FileTypes) > 0 {
		fmt.Fprintln(h.out)
		h.println("header", "FILE TYPES:")
		for _, ft := range info.FileTypes {
			fmt.Fprintf(h.out, "  %s\n", ft)
		}
	}
	if len(info.Failures) > 0 {
		fmt.Fprintln(h.out)
		h.println("header", "NOT USABLE WHEN:")
		for _, f := range info.Failures {
			fmt.Fprintf(h.out, "  - %s\n", f)
		}
	}
	if info.ConfigurationInfo != "" {
		fmt.Fprintln(h.out)
		h.println("header", "CONFIGURATION:")
		fmt.Fprintf(h.out, "  %s\n", info.ConfigurationInfo)
	}
	if len(info.Examples) > 0 {
		fmt.Fprintln(h.out)
		h.println("header", "EXAMPLES:")
		for _, ex := range info.Examples {
			h.println("example", "  "+ex)
		}
	}
	return true
}
