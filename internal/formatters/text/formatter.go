// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"sort"
	"strings"

	"fixdates/internal/core"
	"fixdates/internal/formatters"
	"fixdates/internal/metadata"
	"fixdates/internal/reconcile"

	"github.com/fatih/color"
)

// Formatter implements the tab-separated console report
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":  color.New(color.FgGreen),
			"yellow": color.New(color.FgYellow),
			"red":    color.New(color.FgRed),
			"cyan":   color.New(color.FgCyan),
			"white":  color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable tab-separated lines with a colored summary"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

// Format renders every entry followed by the summary
func (f *Formatter) Format(result *core.ScanResult, options formatters.FormatterOptions) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no scan result to format")
	}

	var builder strings.Builder
	for _, entry := range result.Entries {
		builder.WriteString(f.FormatEntry(entry, options))
	}
	builder.WriteString(f.FormatSummary(result, options))
	return builder.String(), nil
}

// FormatEntry renders the lines for one walked directory or file. It returns
// an empty string when the entry is hidden at the current verbosity.
func (f *Formatter) FormatEntry(entry core.Entry, options formatters.FormatterOptions) string {
	var builder strings.Builder

	if entry.Kind == core.EntryDirectory {
		if options.Verbose && !options.Quiet {
			fmt.Fprintf(&builder, "Found directory: %s\n", entry.Path())
		}
		return builder.String()
	}

	if options.Dump && len(entry.Resolved.Tags) > 0 {
		f.appendDump(&builder, entry.Path(), entry.Resolved.Tags)
	}

	if !options.Quiet {
		for _, warning := range entry.Resolved.Warnings {
			fmt.Fprintf(&builder, "%s %s: %s\n", f.paint("yellow", "WARNING:", options), entry.Path(), warning)
		}
	}

	res := entry.Result
	switch res.Outcome {
	case reconcile.OutcomeSame:
		if options.Verbose && !options.Quiet {
			f.appendComparison(&builder, res, "green", options)
		}
	case reconcile.OutcomeDifferent:
		if !options.Quiet {
			f.appendComparison(&builder, res, "yellow", options)
		}
	case reconcile.OutcomeUpdated:
		if !options.Quiet {
			f.appendComparison(&builder, res, "green", options)
		}
	case reconcile.OutcomeUnresolved:
		if entry.Resolved.Reason == metadata.ReasonUnsupportedType {
			if options.Verbose && !options.Quiet {
				fmt.Fprintf(&builder, "%s %s: UNRECOGNIZED TYPE\n", f.paint("yellow", "WARNING:", options), entry.Path())
			}
			break
		}
		fmt.Fprintf(&builder, "%s no metadata source date for %s\n", f.paint("red", "ERROR:", options), entry.Path())
	case reconcile.OutcomeError:
		fmt.Fprintf(&builder, "%s %v\n", f.paint("red", "ERROR:", options), res.Err)
	}

	return builder.String()
}

// appendComparison writes the tab-separated line for a compared file
func (f *Formatter) appendComparison(builder *strings.Builder, res reconcile.Result, colorName string, options formatters.FormatterOptions) {
	fmt.Fprintf(builder, "\t%s\t%d\t%d\t%s\n",
		res.Path, res.MetadataUnix, res.FileUnix, f.paint(colorName, res.Label(), options))
}

// appendDump writes every decoded tag in key order
func (f *Formatter) appendDump(builder *strings.Builder, path string, tags map[string]string) {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(builder, "%s:\n", path)
	for _, k := range keys {
		fmt.Fprintf(builder, "\tKey: %s, value %s\n", k, tags[k])
	}
}

// FormatSummary renders the closing totals block
func (f *Formatter) FormatSummary(result *core.ScanResult, options formatters.FormatterOptions) string {
	var builder strings.Builder
	summary := result.Summary

	builder.WriteString("\n")
	heading := fmt.Sprintf("Checked %d file(s) in %d director(ies)", summary.Files, summary.Directories)
	if summary.Excluded > 0 {
		heading += fmt.Sprintf(", %d excluded", summary.Excluded)
	}
	builder.WriteString(f.paint("white", heading, options))
	builder.WriteString("\n")

	labels := map[reconcile.Outcome]struct{ label, color string }{
		reconcile.OutcomeSame:       {"same", "green"},
		reconcile.OutcomeDifferent:  {"different", "yellow"},
		reconcile.OutcomeUpdated:    {"updated", "green"},
		reconcile.OutcomeUnresolved: {"unresolved", "cyan"},
		reconcile.OutcomeError:      {"errors", "red"},
	}
	for _, outcome := range reconcile.Outcomes {
		count := summary.Outcomes[outcome]
		l := labels[outcome]
		line := fmt.Sprintf("  %-11s %d", l.label, count)
		if count > 0 {
			line = f.paint(l.color, line, options)
		}
		builder.WriteString(line)
		builder.WriteString("\n")
	}

	if result.Fix && result.DryRun {
		builder.WriteString("Dry run: no timestamps were changed\n")
	}
	if !result.Fix && summary.Outcomes[reconcile.OutcomeDifferent] > 0 {
		fmt.Fprintf(&builder, "Run with --fix to update %d file(s)\n", summary.Outcomes[reconcile.OutcomeDifferent])
	}
	if result.Journaled && !result.DryRun && summary.Outcomes[reconcile.OutcomeUpdated] > 0 {
		fmt.Fprintf(&builder, "Run ID: %s (undo with --undo %s)\n", result.RunID, result.RunID)
	}
	if result.Cancelled {
		builder.WriteString(f.paint("red", "Scan interrupted before all paths were processed", options))
		builder.WriteString("\n")
	}

	return builder.String()
}

func (f *Formatter) paint(name, s string, options formatters.FormatterOptions) string {
	if options.NoColor {
		return s
	}
	c, ok := f.colors[name]
	if !ok {
		return s
	}
	return c.Sprint(s)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
