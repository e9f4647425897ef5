// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"time"

	"fixdates/internal/core"
	"fixdates/internal/formatters"
	"fixdates/internal/reconcile"
)

// Report is the top-level structure for JSON/YAML output
type Report struct {
	RunID      string       `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Mode       string       `json:"mode" yaml:"mode"`
	StartedAt  string       `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	FinishedAt string       `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Cancelled  bool         `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Totals     Totals       `json:"totals" yaml:"totals"`
	Files      []FileReport `json:"files" yaml:"files"`
}

// Totals counts files per outcome
type Totals struct {
	Files       int `json:"files" yaml:"files"`
	Directories int `json:"directories" yaml:"directories"`
	Excluded    int `json:"excluded" yaml:"excluded"`
	Same        int `json:"same" yaml:"same"`
	Different   int `json:"different" yaml:"different"`
	Updated     int `json:"updated" yaml:"updated"`
	Unresolved  int `json:"unresolved" yaml:"unresolved"`
	Errors      int `json:"errors" yaml:"errors"`
}

// FileReport is a single file in JSON/YAML format
type FileReport struct {
	Path         string            `json:"path" yaml:"path"`
	Outcome      string            `json:"outcome" yaml:"outcome"`
	Provenance   string            `json:"provenance" yaml:"provenance"`
	MetadataTime *int64            `json:"metadata_time,omitempty" yaml:"metadata_time,omitempty"`
	FileTime     *int64            `json:"file_time,omitempty" yaml:"file_time,omitempty"`
	DryRun       bool              `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Sidecar      string            `json:"sidecar,omitempty" yaml:"sidecar,omitempty"`
	Reason       string            `json:"reason,omitempty" yaml:"reason,omitempty"`
	Warnings     []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error        string            `json:"error,omitempty" yaml:"error,omitempty"`
	Tags         map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Mode names what the run was allowed to do
func Mode(result *core.ScanResult) string {
	switch {
	case result.Fix && result.DryRun:
		return "dry-run"
	case result.Fix:
		return "fix"
	default:
		return "report"
	}
}

// BuildReport converts a scan result into the shared JSON/YAML structure.
// Directory entries are left out.
func BuildReport(result *core.ScanResult, options formatters.FormatterOptions) Report {
	report := Report{
		RunID:     result.RunID,
		Mode:      Mode(result),
		Cancelled: result.Cancelled,
		Totals:    BuildTotals(result),
		Files:     []FileReport{},
	}
	if !result.StartedAt.IsZero() {
		report.StartedAt = result.StartedAt.UTC().Format(time.RFC3339)
	}
	if !result.FinishedAt.IsZero() {
		report.FinishedAt = result.FinishedAt.UTC().Format(time.RFC3339)
	}

	for _, entry := range result.Files() {
		report.Files = append(report.Files, BuildFileReport(entry, options))
	}
	return report
}

// BuildTotals summarizes the outcome counts
func BuildTotals(result *core.ScanResult) Totals {
	outcomes := result.Summary.Outcomes
	return Totals{
		Files:       result.Summary.Files,
		Directories: result.Summary.Directories,
		Excluded:    result.Summary.Excluded,
		Same:        outcomes[reconcile.OutcomeSame],
		Different:   outcomes[reconcile.OutcomeDifferent],
		Updated:     outcomes[reconcile.OutcomeUpdated],
		Unresolved:  outcomes[reconcile.OutcomeUnresolved],
		Errors:      outcomes[reconcile.OutcomeError],
	}
}

// BuildFileReport converts one file entry
func BuildFileReport(entry core.Entry, options formatters.FormatterOptions) FileReport {
	res := entry.Result
	file := FileReport{
		Path:       entry.Path(),
		Outcome:    string(res.Outcome),
		Provenance: string(res.Provenance),
		DryRun:     res.DryRun,
		Sidecar:    entry.Resolved.Sidecar,
		Warnings:   entry.Resolved.Warnings,
	}
	if file.Provenance == "" {
		file.Provenance = string(entry.Resolved.Provenance)
	}
	if res.Compared() {
		meta, mtime := res.MetadataUnix, res.FileUnix
		file.MetadataTime = &meta
		file.FileTime = &mtime
	} else if !entry.Resolved.Found() {
		file.Reason = entry.Resolved.Reason
	}
	if res.Err != nil {
		file.Error = res.Err.Error()
	}
	if options.Dump && len(entry.Resolved.Tags) > 0 {
		file.Tags = entry.Resolved.Tags
	}
	return file
}
