// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"errors"
	"testing"

	"fixdates/internal/core"
	"fixdates/internal/formatters"
	"fixdates/internal/metadata"
	"fixdates/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileEntry(path string, resolved metadata.ResolvedTimestamp, res reconcile.Result) core.Entry {
	res.Path = path
	return core.Entry{Kind: core.EntryFile, Ref: metadata.NewFileRef(path), Resolved: resolved, Result: res}
}

func TestFormatEntry(t *testing.T) {
	exif := metadata.ResolvedTimestamp{Unix: 100, Provenance: metadata.ProvenanceExif}

	tests := []struct {
		name    string
		entry   core.Entry
		options formatters.FormatterOptions
		want    string
	}{
		{
			name:  "same hidden by default",
			entry: fileEntry("a.jpg", exif, reconcile.Result{Outcome: reconcile.OutcomeSame, MetadataUnix: 100, FileUnix: 100}),
			want:  "",
		},
		{
			name:    "same shown when verbose",
			entry:   fileEntry("a.jpg", exif, reconcile.Result{Outcome: reconcile.OutcomeSame, MetadataUnix: 100, FileUnix: 100}),
			options: formatters.FormatterOptions{Verbose: true},
			want:    "\ta.jpg\t100\t100\tSAME\n",
		},
		{
			name:  "different",
			entry: fileEntry("a.jpg", exif, reconcile.Result{Outcome: reconcile.OutcomeDifferent, MetadataUnix: 100, FileUnix: 200}),
			want:  "\ta.jpg\t100\t200\tDIFFERENT\n",
		},
		{
			name:  "updated",
			entry: fileEntry("a.jpg", exif, reconcile.Result{Outcome: reconcile.OutcomeUpdated, MetadataUnix: 100, FileUnix: 200}),
			want:  "\ta.jpg\t100\t200\tUPDATED\n",
		},
		{
			name:  "dry-run update",
			entry: fileEntry("a.jpg", exif, reconcile.Result{Outcome: reconcile.OutcomeUpdated, MetadataUnix: 100, FileUnix: 200, DryRun: true}),
			want:  "\ta.jpg\t100\t200\tUPDATED (dry-run)\n",
		},
		{
			name:    "quiet hides comparisons",
			entry:   fileEntry("a.jpg", exif, reconcile.Result{Outcome: reconcile.OutcomeDifferent, MetadataUnix: 100, FileUnix: 200}),
			options: formatters.FormatterOptions{Quiet: true},
			want:    "",
		},
		{
			name:  "unresolved jpeg",
			entry: fileEntry("b.jpg", metadata.Unresolved(metadata.ReasonNoSource), reconcile.Result{Outcome: reconcile.OutcomeUnresolved}),
			want:  "ERROR: no metadata source date for b.jpg\n",
		},
		{
			name:  "unsupported type hidden by default",
			entry: fileEntry("c.txt", metadata.Unresolved(metadata.ReasonUnsupportedType), reconcile.Result{Outcome: reconcile.OutcomeUnresolved}),
			want:  "",
		},
		{
			name:    "unsupported type when verbose",
			entry:   fileEntry("c.txt", metadata.Unresolved(metadata.ReasonUnsupportedType), reconcile.Result{Outcome: reconcile.OutcomeUnresolved}),
			options: formatters.FormatterOptions{Verbose: true},
			want:    "WARNING: c.txt: UNRECOGNIZED TYPE\n",
		},
		{
			name:    "error survives quiet",
			entry:   fileEntry("d.jpg", metadata.Unresolved(""), reconcile.Result{Outcome: reconcile.OutcomeError, Err: errors.New("boom")}),
			options: formatters.FormatterOptions{Quiet: true},
			want:    "ERROR: boom\n",
		},
		{
			name: "warning then comparison",
			entry: fileEntry("e.jpg",
				metadata.ResolvedTimestamp{Unix: 100, Provenance: metadata.ProvenanceSidecar, Warnings: []string{"bad date"}},
				reconcile.Result{Outcome: reconcile.OutcomeDifferent, MetadataUnix: 100, FileUnix: 200}),
			want: "WARNING: e.jpg: bad date\n\te.jpg\t100\t200\tDIFFERENT\n",
		},
		{
			name: "dump block",
			entry: fileEntry("f.jpg",
				metadata.ResolvedTimestamp{Unix: 100, Provenance: metadata.ProvenanceExif, Tags: map[string]string{"Model": "FC-1", "Make": "FixCam"}},
				reconcile.Result{Outcome: reconcile.OutcomeSame, MetadataUnix: 100, FileUnix: 100}),
			options: formatters.FormatterOptions{Dump: true},
			want:    "f.jpg:\n\tKey: Make, value FixCam\n\tKey: Model, value FC-1\n",
		},
		{
			name:  "directory hidden by default",
			entry: core.Entry{Kind: core.EntryDirectory, Ref: metadata.FileRef{Path: "photos"}},
			want:  "",
		},
		{
			name:    "directory when verbose",
			entry:   core.Entry{Kind: core.EntryDirectory, Ref: metadata.FileRef{Path: "photos"}},
			options: formatters.FormatterOptions{Verbose: true},
			want:    "Found directory: photos\n",
		},
	}

	f := NewFormatter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.options.NoColor = true
			assert.Equal(t, tt.want, f.FormatEntry(tt.entry, tt.options))
		})
	}
}

func TestFormatSummary(t *testing.T) {
	result := &core.ScanResult{
		Summary: core.Summary{
			Files:       4,
			Directories: 1,
			Outcomes: map[reconcile.Outcome]int{
				reconcile.OutcomeSame:      1,
				reconcile.OutcomeDifferent: 2,
				reconcile.OutcomeError:     1,
			},
		},
	}

	out, err := NewFormatter().Format(result, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.Contains(t, out, "Checked 4 file(s) in 1 director(ies)")
	assert.Contains(t, out, "  different   2\n")
	assert.Contains(t, out, "  errors      1\n")
	assert.Contains(t, out, "Run with --fix to update 2 file(s)")
	assert.NotContains(t, out, "Run ID")

	result.Fix = true
	result.Journaled = true
	result.RunID = "run-1"
	result.Summary.Outcomes = map[reconcile.Outcome]int{reconcile.OutcomeUpdated: 2}
	out, err = NewFormatter().Format(result, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.Contains(t, out, "undo with --undo run-1")
	assert.NotContains(t, out, "Run with --fix")
}

func TestFormatterRegistered(t *testing.T) {
	f, ok := formatters.Get("text")
	require.True(t, ok)
	_, streaming := f.(formatters.StreamingFormatter)
	assert.True(t, streaming)
}
