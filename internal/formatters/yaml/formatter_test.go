// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package yaml

import (
	"testing"

	"fixdates/internal/core"
	"fixdates/internal/formatters"
	"fixdates/internal/formatters/shared"
	"fixdates/internal/metadata"
	"fixdates/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFormatMatchesSharedReport(t *testing.T) {
	result := &core.ScanResult{
		RunID:  "run-2",
		Fix:    true,
		DryRun: true,
		Entries: []core.Entry{{
			Kind:     core.EntryFile,
			Ref:      metadata.NewFileRef("a.jpg"),
			Resolved: metadata.ResolvedTimestamp{Unix: 100, Provenance: metadata.ProvenanceSidecar, Sidecar: "a.jpg.json"},
			Result:   reconcile.Result{Path: "a.jpg", Outcome: reconcile.OutcomeUpdated, Provenance: metadata.ProvenanceSidecar, MetadataUnix: 100, FileUnix: 300, DryRun: true},
		}},
		Summary: core.Summary{Files: 1, Outcomes: map[reconcile.Outcome]int{reconcile.OutcomeUpdated: 1}},
	}

	out, err := NewFormatter().Format(result, formatters.FormatterOptions{})
	require.NoError(t, err)

	var report shared.Report
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, shared.BuildReport(result, formatters.FormatterOptions{}), report)
	assert.Equal(t, "dry-run", report.Mode)
	assert.Equal(t, "a.jpg.json", report.Files[0].Sidecar)
	assert.True(t, report.Files[0].DryRun)
}
