// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), scanner.Text())
		out = append(out, entry)
	}
	return out
}

func TestStandardObserver_Off(t *testing.T) {
	var buf bytes.Buffer
	o := NewStandardObserver(ObservabilityOff, &buf)
	o.StartTiming("resolver", "resolve", "a.jpg")(true, nil)
	assert.Zero(t, buf.Len())
}

func TestStandardObserver_DebugTiming(t *testing.T) {
	var buf bytes.Buffer
	o := NewStandardObserver(ObservabilityDebug, &buf).WithRunID("run-1")

	finish := o.StartTiming("reconciler", "reconcile", "a.jpg")
	finish(true, map[string]interface{}{"outcome": "same"})
	require.NoError(t, o.Sync())

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	entry := lines[0]
	assert.Equal(t, "reconciler", entry["component"])
	assert.Equal(t, "reconcile", entry["operation"])
	assert.Equal(t, "a.jpg", entry["file_path"])
	assert.Equal(t, "run-1", entry["run_id"])
	assert.Equal(t, "run-1", o.RunID())
	assert.Equal(t, true, entry["success"])
	assert.NotEmpty(t, entry["request_id"])
	assert.Equal(t, "same", entry["metadata"].(map[string]interface{})["outcome"])
}

func TestStandardObserver_MetricsLevelSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	o := NewStandardObserver(ObservabilityMetrics, &buf)
	o.LogOperation(StandardObservabilityData{Component: "scanner", Operation: "scan", Success: true})
	o.Logger().Debug("hidden")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
}

func TestDebugObserver_Steps(t *testing.T) {
	var buf bytes.Buffer
	d := NewDebugObserver(&buf)
	require.Same(t, d, d.StandardObserver.DebugObserver)

	done := d.StartStep("scanner", "walk", "/photos")
	d.LogDetail("scanner", "Found directory: /photos/2020")
	d.LogMetric("scanner", "files", 3)
	done(false, "cancelled")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)
	assert.Equal(t, "step started", lines[0]["message"])
	assert.Equal(t, float64(1), lines[1]["depth"])
	assert.Equal(t, float64(3), lines[2]["value"])
	assert.Equal(t, "step failed", lines[3]["message"])
	assert.Equal(t, float64(0), lines[3]["depth"])
}
