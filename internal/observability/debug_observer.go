// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"io"
	"time"

	"go.uber.org/zap"
)

// DebugObserver provides detailed step-by-step debugging
type DebugObserver struct {
	*StandardObserver
	depth int
}

// NewDebugObserver creates a debug observer with step-by-step logging
func NewDebugObserver(writer io.Writer) *DebugObserver {
	d := &DebugObserver{
		StandardObserver: NewStandardObserver(ObservabilityDebug, writer),
	}
	d.StandardObserver.DebugObserver = d
	return d
}

// StartStep begins a processing step and returns its completion function
func (d *DebugObserver) StartStep(component, step, filePath string) func(success bool, details string) {
	start := time.Now()
	d.logger.Debug("step started",
		zap.String("component", component),
		zap.String("step", step),
		zap.String("file_path", filePath),
		zap.Int("depth", d.depth))
	d.depth++

	return func(success bool, details string) {
		d.depth--
		msg := "step completed"
		if !success {
			msg = "step failed"
		}
		d.logger.Debug(msg,
			zap.String("component", component),
			zap.String("step", step),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.String("details", details),
			zap.Int("depth", d.depth))
	}
}

// LogDetail logs a detail within the current step
func (d *DebugObserver) LogDetail(component, detail string) {
	d.logger.Debug(detail, zap.String("component", component), zap.Int("depth", d.depth))
}

// LogMetric logs a metric value
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	d.logger.Debug("metric",
		zap.String("component", component),
		zap.String("metric", metric),
		zap.Any("value", value),
		zap.Int("depth", d.depth))
}
