// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"fixdates/internal/core"
	"fixdates/internal/formatters"
	"fixdates/internal/formatters/shared"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values, one row per file, for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(result *core.ScanResult, options formatters.FormatterOptions) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no scan result to format")
	}

	headers := []string{"Path", "Outcome", "Provenance", "Metadata Time", "File Time", "Dry Run", "Sidecar", "Detail"}
	if options.Dump {
		headers = append(headers, "Tags")
	}
	csvRows := []string{strings.Join(headers, ",")}

	for _, entry := range result.Files() {
		csvRows = append(csvRows, f.createCSVRow(shared.BuildFileReport(entry, options), options))
	}

	return strings.Join(csvRows, "\n") + "\n", nil
}

// createCSVRow creates a CSV row for one file
func (f *Formatter) createCSVRow(file shared.FileReport, options formatters.FormatterOptions) string {
	detail := file.Error
	if detail == "" {
		detail = file.Reason
	}
	if len(file.Warnings) > 0 {
		if detail != "" {
			detail += "; "
		}
		detail += strings.Join(file.Warnings, "; ")
	}

	row := []string{
		f.escapeCSVField(file.Path),
		file.Outcome,
		file.Provenance,
		formatUnix(file.MetadataTime),
		formatUnix(file.FileTime),
		strconv.FormatBool(file.DryRun),
		f.escapeCSVField(file.Sidecar),
		f.escapeCSVField(detail),
	}

	if options.Dump {
		keys := make([]string, 0, len(file.Tags))
		for k := range file.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+file.Tags[k])
		}
		row = append(row, f.escapeCSVField(strings.Join(pairs, "; ")))
	}

	return strings.Join(row, ",")
}

func formatUnix(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	field = f.sanitizeFormulaInjection(field)

	// If field contains comma, quote, or newline, wrap in quotes and escape internal quotes
	if strings.ContainsAny(field, ",\"\n\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// sanitizeFormulaInjection prefixes fields that a spreadsheet would evaluate
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
