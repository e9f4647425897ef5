// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"bytes"
	"strings"
	"testing"

	"fixdates/internal/formatters"
)

func TestShowGeneralHelp(t *testing.T) {
	var buf bytes.Buffer
	NewSystem(&buf, true).ShowGeneralHelp([]formatters.FormatInfo{
		{Name: "csv", Description: "rows", Extension: ".csv"},
		{Name: "json", Description: "report", Extension: ".json"},
	})

	out := buf.String()
	for _, want := range []string{"--fix", "--dump", "--verbose", "--undo", "csv, json", ".json", "EXIT STATUS"} {
		if !strings.Contains(out, want) {
			t.Errorf("general help missing %q", want)
		}
	}
}

func TestShowSourcesHelpOrder(t *testing.T) {
	var buf bytes.Buffer
	NewSystem(&buf, true).ShowSourcesHelp()

	out := buf.String()
	exif := strings.Index(out, "  exif ")
	sidecar := strings.Index(out, "  sidecar-json ")
	if exif < 0 || sidecar < 0 {
		t.Fatalf("sources missing from output:\n%s", out)
	}
	if exif > sidecar {
		t.Errorf("exif should be listed before sidecar-json")
	}
}

func TestShowSourceHelp(t *testing.T) {
	tests := []struct {
		name  string
		found bool
	}{
		{"exif", true},
		{"EXIF", true},
		{"sidecar-json", true},
		{"heic", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			got := NewSystem(&buf, true).ShowSourceHelp(tt.name)
			if got != tt.found {
				t.Errorf("ShowSourceHelp(%q) = %v, want %v", tt.name, got, tt.found)
			}
			if !tt.found && buf.Len() != 0 {
				t.Errorf("unknown source should print nothing, got %q", buf.String())
			}
		})
	}
}
