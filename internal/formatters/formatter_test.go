// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixdates/internal/formatters"
	_ "fixdates/internal/formatters/csv"
	_ "fixdates/internal/formatters/json"
	_ "fixdates/internal/formatters/text"
	_ "fixdates/internal/formatters/yaml"
)

func TestRegistry_ListIsSorted(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "text", "yaml"}, formatters.List())
}

func TestGetSupportedFormats(t *testing.T) {
	formats := formatters.GetSupportedFormats()
	require.Len(t, formats, 4)
	for _, f := range formats {
		assert.NotEmpty(t, f.Description, f.Name)
		assert.NotEmpty(t, f.Extension, f.Name)
	}
}

func TestGetFormatInfo_Unknown(t *testing.T) {
	assert.Equal(t, formatters.FormatInfo{}, formatters.GetFormatInfo("sarif"))
	_, ok := formatters.Get("sarif")
	assert.False(t, ok)
}
