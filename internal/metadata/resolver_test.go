// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"fixdates/internal/observability"
	"fixdates/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcOptions() Options {
	opts := DefaultOptions()
	opts.Location = time.UTC
	opts.SidecarSuffixes = []string{".json", ".supplemental-metadata.json"}
	return opts
}

func TestResolve_Exif(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "IMG_0001.JPG", testutil.JPEGWithDateTimeOriginal("2020:09:13 12:26:40"), time.Time{})

	got, err := NewResolver(utcOptions(), nil).Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, ProvenanceExif, got.Provenance)
	assert.Equal(t, int64(1600000000), got.Unix)
	assert.Nil(t, got.Tags, "tags are only attached in dump mode")
}

func TestResolve_ExifPreferredOverSidecar(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "a.jpeg", testutil.JPEGWithDateTimeOriginal("2020:09:13 12:26:40"), time.Time{})
	testutil.WriteFile(t, dir, "a.jpeg.json", testutil.Sidecar(`"1"`), time.Time{})

	got, err := NewResolver(utcOptions(), nil).Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, ProvenanceExif, got.Provenance)
	assert.Equal(t, int64(1600000000), got.Unix)
}

func TestResolve_ExifLocation(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "a.jpg", testutil.JPEGWithDateTimeOriginal("2020:09:13 12:26:40"), time.Time{})

	opts := utcOptions()
	opts.Location = time.FixedZone("UTC+2", 2*60*60)
	got, err := NewResolver(opts, nil).Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1600000000-2*60*60), got.Unix)
}

func TestResolve_SidecarFallback(t *testing.T) {
	tests := []struct {
		name     string
		image    []byte
		sidecar  string
		suffix   string
		warnings int
	}{
		{"no exif, string timestamp", testutil.JPEGWithoutExif(), `"1600000000"`, ".json", 0},
		{"no exif, integer timestamp", testutil.JPEGWithoutExif(), `1600000000`, ".json", 0},
		{"malformed exif date", testutil.JPEGWithDateTimeOriginal("not-a-date"), `"1600000000"`, ".json", 1},
		{"supplemental sidecar", testutil.JPEGWithoutExif(), `"1600000000"`, ".supplemental-metadata.json", 0},
		{"garbage image bytes", []byte("not really a jpeg"), `"1600000000"`, ".json", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := testutil.WriteFile(t, dir, "photo.jpg", tt.image, time.Time{})
			testutil.WriteFile(t, dir, "photo.jpg"+tt.suffix, testutil.Sidecar(tt.sidecar), time.Time{})

			got, err := NewResolver(utcOptions(), nil).Resolve(path)
			require.NoError(t, err)
			assert.Equal(t, ProvenanceSidecar, got.Provenance)
			assert.Equal(t, int64(1600000000), got.Unix)
			assert.Equal(t, path+tt.suffix, got.Sidecar)
			assert.Len(t, got.Warnings, tt.warnings)
		})
	}
}

func TestResolve_Unresolved(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "photo.jpg", testutil.JPEGWithoutExif(), time.Time{})

	got, err := NewResolver(utcOptions(), nil).Resolve(path)
	require.NoError(t, err)
	assert.False(t, got.Found())
	assert.Equal(t, ProvenanceNone, got.Provenance)
	assert.Equal(t, ReasonNoSource, got.Reason)
}

func TestResolve_MalformedSidecar(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "photo.jpg", testutil.JPEGWithoutExif(), time.Time{})
	testutil.WriteFile(t, dir, "photo.jpg.json", []byte(`{"photoTakenTime":`), time.Time{})

	got, err := NewResolver(utcOptions(), nil).Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, ProvenanceNone, got.Provenance)
	require.Len(t, got.Warnings, 1)
	assert.Contains(t, got.Warnings[0], "malformed")
}

func TestResolve_SidecarDisabled(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "photo.jpg", testutil.JPEGWithoutExif(), time.Time{})
	testutil.WriteFile(t, dir, "photo.jpg.json", testutil.Sidecar(`"1600000000"`), time.Time{})

	opts := utcOptions()
	opts.Sidecar = false
	got, err := NewResolver(opts, nil).Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, ProvenanceNone, got.Provenance)
}

func TestResolve_Strict(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "photo.jpg", testutil.JPEGWithDateTimeOriginal("not-a-date"), time.Time{})
	testutil.WriteFile(t, dir, "photo.jpg.json", testutil.Sidecar(`"1600000000"`), time.Time{})

	opts := utcOptions()
	opts.Strict = true
	got, err := NewResolver(opts, nil).Resolve(path)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrorKindMalformed, kind)
	assert.Equal(t, ProvenanceNone, got.Provenance)
}

func TestResolve_OpaqueIgnoresSidecar(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "clip.mp4", []byte("video"), time.Time{})
	testutil.WriteFile(t, dir, "clip.mp4.json", testutil.Sidecar(`"1600000000"`), time.Time{})

	got, err := NewResolver(utcOptions(), nil).Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, ProvenanceNone, got.Provenance)
	assert.Equal(t, ReasonUnsupportedType, got.Reason)
}

func TestResolve_IOFailure(t *testing.T) {
	dir := t.TempDir()

	_, err := NewResolver(utcOptions(), nil).Resolve(filepath.Join(dir, "vanished.jpg"))
	require.Error(t, err)
	assert.True(t, IsIOFailure(err))

	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	path := testutil.WriteFile(t, dir, "locked.jpg", testutil.JPEGWithoutExif(), time.Time{})
	require.NoError(t, os.Chmod(path, 0))
	t.Cleanup(func() { _ = os.Chmod(path, 0600) })

	_, err = NewResolver(utcOptions(), nil).Resolve(path)
	assert.True(t, IsIOFailure(err))
}

func TestResolve_Dump(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "photo.jpg", testutil.JPEGWithDateTimeOriginal("2020:09:13 12:26:40"), time.Time{})

	opts := utcOptions()
	opts.Dump = true
	got, err := NewResolver(opts, nil).Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "FixCam", got.Tags["Make"])
	assert.Equal(t, "FC-1", got.Tags["Model"])
	assert.Equal(t, "2020:09:13 12:26:40", got.Tags["DateTimeOriginal"])
}

func TestResolve_LogsTiming(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "photo.jpg", testutil.JPEGWithoutExif(), time.Time{})

	var buf bytes.Buffer
	debug := observability.NewDebugObserver(&buf)
	_, err := NewResolver(utcOptions(), debug.StandardObserver).Resolve(path)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"component":"resolver"`)
	assert.Contains(t, buf.String(), "EXIF unavailable")
}
