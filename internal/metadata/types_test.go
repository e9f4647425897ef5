// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Classification
	}{
		{"photo.jpg", ExifCapable},
		{"PHOTO.JPG", ExifCapable},
		{"photo.jpeg", ExifCapable},
		{"dir/Photo.JpEg", ExifCapable},
		{"photo.jpg.json", Opaque},
		{"photo.png", Opaque},
		{"movie.mp4", Opaque},
		{"jpg", Opaque},
		{"noext", Opaque},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Classify(tt.path); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolvedTimestampFound(t *testing.T) {
	if Unresolved(ReasonNoSource).Found() {
		t.Error("unresolved result must not be Found")
	}
	if (ResolvedTimestamp{}).Found() {
		t.Error("zero value must not be Found")
	}
	if !(ResolvedTimestamp{Unix: 1, Provenance: ProvenanceExif}).Found() {
		t.Error("exif result should be Found")
	}
}

func TestMetadataError(t *testing.T) {
	cause := os.ErrPermission
	err := fmt.Errorf("wrapped: %w", NewMetadataError("/a.jpg", ErrorKindIO, "cannot read image", cause))

	if !errors.Is(err, os.ErrPermission) {
		t.Error("should unwrap to the cause")
	}
	if !errors.Is(err, &MetadataError{Kind: ErrorKindIO}) {
		t.Error("should match by kind")
	}
	if errors.Is(err, &MetadataError{Kind: ErrorKindMalformed}) {
		t.Error("should not match a different kind")
	}
	if !IsIOFailure(err) {
		t.Error("IsIOFailure() = false")
	}
	if kind, ok := KindOf(errors.New("plain")); ok || kind != "" {
		t.Error("plain errors carry no kind")
	}
}
