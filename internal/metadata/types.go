// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"path/filepath"
	"strings"
	"time"
)

// Classification is the closed set of file kinds the resolver distinguishes.
type Classification int

const (
	// Opaque files carry no metadata this tool can read.
	Opaque Classification = iota
	// ExifCapable files may embed an EXIF block.
	ExifCapable
)

func (c Classification) String() string {
	switch c {
	case ExifCapable:
		return "exif-capable"
	default:
		return "opaque"
	}
}

// exifExtensions is matched after lower-casing.
var exifExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
}

// Classify decides the classification from the file extension, ignoring case.
func Classify(path string) Classification {
	if exifExtensions[strings.ToLower(filepath.Ext(path))] {
		return ExifCapable
	}
	return Opaque
}

// FileRef is a visited path and its classification.
type FileRef struct {
	Path  string
	Class Classification
}

// NewFileRef classifies path.
func NewFileRef(path string) FileRef {
	return FileRef{Path: path, Class: Classify(path)}
}

// Provenance records which source produced a timestamp.
type Provenance string

const (
	ProvenanceExif    Provenance = "exif"
	ProvenanceSidecar Provenance = "sidecar-json"
	ProvenanceNone    Provenance = "none"
)

// ResolvedTimestamp is the outcome of resolving one file.
type ResolvedTimestamp struct {
	// Unix is whole epoch seconds; meaningful only when Provenance != none.
	Unix       int64
	Provenance Provenance
	// Sidecar is the sidecar path consulted, when one was found.
	Sidecar string
	// Reason explains a ProvenanceNone result.
	Reason string
	// Warnings are non-fatal problems met along the way.
	Warnings []string
	// Tags holds every decoded EXIF tag when dumping was requested.
	Tags map[string]string
}

// Found reports whether a timestamp was resolved.
func (r ResolvedTimestamp) Found() bool {
	return r.Provenance != "" && r.Provenance != ProvenanceNone
}

// Time returns the resolved instant.
func (r ResolvedTimestamp) Time() time.Time {
	return time.Unix(r.Unix, 0)
}

// Unresolved builds a ProvenanceNone result.
func Unresolved(reason string) ResolvedTimestamp {
	return ResolvedTimestamp{Provenance: ProvenanceNone, Reason: reason}
}

// Reasons attached to unresolved results
const (
	ReasonUnsupportedType = "unsupported type"
	ReasonNoSource        = "no metadata source date"
)
