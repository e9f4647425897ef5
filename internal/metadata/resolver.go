// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"errors"
	"fmt"
	"time"

	"fixdates/internal/metadata/exiflib"
	"fixdates/internal/metadata/sidecarlib"
	"fixdates/internal/observability"
)

// Options controls how timestamps are resolved.
type Options struct {
	// Location interprets EXIF wall-clock text. Nil means time.Local.
	Location *time.Location
	// Sidecar enables the JSON sidecar fallback.
	Sidecar bool
	// SidecarSuffixes are appended to the media path, tried in order.
	SidecarSuffixes []string
	// Strict requires EXIF on EXIF-capable files: any EXIF failure is an
	// error and the sidecar is not consulted.
	Strict bool
	// Dump attaches every decoded EXIF tag to the result.
	Dump bool
}

// DefaultOptions returns the fallback-enabled policy in the local zone.
func DefaultOptions() Options {
	return Options{
		Location:        time.Local,
		Sidecar:         true,
		SidecarSuffixes: append([]string(nil), sidecarlib.DefaultSuffixes...),
	}
}

// Resolver finds the authoritative "taken at" time for a file.
type Resolver struct {
	opts     Options
	observer *observability.StandardObserver
}

var _ observability.Observable = (*Resolver)(nil)

// NewResolver creates a resolver. observer may be nil.
func NewResolver(opts Options, observer *observability.StandardObserver) *Resolver {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Resolver{opts: opts, observer: observer}
}

// GetComponentName returns the component identifier
func (r *Resolver) GetComponentName() string {
	return "resolver"
}

// Resolve classifies path and resolves its timestamp. The error is non-nil
// only for I/O failures, or for any EXIF failure in strict mode.
func (r *Resolver) Resolve(path string) (ResolvedTimestamp, error) {
	return r.ResolveRef(NewFileRef(path))
}

// ResolveRef resolves an already classified file.
func (r *Resolver) ResolveRef(ref FileRef) (ResolvedTimestamp, error) {
	var finishTiming func(bool, map[string]interface{})
	if r.observer != nil {
		finishTiming = r.observer.StartTiming(r.GetComponentName(), "resolve", ref.Path)
	}

	result, err := r.resolve(ref)

	if finishTiming != nil {
		finishTiming(err == nil, map[string]interface{}{
			"class":      ref.Class.String(),
			"provenance": string(result.Provenance),
			"unix":       result.Unix,
			"warnings":   len(result.Warnings),
		})
	}
	return result, err
}

func (r *Resolver) resolve(ref FileRef) (ResolvedTimestamp, error) {
	if ref.Class != ExifCapable {
		return Unresolved(ReasonUnsupportedType), nil
	}

	ts, tags, exifErr := r.fromExif(ref.Path)
	if exifErr == nil {
		return ResolvedTimestamp{Unix: ts, Provenance: ProvenanceExif, Tags: tags}, nil
	}

	result := Unresolved(ReasonNoSource)
	result.Tags = tags

	if IsIOFailure(exifErr) {
		return result, exifErr
	}
	if r.opts.Strict {
		result.Reason = exifErr.Error()
		return result, exifErr
	}
	if kind, _ := KindOf(exifErr); kind == ErrorKindMalformed {
		result.Warnings = append(result.Warnings, exifErr.Error())
	}
	r.logDetail(fmt.Sprintf("EXIF unavailable for %s: %v", ref.Path, exifErr))

	if !r.opts.Sidecar {
		return result, nil
	}

	sidecarPath, ts, sidecarErr := r.fromSidecar(ref.Path)
	result.Sidecar = sidecarPath
	if sidecarErr == nil {
		result.Unix = ts
		result.Provenance = ProvenanceSidecar
		result.Reason = ""
		return result, nil
	}

	switch kind, _ := KindOf(sidecarErr); kind {
	case ErrorKindIO:
		return result, sidecarErr
	case ErrorKindMalformed:
		result.Warnings = append(result.Warnings, sidecarErr.Error())
	}
	r.logDetail(fmt.Sprintf("sidecar unavailable for %s: %v", ref.Path, sidecarErr))
	return result, nil
}

// fromExif reads DateTimeOriginal. Tags are returned whenever the block
// decoded and dumping is on, even if the date itself is unusable.
func (r *Resolver) fromExif(path string) (int64, map[string]string, error) {
	data, err := exiflib.ExtractExifFile(path)
	if err != nil {
		if errors.Is(err, exiflib.ErrNoExif) {
			return 0, nil, NewMetadataError(path, ErrorKindUnresolved, "no EXIF block", err)
		}
		return 0, nil, NewMetadataError(path, ErrorKindIO, "cannot read image", err)
	}

	var tags map[string]string
	if r.opts.Dump {
		tags = data.Tags
	}

	raw, err := data.DateTimeOriginal()
	if err != nil {
		if errors.Is(err, exiflib.ErrNoDateTimeOriginal) {
			return 0, tags, NewMetadataError(path, ErrorKindUnresolved, "no DateTimeOriginal", err)
		}
		return 0, tags, NewMetadataError(path, ErrorKindMalformed, "bad DateTimeOriginal", err)
	}

	t, err := exiflib.ParseDateTime(raw, r.opts.Location)
	if err != nil {
		return 0, tags, NewMetadataError(path, ErrorKindMalformed, fmt.Sprintf("bad DateTimeOriginal %q", raw), err)
	}
	return t.Unix(), tags, nil
}

func (r *Resolver) fromSidecar(path string) (string, int64, error) {
	sidecarPath, err := sidecarlib.Find(path, r.opts.SidecarSuffixes)
	if err != nil {
		if errors.Is(err, sidecarlib.ErrNoSidecar) {
			return "", 0, NewMetadataError(path, ErrorKindUnresolved, "no sidecar", err)
		}
		return "", 0, NewMetadataError(path, ErrorKindIO, "cannot stat sidecar", err)
	}

	doc, err := sidecarlib.ReadFile(sidecarPath)
	if err != nil {
		if errors.Is(err, sidecarlib.ErrMalformed) {
			return sidecarPath, 0, NewMetadataError(sidecarPath, ErrorKindMalformed, "", err)
		}
		return sidecarPath, 0, NewMetadataError(sidecarPath, ErrorKindIO, "cannot read sidecar", err)
	}

	ts, err := doc.TakenTime()
	if err != nil {
		return sidecarPath, 0, NewMetadataError(sidecarPath, ErrorKindMalformed, "", err)
	}
	return sidecarPath, ts, nil
}

func (r *Resolver) logDetail(detail string) {
	if r.observer != nil && r.observer.DebugObserver != nil {
		r.observer.DebugObserver.LogDetail(r.GetComponentName(), detail)
	}
}
