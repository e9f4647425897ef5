// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package exiflib

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// DateTimeLayout is the fixed EXIF date/time text layout.
const DateTimeLayout = "2006:01:02 15:04:05"

// ErrNoExif is returned when the file carries no decodable EXIF block.
var ErrNoExif = errors.New("no EXIF data found")

// ErrNoDateTimeOriginal is returned when EXIF decodes but lacks DateTimeOriginal.
var ErrNoDateTimeOriginal = errors.New("DateTimeOriginal tag not present")

// Tags never shown in dumps: opaque vendor blobs, thumbnail and sub-IFD pointers.
var dumpExcluded = map[exif.FieldName]bool{
	exif.MakerNote:                        true,
	exif.ThumbJPEGInterchangeFormat:       true,
	exif.ThumbJPEGInterchangeFormatLength: true,
	exif.ExifIFDPointer:                   true,
	exif.GPSInfoIFDPointer:                true,
	exif.InteroperabilityIFDPointer:       true,
}

// ExifData represents the extracted EXIF metadata
type ExifData struct {
	FilePath string
	Tags     map[string]string

	x *exif.Exif
}

// exifWalker implements the Walker interface to extract all EXIF tags
type exifWalker struct {
	tags map[string]string
}

// Walk implements the Walker interface
func (w *exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil || dumpExcluded[name] {
		return nil
	}
	if s, err := tag.StringVal(); err == nil {
		w.tags[string(name)] = strings.TrimSpace(s)
		return nil
	}
	w.tags[string(name)] = tag.String()
	return nil
}

// ExtractExifFile opens filePath and decodes its EXIF block. An open or read
// failure is returned unwrapped from os; a missing or corrupt block wraps ErrNoExif.
func ExtractExifFile(filePath string) (*ExifData, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := ExtractExif(f)
	if err != nil {
		return nil, err
	}
	data.FilePath = filePath
	return data, nil
}

// ExtractExif decodes the EXIF block from r and collects every tag.
func ExtractExif(r io.Reader) (*ExifData, error) {
	x, err := exif.Decode(r)
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		if err == nil {
			err = errors.New("empty EXIF block")
		}
		return nil, fmt.Errorf("%w: %v", ErrNoExif, err)
	}

	result := &ExifData{
		Tags: make(map[string]string),
		x:    x,
	}

	walker := &exifWalker{tags: result.Tags}
	if err := x.Walk(walker); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoExif, err)
	}

	return result, nil
}

// DateTimeOriginal returns the raw DateTimeOriginal text.
func (e *ExifData) DateTimeOriginal() (string, error) {
	tag, err := e.x.Get(exif.DateTimeOriginal)
	if err != nil {
		if exif.IsTagNotPresentError(err) {
			return "", ErrNoDateTimeOriginal
		}
		return "", err
	}
	s, err := tag.StringVal()
	if err != nil {
		return "", fmt.Errorf("DateTimeOriginal is not text: %w", err)
	}
	return strings.TrimSpace(s), nil
}

// ParseDateTime parses EXIF date text as wall-clock time in loc.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateTimeLayout, strings.TrimSpace(value), loc)
}

// GetSortedKeys returns the tag keys in alphabetical order
func (e *ExifData) GetSortedKeys() []string {
	sortedKeys := make([]string, 0, len(e.Tags))
	for name := range e.Tags {
		sortedKeys = append(sortedKeys, name)
	}
	sort.Strings(sortedKeys)
	return sortedKeys
}
