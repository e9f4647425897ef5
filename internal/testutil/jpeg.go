// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package testutil builds small JPEG and sidecar fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// EXIF tag IDs used by the fixtures
const (
	TagMake             uint16 = 0x010F
	TagModel            uint16 = 0x0110
	TagExifIFDPointer   uint16 = 0x8769
	TagDateTimeOriginal uint16 = 0x9003
)

// ASCIITag is a single ASCII-typed EXIF entry.
type ASCIITag struct {
	ID    uint16
	Value string
}

// JPEGWithDateTimeOriginal returns a minimal JPEG whose APP1 segment carries
// Make/Model in IFD0 and the given DateTimeOriginal text in the Exif sub-IFD.
func JPEGWithDateTimeOriginal(value string) []byte {
	return JPEGWithTags(
		[]ASCIITag{{TagMake, "FixCam"}, {TagModel, "FC-1"}},
		[]ASCIITag{{TagDateTimeOriginal, value}},
	)
}

// JPEGWithTags returns a minimal JPEG with an EXIF APP1 segment.
func JPEGWithTags(ifd0, exifIFD []ASCIITag) []byte {
	tiff := buildTIFF(ifd0, exifIFD)

	var b bytes.Buffer
	b.Write([]byte{0xFF, 0xD8})
	b.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&b, binary.BigEndian, uint16(2+6+len(tiff)))
	b.WriteString("Exif\x00\x00")
	b.Write(tiff)
	b.Write([]byte{0xFF, 0xD9})
	return b.Bytes()
}

// JPEGWithoutExif returns a JPEG carrying only a JFIF APP0 segment.
func JPEGWithoutExif() []byte {
	var b bytes.Buffer
	b.Write([]byte{0xFF, 0xD8})
	b.Write([]byte{0xFF, 0xE0, 0x00, 0x10})
	b.WriteString("JFIF\x00")
	b.Write([]byte{0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00})
	b.Write([]byte{0xFF, 0xD9})
	return b.Bytes()
}

func ifdSize(entries int) int {
	return 2 + 12*entries + 4
}

func buildTIFF(ifd0, exifIFD []ASCIITag) []byte {
	le := binary.LittleEndian

	n0 := len(ifd0)
	if len(exifIFD) > 0 {
		n0++
	}
	ifd0Off := 8
	exifOff := ifd0Off + ifdSize(n0)
	dataOff := exifOff
	if len(exifIFD) > 0 {
		dataOff += ifdSize(len(exifIFD))
	}

	var data bytes.Buffer
	entry := func(buf *bytes.Buffer, t ASCIITag) {
		raw := append([]byte(t.Value), 0)
		_ = binary.Write(buf, le, t.ID)
		_ = binary.Write(buf, le, uint16(2))
		_ = binary.Write(buf, le, uint32(len(raw)))
		if len(raw) <= 4 {
			inline := make([]byte, 4)
			copy(inline, raw)
			buf.Write(inline)
			return
		}
		_ = binary.Write(buf, le, uint32(dataOff+data.Len()))
		data.Write(raw)
	}

	var out bytes.Buffer
	out.WriteString("II")
	_ = binary.Write(&out, le, uint16(42))
	_ = binary.Write(&out, le, uint32(ifd0Off))

	_ = binary.Write(&out, le, uint16(n0))
	for _, t := range ifd0 {
		entry(&out, t)
	}
	if len(exifIFD) > 0 {
		_ = binary.Write(&out, le, TagExifIFDPointer)
		_ = binary.Write(&out, le, uint16(4))
		_ = binary.Write(&out, le, uint32(1))
		_ = binary.Write(&out, le, uint32(exifOff))
	}
	_ = binary.Write(&out, le, uint32(0))

	if len(exifIFD) > 0 {
		_ = binary.Write(&out, le, uint16(len(exifIFD)))
		for _, t := range exifIFD {
			entry(&out, t)
		}
		_ = binary.Write(&out, le, uint32(0))
	}

	out.Write(data.Bytes())
	return out.Bytes()
}

// WriteFile writes content under dir and sets its mtime, returning the path.
func WriteFile(t *testing.T, dir, name string, content []byte, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if !mtime.IsZero() {
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}
	return path
}

// Sidecar returns a Takeout-style sidecar document. The timestamp is emitted
// verbatim so callers can pass a quoted string or a bare integer.
func Sidecar(rawTimestamp string) []byte {
	return []byte(`{"title":"IMG.jpg","photoTakenTime":{"timestamp":` + rawTimestamp + `,"formatted":"ignored"}}`)
}

// ModTime returns the whole-second mtime of path.
func ModTime(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return info.ModTime().Unix()
}
