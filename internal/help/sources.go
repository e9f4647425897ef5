// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

type exifSource struct{}

func (exifSource) GetSourceInfo() SourceInfo {
	return SourceInfo{
		Name:             "exif",
		ShortDescription: "EXIF DateTimeOriginal embedded in JPEG files",
		DetailedDescription: "Reads the DateTimeOriginal tag from the file's EXIF block. The value is a\n" +
			"wall-clock time (YYYY:MM:DD HH:MM:SS) without a zone, interpreted in the\n" +
			"zone given by --timezone, or the local zone by default.",
		FileTypes: []string{".jpg", ".jpeg (any letter case)"},
		Failures: []string{
			"the file has no EXIF block",
			"DateTimeOriginal is missing",
			"DateTimeOriginal does not parse (reported as a warning)",
		},
		ConfigurationInfo: "--timezone / defaults.timezone; --strict / defaults.strict; --dump prints every tag",
		Examples: []string{
			"fixdates --dump photo.jpg",
			"fixdates --timezone Europe/Paris ~/Pictures",
		},
	}
}

type sidecarSource struct{}

func (sidecarSource) GetSourceInfo() SourceInfo {
	return SourceInfo{
		Name:             "sidecar-json",
		ShortDescription: "Google Takeout <file>.json photoTakenTime",
		DetailedDescription: "Used for JPEG files whose EXIF gives no usable date. Reads\n" +
			"photoTakenTime.timestamp (epoch seconds, as a string or a number) from the\n" +
			"JSON file next to the image. Suffixes are tried in order.",
		FileTypes: []string{".jpg", ".jpeg (sidecar only consulted for EXIF-capable files)"},
		Failures: []string{
			"no sidecar exists for any configured suffix",
			"the sidecar is not valid JSON (reported as a warning)",
			"photoTakenTime.timestamp is missing or not an integer",
			"--no-sidecar or --strict is in effect",
		},
		ConfigurationInfo: "defaults.sidecar.enabled and defaults.sidecar.suffixes (default: .json, .supplemental-metadata.json)",
		Examples: []string{
			"fixdates --profile takeout ~/Takeout/Google\\ Photos",
			"fixdates --no-sidecar ~/Pictures",
		},
	}
}
