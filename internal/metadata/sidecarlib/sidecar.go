// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sidecarlib

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrNoSidecar is returned by Find when no candidate file exists.
	ErrNoSidecar = errors.New("no sidecar file")
	// ErrMalformed wraps JSON syntax and type errors.
	ErrMalformed = errors.New("malformed sidecar")
	// ErrNoTimestamp is returned when photoTakenTime.timestamp is absent.
	ErrNoTimestamp = errors.New("photoTakenTime.timestamp not present")
)

// DefaultSuffixes is the search order used when none is configured.
var DefaultSuffixes = []string{".json"}

// EpochSeconds decodes a JSON string or integer holding Unix seconds.
type EpochSeconds struct {
	Value int64
	Set   bool
}

// UnmarshalJSON accepts "1600000000" and 1600000000.
func (e *EpochSeconds) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		text = strings.TrimSpace(s)
	}

	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("timestamp %s is not integer epoch seconds", data)
	}
	e.Value = v
	e.Set = true
	return nil
}

// TimeInfo is a Takeout time record.
type TimeInfo struct {
	Timestamp EpochSeconds `json:"timestamp"`
	Formatted string       `json:"formatted,omitempty"`
}

// PhotoMetadata is the subset of a Takeout sidecar this package reads.
type PhotoMetadata struct {
	Title          string    `json:"title"`
	PhotoTakenTime *TimeInfo `json:"photoTakenTime"`
	CreationTime   *TimeInfo `json:"creationTime"`
}

// TakenTime returns photoTakenTime.timestamp in epoch seconds.
func (m *PhotoMetadata) TakenTime() (int64, error) {
	if m.PhotoTakenTime == nil || !m.PhotoTakenTime.Timestamp.Set {
		return 0, ErrNoTimestamp
	}
	return m.PhotoTakenTime.Timestamp.Value, nil
}

// Candidates lists sidecar paths for mediaPath in search order.
func Candidates(mediaPath string, suffixes []string) []string {
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}
	out := make([]string, 0, len(suffixes))
	for _, suffix := range suffixes {
		out = append(out, mediaPath+suffix)
	}
	return out
}

// Find returns the first existing sidecar for mediaPath. A stat failure other
// than "not exist" is returned as-is.
func Find(mediaPath string, suffixes []string) (string, error) {
	for _, candidate := range Candidates(mediaPath, suffixes) {
		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", err
		}
		if info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", ErrNoSidecar
}

// Parse decodes a sidecar document.
func Parse(r io.Reader) (*PhotoMetadata, error) {
	var m PhotoMetadata
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &m, nil
}

// ReadFile opens and decodes the sidecar at path. Open and read failures are
// returned unwrapped; decode failures wrap ErrMalformed.
func ReadFile(path string) (*PhotoMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(data))
}
