// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies per-file failures
type ErrorKind string

const (
	// ErrorKindUnresolved means no timestamp was found. Recoverable; the file is skipped.
	ErrorKindUnresolved ErrorKind = "unresolved"
	// ErrorKindMalformed means a tag or sidecar was present but unparsable.
	ErrorKindMalformed ErrorKind = "malformed_metadata"
	// ErrorKindIO means the file or its sidecar could not be read or written.
	ErrorKindIO ErrorKind = "io_failure"
	// ErrorKindUnsupportedType means the extension is not recognized.
	ErrorKindUnsupportedType ErrorKind = "unsupported_type"
)

// MetadataError is a failure tied to a single file.
type MetadataError struct {
	Path    string
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface
func (me *MetadataError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s: %s", me.Path, me.Kind))
	if me.Message != "" {
		parts = append(parts, me.Message)
	}
	if me.Cause != nil {
		parts = append(parts, me.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (me *MetadataError) Unwrap() error {
	return me.Cause
}

// Is matches another *MetadataError by kind so callers can test
// errors.Is(err, &MetadataError{Kind: ErrorKindIO}).
func (me *MetadataError) Is(target error) bool {
	t, ok := target.(*MetadataError)
	if !ok {
		return false
	}
	return t.Kind == me.Kind && (t.Path == "" || t.Path == me.Path)
}

// NewMetadataError creates a new per-file error
func NewMetadataError(path string, kind ErrorKind, message string, cause error) *MetadataError {
	return &MetadataError{Path: path, Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind of the first MetadataError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var me *MetadataError
	if errors.As(err, &me) {
		return me.Kind, true
	}
	return "", false
}

// IsIOFailure reports whether err is an I/O failure.
func IsIOFailure(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == ErrorKindIO
}
