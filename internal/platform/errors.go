// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
)

// Windows error constants
const (
	ERROR_ACCESS_DENIED     = syscall.Errno(5)
	ERROR_SHARING_VIOLATION = syscall.Errno(32)
	ERROR_LOCK_VIOLATION    = syscall.Errno(33)
	ERROR_WRITE_PROTECT     = syscall.Errno(19)
)

// FileError is a file operation failure annotated with a remediation hint.
type FileError struct {
	OriginalError error
	Path          string
	Operation     string
	Suggestion    string
}

func (fe *FileError) Error() string {
	if fe.Suggestion != "" {
		return fmt.Sprintf("%s %s: %s. %s", fe.Operation, fe.Path, fe.OriginalError.Error(), fe.Suggestion)
	}
	return fmt.Sprintf("%s %s: %s", fe.Operation, fe.Path, fe.OriginalError.Error())
}

func (fe *FileError) Unwrap() error {
	return fe.OriginalError
}

// ErrorHandler provides platform-specific error handling
type ErrorHandler interface {
	HandleFileError(err error, filePath string, operation string) error
	IsPermissionError(err error) bool
	IsReadOnlyError(err error) bool
}

// GetErrorHandler returns the appropriate error handler for the current platform
func GetErrorHandler() ErrorHandler {
	if IsWindows() {
		return &WindowsErrorHandler{}
	}
	return &UnixErrorHandler{}
}

// WindowsErrorHandler handles Windows-specific errors
type WindowsErrorHandler struct{}

// HandleFileError provides Windows-specific file error handling
func (w *WindowsErrorHandler) HandleFileError(err error, filePath string, operation string) error {
	if err == nil {
		return nil
	}

	fe := &FileError{OriginalError: err, Path: filePath, Operation: operation}
	switch {
	case w.IsReadOnlyError(err):
		fe.Suggestion = "The file is read-only. Use 'attrib -r \"" + filePath + "\"' to clear the attribute."
	case w.IsPermissionError(err):
		fe.Suggestion = "Check the file's security settings or run the command as Administrator."
	case isSharingViolation(err):
		fe.Suggestion = "The file is being used by another process. Close it and try again."
	}
	return fe
}

// IsPermissionError checks if the error is a Windows permission error
func (w *WindowsErrorHandler) IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno == ERROR_ACCESS_DENIED {
		return true
	}
	if os.IsPermission(err) {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "access is denied") ||
		strings.Contains(errMsg, "permission denied")
}

// IsReadOnlyError checks if the error is related to read-only file attributes
func (w *WindowsErrorHandler) IsReadOnlyError(err error) bool {
	if err == nil {
		return false
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno == ERROR_WRITE_PROTECT {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "read-only") ||
		strings.Contains(errMsg, "write protected")
}

func isSharingViolation(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == ERROR_SHARING_VIOLATION || errno == ERROR_LOCK_VIOLATION
	}
	return strings.Contains(err.Error(), "being used by another process")
}

// UnixErrorHandler provides basic error handling for Unix systems
type UnixErrorHandler struct{}

// HandleFileError provides basic file error handling for Unix systems
func (u *UnixErrorHandler) HandleFileError(err error, filePath string, operation string) error {
	if err == nil {
		return nil
	}

	fe := &FileError{OriginalError: err, Path: filePath, Operation: operation}
	switch {
	case u.IsReadOnlyError(err):
		fe.Suggestion = "The file system is mounted read-only"
	case u.IsPermissionError(err):
		// utime(2) with an explicit time requires ownership, not just write access
		fe.Suggestion = "Only the file owner can set explicit times; check ownership with 'ls -l'"
	}
	return fe
}

// IsPermissionError checks for Unix permission errors
func (u *UnixErrorHandler) IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	return os.IsPermission(err) || errors.Is(err, syscall.EPERM) ||
		strings.Contains(err.Error(), "permission denied")
}

// IsReadOnlyError checks for Unix read-only errors
func (u *UnixErrorHandler) IsReadOnlyError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.EROFS) ||
		strings.Contains(strings.ToLower(err.Error()), "read-only")
}

// WrapFileError wraps a file operation error with platform-specific handling
func WrapFileError(err error, filePath string, operation string) error {
	if err == nil {
		return nil
	}

	handler := GetErrorHandler()
	return handler.HandleFileError(err, filePath, operation)
}
