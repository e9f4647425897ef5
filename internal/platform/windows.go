// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// WindowsPlatform implements Platform interface for Windows systems
type WindowsPlatform struct{}

// GetConfigDir returns the Windows-appropriate configuration directory
func (w *WindowsPlatform) GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, AppName)
	}

	if userProfile := os.Getenv("USERPROFILE"); userProfile != "" {
		return filepath.Join(userProfile, "."+AppName)
	}

	return "." + AppName
}

// GetDataDir returns LOCALAPPDATA\fixdates, falling back to the config directory
func (w *WindowsPlatform) GetDataDir() string {
	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		return filepath.Join(local, AppName)
	}
	return w.GetConfigDir()
}

// NormalizePath converts forward slashes and cleans the path
func (w *WindowsPlatform) NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(strings.ReplaceAll(path, "/", `\`))
}

// SupportsCaseSensitivePaths returns false for Windows
func (w *WindowsPlatform) SupportsCaseSensitivePaths() bool {
	return false
}
